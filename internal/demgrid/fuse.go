package demgrid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/dem-traversability/internal/monitoring"
)

// DefaultAcceptanceBucketsMeters are the upper bounds, in meters, of the
// default fusion diagnostic buckets installed on a Context's Global grid.
var DefaultAcceptanceBucketsMeters = []float64{1, 2, 4, 8, 10, 12, 16, 20, 50, 100, 200}

// FusionMetrics is a point-in-time snapshot of per-range-bucket fusion
// accept/reject counts, safe for the caller to inspect independently of
// the grid it was copied from.
type FusionMetrics struct {
	BucketsMeters []float64
	AcceptCounts  []int64
	RejectCounts  []int64
}

// recordFusionOutcome increments the bucket matching dMeters on global, if
// acceptance bucketing has been enabled on it. accepted distinguishes an
// agreeing-label update from a disagreeing one, matching the worked
// agree/disagree rules below; cases with no agreement semantics
// (assimilating an empty cell, occluded decay) are not counted.
func recordFusionOutcome(global *Grid, dMeters float64, accepted bool) {
	for b := range global.AcceptanceBucketsMeters {
		if dMeters <= global.AcceptanceBucketsMeters[b] {
			if accepted {
				global.AcceptByRangeBuckets[b]++
			} else {
				global.RejectByRangeBuckets[b]++
			}
			return
		}
	}
}

// Fuse merges local (the current-frame LocalDEM) into global (the
// pose-predicted GlobalDEM) in place. Both grids must already share the
// current pose and dimensions.
//
// The per-cell label/confidence rules are intentionally asymmetric: an
// "agreeing" update multiplies confidence by 2*loc.lpr rather than
// averaging it, which decays confidence whenever the local observation
// itself is uncertain (loc.lpr<0.5). That is intended, not a bug to be
// smoothed over.
func Fuse(global, local *Grid, params GridParams) error {
	if global.W != local.W || global.L != local.L {
		return fmt.Errorf("demgrid: Fuse dimension mismatch: global %dx%d, local %dx%d", global.W, global.L, local.W, local.L)
	}

	if !global.DataOn {
		if err := global.CopyFrom(local); err != nil {
			return err
		}
		return nil
	}

	ox, oy := global.OriginX(), global.OriginY()

	for y := 0; y < global.L; y++ {
		for x := 0; x < global.W; x++ {
			idx := global.Idx(x, y)

			locLab := local.Lab[idx]
			gloLab := global.Lab[idx]

			if locLab == LabelUnknown && gloLab == LabelUnknown {
				continue
			}

			dx, dy := float64(x-ox), float64(y-oy)
			dMeters := math.Hypot(dx, dy) * global.PixSize

			if params.HasDebugRange() && params.IsInDebugRange(x, y) {
				monitoring.Logf("demgrid: fuse debug cell (%d,%d) dMeters=%.3f gloLab=%v gloLpr=%.3f locLab=%v locLpr=%.3f",
					x, y, dMeters, gloLab, global.Lpr[idx], locLab, local.Lpr[idx])
			}

			if locLab == LabelUnknown && dMeters > params.FuseBlindOutside {
				continue
			}

			switch {
			case gloLab == LabelUnknown:
				global.Lab[idx] = locLab
				global.Lpr[idx] = local.Lpr[idx]

			case gloLab == locLab:
				recordFusionOutcome(global, dMeters, true)
				global.Lpr[idx] = math.Min(1.0, global.Lpr[idx]*(2.0*local.Lpr[idx]))

			case locLab == LabelUnknown:
				f := params.FuseOccludedFar
				if dMeters <= params.FuseNearRing {
					f = params.FuseOccludedNear
				}
				global.Lpr[idx] = math.Min(1.0, global.Lpr[idx]*f)

			default: // both labeled, disagreeing
				recordFusionOutcome(global, dMeters, false)
				if dMeters > params.FuseNearRing {
					decayed := math.Min(1.0, global.Lpr[idx]*(1.2-local.Lpr[idx])*params.FuseDisagreeDecay)
					if decayed < params.FuseFlipFloor {
						global.Lab[idx] = locLab
						global.Lpr[idx] = local.Lpr[idx]
					} else {
						global.Lpr[idx] = decayed
					}
				}
				// inside the near ring, disagreement is a no-op: trust
				// the persistent map over a single close-range frame.
			}

			mergeGroundHeight(global, local, idx, params)
			mergeNonGroundHeight(global, local, idx, params)
		}
	}

	global.DataOn = true
	return nil
}

// mergeGroundHeight folds local's ground accumulation into global's via a
// hit-count-weighted mean (numeric maintenance).
func mergeGroundHeight(global, local *Grid, idx int, params GridParams) {
	if local.DemgNum[idx] == 0 {
		return
	}
	if global.DemgNum[idx] == 0 {
		global.Demg[idx] = local.Demg[idx]
	} else {
		global.Demg[idx] = stat.Mean(
			[]float64{global.Demg[idx], local.Demg[idx]},
			[]float64{float64(global.DemgNum[idx]), float64(local.DemgNum[idx])},
		)
	}
	global.DemgNum[idx] = saturateAdd(global.DemgNum[idx], int(local.DemgNum[idx]), params.CounterSaturation)
}

// mergeNonGroundHeight folds local's non-ground min/max band into
// global's running band.
func mergeNonGroundHeight(global, local *Grid, idx int, params GridParams) {
	if local.DemHNum[idx] == 0 {
		return
	}
	if global.DemHNum[idx] == 0 {
		global.DemHMin[idx] = local.DemHMin[idx]
		global.DemHMax[idx] = local.DemHMax[idx]
	} else {
		if local.DemHMin[idx] < global.DemHMin[idx] {
			global.DemHMin[idx] = local.DemHMin[idx]
		}
		if local.DemHMax[idx] > global.DemHMax[idx] {
			global.DemHMax[idx] = local.DemHMax[idx]
		}
	}
	global.DemHNum[idx] = saturateAdd(global.DemHNum[idx], int(local.DemHNum[idx]), params.CounterSaturation)
}
