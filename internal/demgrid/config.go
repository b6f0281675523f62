package demgrid

import (
	"math"

	"github.com/banshee-data/dem-traversability/internal/config"
)

// GridParams is the runtime form of config.GridConfig: plain values ready
// for use on the per-cell hot path, with raster dimensions already
// resolved from physical size / pixel size.
type GridParams struct {
	W, L    int
	PixSize float64

	PosObsMinHeight  float64
	VehicleHeight    float64
	NearVehicleDis   float64
	VMaxAngRad       float64
	VMinAngRad       float64
	RingCount        int

	PredictDecay         float64
	PredictMinConfidence float64

	FuseBlindOutside    float64
	FuseNearRing        float64
	FuseOccludedNear    float64
	FuseOccludedFar     float64
	FuseDisagreeDecay   float64
	FuseFlipFloor       float64
	CounterSaturation   int

	ObstacleGapSearchRows int
	ObstacleMinGap        float64

	// DebugRow{Min,Max} and DebugCol{Min,Max} restrict per-cell hot-loop
	// tracing to a small window of the grid. Left at zero, no window is
	// configured and IsInDebugRange always reports false, so fuse.go's
	// per-cell Logf call never fires.
	DebugRowMin int
	DebugRowMax int
	DebugColMin int
	DebugColMax int
}

// HasDebugRange reports whether any debug window bound is set.
func (p GridParams) HasDebugRange() bool {
	return p.DebugRowMax > 0 || p.DebugRowMin > 0 || p.DebugColMax > 0 || p.DebugColMin > 0
}

// IsInDebugRange reports whether cell (x,y) falls within the configured
// debug window. If no window is configured, it returns false.
func (p GridParams) IsInDebugRange(x, y int) bool {
	hasRowLimit := p.DebugRowMax > 0 || p.DebugRowMin > 0
	hasColLimit := p.DebugColMax > 0 || p.DebugColMin > 0

	if !hasRowLimit && !hasColLimit {
		return false
	}
	if hasRowLimit && (y < p.DebugRowMin || y > p.DebugRowMax) {
		return false
	}
	if hasColLimit && (x < p.DebugColMin || x > p.DebugColMax) {
		return false
	}
	return true
}

// WithDebugRange overrides the per-cell trace window used by
// IsInDebugRange.
func (p GridParams) WithDebugRange(rowMin, rowMax, colMin, colMax int) GridParams {
	p.DebugRowMin, p.DebugRowMax, p.DebugColMin, p.DebugColMax = rowMin, rowMax, colMin, colMax
	return p
}

// DefaultGridParams returns GridParams loaded from the canonical tuning
// defaults file. Panics if the file cannot be found; intended for tests
// and binaries that have already validated config availability.
func DefaultGridParams() GridParams {
	return GridParamsFromConfig(config.MustLoadDefaultConfig())
}

// GridParamsFromConfig builds GridParams from a loaded GridConfig.
func GridParamsFromConfig(cfg *config.GridConfig) GridParams {
	pix := cfg.GetPixelSizeMeters()
	return GridParams{
		W:       int(math.Round(cfg.GetWidthMeters() / pix)),
		L:       int(math.Round(cfg.GetLengthMeters() / pix)),
		PixSize: pix,

		PosObsMinHeight: cfg.GetPosObsMinHeightMeters(),
		VehicleHeight:   cfg.GetVehicleHeightMeters(),
		NearVehicleDis:  cfg.GetNearVehicleDistanceMeters(),
		VMaxAngRad:      cfg.GetVMaxAngDeg() * math.Pi / 180.0,
		VMinAngRad:      cfg.GetVMinAngDeg() * math.Pi / 180.0,
		RingCount:       cfg.GetVerticalRingCount(),

		PredictDecay:         cfg.GetPredictConfidenceDecay(),
		PredictMinConfidence: cfg.GetPredictMinConfidence(),

		FuseBlindOutside:  cfg.GetFuseBlindOutsideMeters(),
		FuseNearRing:      cfg.GetFuseNearRingMeters(),
		FuseOccludedNear:  cfg.GetFuseOccludedNearFactor(),
		FuseOccludedFar:   cfg.GetFuseOccludedFarFactor(),
		FuseDisagreeDecay: cfg.GetFuseDisagreeDecayFactor(),
		FuseFlipFloor:     cfg.GetFuseFlipConfidenceFloor(),
		CounterSaturation: cfg.GetCounterSaturation(),

		ObstacleGapSearchRows: cfg.GetObstacleGapSearchRows(),
		ObstacleMinGap:        cfg.GetObstacleMinGapMeters(),
	}
}

// WithDimensions overrides the raster geometry directly (useful for tests
// that want a small grid without round-tripping through physical sizes).
func (p GridParams) WithDimensions(w, l int, pixSize float64) GridParams {
	p.W, p.L, p.PixSize = w, l, pixSize
	return p
}

// WithPredictDecay overrides the per-frame confidence decay factor.
func (p GridParams) WithPredictDecay(v float64) GridParams {
	p.PredictDecay = v
	return p
}

// WithNearVehicleDistance overrides the blind-ring radius.
func (p GridParams) WithNearVehicleDistance(v float64) GridParams {
	p.NearVehicleDis = v
	return p
}

// RingDelta returns the angular spacing between adjacent LiDAR rings
// (Δ = (VMAXANG-VMINANG)/63).
func (p GridParams) RingDelta() float64 {
	if p.RingCount <= 1 {
		return 0
	}
	return (p.VMaxAngRad - p.VMinAngRad) / float64(p.RingCount-1)
}
