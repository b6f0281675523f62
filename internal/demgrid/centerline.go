package demgrid

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ExtractCenterline populates g.CenterLn from the fused global DEM. It
// must run after Fuse and before the sublabelers, since both the
// centerline-scoped surface variant and the obstacle sublabeler read
// CenterLn.
func ExtractCenterline(g *Grid, params GridParams) {
	sweepCenterline(g)
	interpolateMissingHeights(g)
	computeRingSpacing(g, params)
}

// sweepCenterline runs Phase 1: a forward sweep from the vehicle row to
// the far edge, then a backward sweep from the vehicle row to the near
// edge, re-seeding the search column at the midpoint of the previous
// row's extent (the center row's extent, when starting the backward
// sweep).
func sweepCenterline(g *Grid) {
	ymid := g.OriginY()
	if ymid >= g.L {
		ymid = g.L - 1
	}

	centerRow := extractCenterlineRow(g, ymid, g.OriginX())
	g.CenterLn[ymid] = centerRow
	centerSeed := (centerRow.X0 + centerRow.X1) / 2

	seed := centerSeed
	for y := ymid + 1; y < g.L; y++ {
		row := extractCenterlineRow(g, y, seed)
		g.CenterLn[y] = row
		seed = (row.X0 + row.X1) / 2
	}

	seed = centerSeed
	for y := ymid - 1; y >= 0; y-- {
		row := extractCenterlineRow(g, y, seed)
		g.CenterLn[y] = row
		seed = (row.X0 + row.X1) / 2
	}
}

const centerlineGapTolerance = 5

// extractCenterlineRow grows a traversable span left and right from seed
// on row y, tolerating up to centerlineGapTolerance consecutive
// non-traversable cells before stopping in each direction.
func extractCenterlineRow(g *Grid, y, seed int) CenterlineRow {
	if seed < 0 {
		seed = 0
	}
	if seed >= g.W {
		seed = g.W - 1
	}

	x1, valuesR, weightsR := growCenterline(g, y, seed, 1)
	x0, valuesL, weightsL := growCenterline(g, y, seed, -1)
	// Both walks start on the seed column; count its height only once.
	if si := g.Idx(seed, y); g.Lab[si] == LabelTraversable && g.DemgNum[si] > 0 {
		valuesL, weightsL = valuesL[1:], weightsL[1:]
	}

	values := append(valuesL, valuesR...)
	weights := append(weightsL, weightsR...)

	h := InvalidDouble
	if len(values) > 0 {
		h = stat.Mean(values, weights)
	}
	return CenterlineRow{X0: x0, X1: x1, H: h}
}

// growCenterline walks row y from seed in the given direction (+1 or -1)
// while cells are TRAVERSABLE, collecting each hit cell's ground height
// as a value weighted by its DemgNum hit count, and returns the
// farthest reached column together with the collected value/weight
// slices for stat.Mean.
func growCenterline(g *Grid, y, seed, dir int) (farthest int, values, weights []float64) {
	farthest = seed
	gap := 0
	for x := seed; x >= 0 && x < g.W; x += dir {
		idx := g.Idx(x, y)
		if g.Lab[idx] == LabelTraversable {
			farthest = x
			if g.DemgNum[idx] > 0 {
				values = append(values, g.Demg[idx])
				weights = append(weights, float64(g.DemgNum[idx]))
			}
			gap = 0
			continue
		}
		gap++
		if gap > centerlineGapTolerance {
			break
		}
	}
	return farthest, values, weights
}

// interpolateMissingHeights runs Phase 2: linear interpolation across
// runs of INVALIDDOUBLE height between bracketing valid rows, or a
// constant fill when only one side has a bracket.
func interpolateMissingHeights(g *Grid) {
	L := g.L
	y := 0
	for y < L {
		if g.CenterLn[y].H != InvalidDouble {
			y++
			continue
		}
		runStart := y
		for y < L && g.CenterLn[y].H == InvalidDouble {
			y++
		}
		runEnd := y // exclusive

		var h0, h1 float64
		haveH0 := runStart > 0
		haveH1 := runEnd < L
		if haveH0 {
			h0 = g.CenterLn[runStart-1].H
		}
		if haveH1 {
			h1 = g.CenterLn[runEnd].H
		}

		switch {
		case haveH0 && haveH1:
			span := float64(runEnd - runStart + 1)
			for i := runStart; i < runEnd; i++ {
				t := float64(i-runStart+1) / span
				g.CenterLn[i].H = h0 + (h1-h0)*t
			}
		case haveH0:
			for i := runStart; i < runEnd; i++ {
				g.CenterLn[i].H = h0
			}
		case haveH1:
			for i := runStart; i < runEnd; i++ {
				g.CenterLn[i].H = h1
			}
		}
		// neither side exists: every row is INVALIDDOUBLE, leave as is.
	}
}

// computeRingSpacing runs Phase 3: the expected forward inter-ring
// ground footprint spacing, stored symmetrically around the vehicle row.
func computeRingSpacing(g *Grid, params GridParams) {
	ymid := g.OriginY()
	delta := params.RingDelta()
	for y := 0; y < g.L; y++ {
		dis1 := math.Abs(float64(y-ymid)) * g.PixSize
		dl := math.Tan(math.Atan2(dis1, params.VehicleHeight)+2*delta)*params.VehicleHeight - dis1
		if dl < 0.3 {
			dl = 0.3
		}
		g.CenterLn[y].Dl = dl
	}
}
