package demgrid

import "math"

// BuildLocalDEM rasterizes a RangeView into dst. dst is
// cleared first, so it may be reused frame over frame. pose becomes
// dst.Trans and dst.DataOn is set once accumulation completes.
func BuildLocalDEM(dst *Grid, rv *RangeView, pose Pose, params GridParams) {
	dst.clear()

	demgSum := make([]float64, dst.W*dst.L)
	demgCount := make([]int, dst.W*dst.L)
	nonGroundCount := make([]int, dst.W*dst.L)

	ox, oy := dst.OriginX(), dst.OriginY()

	for i, p := range rv.Points {
		if !p.Valid {
			continue
		}
		ix := int(math.Round(p.X/dst.PixSize)) + ox
		iy := int(math.Round(p.Y/dst.PixSize)) + oy
		ground := rv.groundPlausible(i)

		for dy := 0; dy <= 1; dy++ {
			for dx := 0; dx <= 1; dx++ {
				cx, cy := ix+dx, iy+dy
				if !dst.InBounds(cx, cy) {
					continue
				}
				idx := dst.Idx(cx, cy)
				if ground {
					demgSum[idx] += p.Z
					demgCount[idx]++
				} else {
					if nonGroundCount[idx] == 0 {
						dst.DemHMin[idx] = p.Z
						dst.DemHMax[idx] = p.Z
					} else {
						if p.Z < dst.DemHMin[idx] {
							dst.DemHMin[idx] = p.Z
						}
						if p.Z > dst.DemHMax[idx] {
							dst.DemHMax[idx] = p.Z
						}
					}
					nonGroundCount[idx]++
				}
			}
		}
	}

	for idx := range dst.Demg {
		if demgCount[idx] > 0 {
			dst.Demg[idx] = demgSum[idx] / float64(demgCount[idx])
			dst.DemgNum[idx] = saturateAdd(0, demgCount[idx], params.CounterSaturation)
		}
		if nonGroundCount[idx] > 0 {
			dst.DemHNum[idx] = saturateAdd(0, nonGroundCount[idx], params.CounterSaturation)
		}
	}

	labelCells(dst, params)
	applyConsistencyFilter(dst)

	dst.Trans = pose
	dst.DataOn = true
}

// labelCells assigns the coarse Label:
//   - no ground, no non-ground hit -> UNKNOWN
//   - ground only -> TRAVERSABLE
//   - non-ground only -> TRAVERSABLE if the whole non-ground band lies
//     within POSOBSMINHEIGHT of the nearest ground height in the 5x5
//     neighborhood, else NONTRAVERSABLE
//   - both -> TRAVERSABLE (overhanging structure permitted)
func labelCells(g *Grid, params GridParams) {
	for y := 0; y < g.L; y++ {
		for x := 0; x < g.W; x++ {
			idx := g.Idx(x, y)
			hasGround := g.DemgNum[idx] > 0
			hasNonGround := g.DemHNum[idx] > 0

			switch {
			case !hasGround && !hasNonGround:
				g.Lab[idx] = LabelUnknown
			case hasGround:
				g.Lab[idx] = LabelTraversable
			default: // non-ground only
				gz, found := nearestGroundHeight(g, x, y, 2)
				if found && g.DemHMin[idx] >= gz-params.PosObsMinHeight && g.DemHMax[idx] <= gz+params.PosObsMinHeight {
					g.Lab[idx] = LabelTraversable
				} else {
					g.Lab[idx] = LabelNonTraversable
				}
			}
		}
	}
}

// nearestGroundHeight searches the (2*radius+1)^2 neighborhood (5x5 for
// radius=2) for the closest cell with a ground height.
func nearestGroundHeight(g *Grid, cx, cy, radius int) (float64, bool) {
	bestDist := math.MaxFloat64
	best := 0.0
	found := false
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := cx+dx, cy+dy
			if !g.InBounds(x, y) {
				continue
			}
			idx := g.Idx(x, y)
			if g.DemgNum[idx] == 0 {
				continue
			}
			d := float64(dx*dx + dy*dy)
			if d < bestDist {
				bestDist = d
				best = g.Demg[idx]
				found = true
			}
		}
	}
	return best, found
}

// applyConsistencyFilter removes irregular isolated labels: a cell keeps
// its label only if at least 2 of its 3x3-window neighbors (including
// itself) share it; otherwise it is reset to UNKNOWN. Surviving cells
// get lpr = (matches/total)*0.5+0.5.
func applyConsistencyFilter(g *Grid) {
	before := make([]Label, len(g.Lab))
	copy(before, g.Lab)

	for y := 0; y < g.L; y++ {
		for x := 0; x < g.W; x++ {
			idx := g.Idx(x, y)
			label := before[idx]
			if label == LabelUnknown {
				g.Lpr[idx] = 0
				continue
			}

			matches, total := 0, 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if !g.InBounds(nx, ny) {
						continue
					}
					total++
					if before[g.Idx(nx, ny)] == label {
						matches++
					}
				}
			}

			if matches < 2 {
				g.Lab[idx] = LabelUnknown
				g.SubLab[idx] = SubUnknown
				g.Lpr[idx] = 0
				continue
			}
			g.Lpr[idx] = float64(matches)/float64(total)*0.5 + 0.5
		}
	}
}
