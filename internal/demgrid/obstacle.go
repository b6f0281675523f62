package demgrid

import "math"

// ClassifyObstacles runs the Obstacle sublabeler. Must run
// after ExtractCenterline, since every classification is relative to
// centerln[y].h.
//
// The POSSIOBSTA test is a disjunction: demhmin[yy] < centerln[yy].h +
// VEHICLEHEIGHT, OR demhmax[yy] > centerln[yy].h + POSOBSMINHEIGHT.
// Because VEHICLEHEIGHT is normally much larger than POSOBSMINHEIGHT,
// the first clause fires for almost any non-traversable cell near road
// height. That disjunction is authoritative over any tighter conjunction
// a reader might expect; it is implemented exactly as intended, not
// tightened.
func ClassifyObstacles(g *Grid, params GridParams) {
	ox, oy := g.OriginX(), g.OriginY()

	for x := 0; x < g.W; x++ {
		y := 0
		for y < g.L {
			idx := g.Idx(x, y)
			if g.Lab[idx] != LabelTraversable {
				y++
				continue
			}

			dist := math.Hypot(float64(x-ox), float64(y-oy)) * g.PixSize
			if dist <= params.NearVehicleDis {
				y++
				continue
			}

			y0, kind, found := scanAheadForLabel(g, x, y, params.ObstacleGapSearchRows)
			if !found {
				y++
				continue
			}

			switch kind {
			case LabelNonTraversable:
				yy := y0
				for yy < g.L && g.Lab[g.Idx(x, yy)] == LabelNonTraversable {
					classifyObstacleCell(g, x, yy, params)
					yy++
				}
				y = yy

			case LabelTraversable:
				gapMeters := float64(y0-y) * g.PixSize
				threshold := math.Max(params.ObstacleMinGap, g.CenterLn[y0].Dl)
				if gapMeters > threshold {
					for yy := y + 1; yy < y0; yy++ {
						gi := g.Idx(x, yy)
						if g.Lab[gi] == LabelUnknown {
							g.SubLab[gi] = SubNegAtObsta
						}
					}
				}
				y = y0

			default:
				y++
			}
		}
	}
}

// scanAheadForLabel looks up to maxRows rows ahead of (x,y) for the next
// cell that is NONTRAVERSABLE or TRAVERSABLE, skipping UNKNOWN cells.
func scanAheadForLabel(g *Grid, x, y, maxRows int) (int, Label, bool) {
	for step := 1; step <= maxRows; step++ {
		yy := y + step
		if yy >= g.L {
			break
		}
		lab := g.Lab[g.Idx(x, yy)]
		if lab == LabelNonTraversable || lab == LabelTraversable {
			return yy, lab, true
		}
	}
	return 0, LabelUnknown, false
}

// classifyObstacleCell applies the height-vs-centerline test to a single
// NONTRAVERSABLE cell.
func classifyObstacleCell(g *Grid, x, y int, params GridParams) {
	idx := g.Idx(x, y)
	row := g.CenterLn[y]
	if row.H == InvalidDouble {
		return
	}

	switch {
	case g.DemHMin[idx] < row.H+params.VehicleHeight || g.DemHMax[idx] > row.H+params.PosObsMinHeight:
		g.SubLab[idx] = SubPosSiObsta
	case g.DemHMax[idx] < row.H-params.PosObsMinHeight:
		g.SubLab[idx] = SubNegAtObsta
	}
}
