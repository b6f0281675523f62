package demgrid

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	blockSize        = 10
	maxDemPtNum      = 1000
	minPlaneSamples  = 10
	primaryTiltRad   = 0.696 // ~40 degrees
	centerlineTiltRad = 0.174 // ~10 degrees
)

type demSample struct {
	x, y, z float64
}

// ClassifyBlock runs the full-grid RoadSurface sublabeler (the primary
// code path): a 10x10 block raster over the whole grid, using every
// TRAVERSABLE cell in the block as a plane-fit sample and a
// dominant-tilt threshold of 0.696 rad.
func ClassifyBlock(g *Grid) {
	classifyBlocks(g, primaryTiltRad, func(g *Grid, bx, by int) (int, int) {
		return bx, bx + blockSize - 1
	}, false)
}

// ClassifyBlockCenterline runs the centerline-scoped variant: the sample
// set for each block row is restricted to centerln[y].x0..x1, and the
// dominant-tilt threshold tightens to 0.174 rad. Must run after
// ExtractCenterline has populated g.CenterLn.
//
// This variant preserves a known quirk: the LEFT/RIGHTSIDESLOPE
// else-if tests ax (not ay) for the left-side branch. That is the
// intended behavior here, not an accidental bug.
func ClassifyBlockCenterline(g *Grid) {
	classifyBlocks(g, centerlineTiltRad, func(g *Grid, bx, by int) (int, int) {
		x0, x1 := bx, bx+blockSize-1
		for yy := by; yy < by+blockSize && yy < g.L; yy++ {
			row := g.CenterLn[yy]
			if row.X0 > x0 {
				x0 = row.X0
			}
			if row.X1 < x1 {
				x1 = row.X1
			}
		}
		return x0, x1
	}, true)
}

func classifyBlocks(g *Grid, threshold float64, colRange func(g *Grid, bx, by int) (int, int), quirkAxisTest bool) {
	for by := 0; by < g.L; by += blockSize {
		for bx := 0; bx < g.W; bx += blockSize {
			classifyOneBlock(g, bx, by, threshold, colRange, quirkAxisTest)
		}
	}
}

func classifyOneBlock(g *Grid, bx, by int, threshold float64, colRange func(g *Grid, bx, by int) (int, int), quirkAxisTest bool) {
	x0, x1 := colRange(g, bx, by)

	seeded := false
	for y := by; y < by+blockSize && y < g.L; y++ {
		for x := bx; x < bx+blockSize && x < g.W; x++ {
			idx := g.Idx(x, y)
			if g.Lab[idx] == LabelTraversable && g.SubLab[idx] == SubUnknown {
				seeded = true
			}
		}
	}
	if !seeded {
		return
	}

	samples := make([]demSample, 0, maxDemPtNum)
	for y := by; y < by+blockSize && y < g.L; y++ {
		for x := x0; x <= x1 && x < g.W; x++ {
			idx := g.Idx(x, y)
			if g.Lab[idx] != LabelTraversable || g.DemgNum[idx] == 0 {
				continue
			}
			samples = append(samples, demSample{x: float64(x), y: float64(y), z: g.Demg[idx]})
			if len(samples) >= maxDemPtNum {
				break
			}
		}
	}

	var sub SubLabel
	var roll, pitch float64
	if len(samples) < minPlaneSamples {
		sub = SubEdgePoints
	} else {
		a, b, ok := fitPlane(samples)
		if !ok {
			sub = SubEdgePoints
		} else {
			roll, pitch = planeTilt(a, b)
			sub = classifyTilt(roll, pitch, threshold, quirkAxisTest)
		}
	}

	for y := by; y < by+blockSize && y < g.L; y++ {
		for x := bx; x < bx+blockSize && x < g.W; x++ {
			idx := g.Idx(x, y)
			if g.Lab[idx] != LabelTraversable {
				continue
			}
			g.SubLab[idx] = sub
			g.GRoll[idx] = roll
			g.GPitch[idx] = pitch
		}
	}
}

// fitPlane solves the least-squares plane z = a*x + b*y + c via the
// normal equations A^T A [a b c]^T = A^T z.
func fitPlane(samples []demSample) (a, b float64, ok bool) {
	n := len(samples)
	aData := make([]float64, n*3)
	zData := make([]float64, n)
	for i, s := range samples {
		aData[i*3+0] = s.x
		aData[i*3+1] = s.y
		aData[i*3+2] = 1
		zData[i] = s.z
	}
	A := mat.NewDense(n, 3, aData)
	z := mat.NewVecDense(n, zData)

	var ata mat.Dense
	ata.Mul(A.T(), A)
	var atz mat.VecDense
	atz.MulVec(A.T(), z)

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(&ata, &atz); err != nil {
		return 0, 0, false
	}
	return coeffs.AtVec(0), coeffs.AtVec(1), true
}

// planeTilt recovers (roll, pitch) from the plane z = a*x + b*y + c's
// upward-facing unit normal.
func planeTilt(a, b float64) (roll, pitch float64) {
	nx, ny, nz := -a, -b, 1.0
	norm := math.Sqrt(nx*nx + ny*ny + nz*nz)
	nx, ny, nz = nx/norm, ny/norm, nz/norm

	roll = math.Asin(-ny)
	cosRoll := math.Cos(roll)
	if cosRoll == 0 {
		return roll, 0
	}
	pitch = math.Atan2(nx/cosRoll, nz/cosRoll)
	return roll, pitch
}

// classifyTilt maps (ax=roll, ay=pitch) to a sub-label by dominant axis.
func classifyTilt(ax, ay, threshold float64, quirkAxisTest bool) SubLabel {
	if math.Abs(ax) > math.Abs(ay) {
		switch {
		case ax > threshold:
			return SubUpSlope
		case ax < -threshold:
			return SubDownSlope
		default:
			return SubFlatGround
		}
	}

	if quirkAxisTest {
		switch {
		case ay > threshold:
			return SubRightSideSlope
		case ax < -threshold:
			return SubLeftSideSlope
		default:
			return SubFlatGround
		}
	}

	switch {
	case ay > threshold:
		return SubRightSideSlope
	case ay < -threshold:
		return SubLeftSideSlope
	default:
		return SubFlatGround
	}
}
