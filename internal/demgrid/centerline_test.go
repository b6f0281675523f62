package demgrid

import (
	"math"
	"testing"
)

func fillTraversableRow(g *Grid, y, x0, x1 int, height float64, count uint16) {
	for x := x0; x <= x1; x++ {
		idx := g.Idx(x, y)
		g.Lab[idx] = LabelTraversable
		g.Demg[idx] = height
		g.DemgNum[idx] = count
	}
}

func TestExtractCenterline_StraightCorridorGivesConstantHeight(t *testing.T) {
	params := newTestParams(41, 41)
	g, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}
	ox := g.OriginX()
	for y := 0; y < g.L; y++ {
		fillTraversableRow(g, y, ox-3, ox+3, 1.5, 4)
	}

	ExtractCenterline(g, params)

	for y := 0; y < g.L; y++ {
		row := g.CenterLn[y]
		if row.X0 > ox-3 || row.X1 < ox+3 {
			t.Fatalf("row %d: expected span to cover corridor, got [%d,%d]", y, row.X0, row.X1)
		}
		if math.Abs(row.H-1.5) > 1e-9 {
			t.Fatalf("row %d: expected height 1.5, got %f", y, row.H)
		}
	}
}

func TestExtractCenterline_InterpolatesGapBetweenValidRows(t *testing.T) {
	params := newTestParams(21, 21)
	g, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}
	ox := g.OriginX()
	ymid := g.OriginY()

	fillTraversableRow(g, ymid, ox-2, ox+2, 2.0, 5)
	far := ymid + 4
	if far >= g.L {
		far = g.L - 1
	}
	fillTraversableRow(g, far, ox-2, ox+2, 4.0, 5)

	ExtractCenterline(g, params)

	for y := ymid + 1; y < far; y++ {
		if g.CenterLn[y].H == InvalidDouble {
			t.Fatalf("row %d: expected interpolated height, got INVALIDDOUBLE", y)
		}
		if g.CenterLn[y].H < 2.0-1e-9 || g.CenterLn[y].H > 4.0+1e-9 {
			t.Fatalf("row %d: interpolated height %f out of bracket range", y, g.CenterLn[y].H)
		}
	}
}

func TestExtractCenterline_RingSpacingFloorsAtPointThree(t *testing.T) {
	params := newTestParams(21, 21)
	g, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}

	ExtractCenterline(g, params)

	ymid := g.OriginY()
	if g.CenterLn[ymid].Dl < 0.3 {
		t.Fatalf("expected ring spacing floor of 0.3, got %f", g.CenterLn[ymid].Dl)
	}
	// Symmetric around the vehicle row.
	if math.Abs(g.CenterLn[ymid+1].Dl-g.CenterLn[ymid-1].Dl) > 1e-9 {
		t.Fatalf("expected symmetric ring spacing around vehicle row")
	}
}

func TestExtractCenterline_AllUnknownYieldsInvalidHeights(t *testing.T) {
	params := newTestParams(11, 11)
	g, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}

	ExtractCenterline(g, params)

	for y := 0; y < g.L; y++ {
		if g.CenterLn[y].H != InvalidDouble {
			t.Fatalf("row %d: expected INVALIDDOUBLE with no ground data, got %f", y, g.CenterLn[y].H)
		}
	}
}
