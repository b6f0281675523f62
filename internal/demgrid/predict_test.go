package demgrid

import (
	"math"
	"testing"
)

func seedGlobalCell(g *Grid, x, y int, lab Label, lpr float64) {
	idx := g.Idx(x, y)
	g.Lab[idx] = lab
	g.Lpr[idx] = lpr
	g.Demg[idx] = 1.0
	g.DemgNum[idx] = 5
	g.DataOn = true
}

func newTestParams(w, l int) GridParams {
	return DefaultGridParams().WithDimensions(w, l, 0.2)
}

// TestPredict_ZeroDeltaDecaysConfidenceOnly covers the prediction identity
// law: with no pose delta, every cell keeps its label and
// position, and confidence is scaled uniformly by PredictDecay.
func TestPredict_ZeroDeltaDecaysConfidenceOnly(t *testing.T) {
	params := newTestParams(21, 21)
	global, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}
	scratch, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}

	seedGlobalCell(global, global.OriginX()+1, global.OriginY(), LabelTraversable, 0.9)
	global.Trans = Pose{AngRad: 0.3, ShvX: 5, ShvY: -2}

	if err := Predict(global, scratch, global.Trans, params); err != nil {
		t.Fatal(err)
	}

	idx := global.Idx(global.OriginX()+1, global.OriginY())
	if global.Lab[idx] != LabelTraversable {
		t.Fatalf("expected label to survive identity prediction, got %v", global.Lab[idx])
	}
	want := 0.9 * params.PredictDecay
	if math.Abs(global.Lpr[idx]-want) > 1e-9 {
		t.Fatalf("expected lpr=%f, got %f", want, global.Lpr[idx])
	}
}

// TestPredict_NinetyDegreeYawRotatesCellAcrossAxis covers the 90-degree
// yaw boundary scenario: a cell offset on the +x axis from
// the previous frame should land on the +y (or -y) axis after a 90-degree
// heading change, not back on the x axis.
func TestPredict_NinetyDegreeYawRotatesCellAcrossAxis(t *testing.T) {
	params := newTestParams(21, 21)
	global, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}
	scratch, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}

	ox, oy := global.OriginX(), global.OriginY()
	seedGlobalCell(global, ox+2, oy, LabelTraversable, 0.95)
	global.Trans = Pose{AngRad: 0, ShvX: 0, ShvY: 0}

	newPose := Pose{AngRad: -math.Pi / 2, ShvX: 0, ShvY: 0}
	if err := Predict(global, scratch, newPose, params); err != nil {
		t.Fatal(err)
	}

	srcIdx := global.Idx(ox+2, oy)
	if global.Lab[srcIdx] == LabelTraversable {
		t.Fatalf("expected source cell to be vacated after rotation")
	}

	dstIdx := global.Idx(ox, oy+2)
	if global.Lab[dstIdx] != LabelTraversable {
		t.Fatalf("expected cell to rotate onto +y axis, lab=%v", global.Lab[dstIdx])
	}
}

// TestMergePredictedCell_OccupiedTargetDisagreeingLabelsFlips covers the
// occupied-target branch directly: when the incoming label disagrees
// with the cell already occupying the target, the label must flip and
// confidence must use the 0.8 penalty factor, not the 1.2 agreement
// factor. This exercises the oldLab-must-be-captured-before-CopyCell fix.
func TestMergePredictedCell_OccupiedTargetDisagreeingLabelsFlips(t *testing.T) {
	params := newTestParams(5, 5)
	global, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}
	scratch, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}

	dstIdx := global.Idx(2, 2)
	global.Lab[dstIdx] = LabelTraversable
	global.Lpr[dstIdx] = 0.3

	srcIdx := scratch.Idx(1, 1)
	scratch.Lab[srcIdx] = LabelNonTraversable
	scratch.Lpr[srcIdx] = 0.9
	scratch.Demg[srcIdx] = InvalidDouble

	decayedLpr := 0.5
	wrote := mergePredictedCell(global, dstIdx, scratch, srcIdx, decayedLpr)
	if !wrote {
		t.Fatalf("expected occupied lower-confidence target to be overwritten")
	}
	if global.Lab[dstIdx] != LabelNonTraversable {
		t.Fatalf("expected label to flip to the incoming (disagreeing) label, got %v", global.Lab[dstIdx])
	}
	want := math.Min(1.0, decayedLpr*0.8)
	if math.Abs(global.Lpr[dstIdx]-want) > 1e-9 {
		t.Fatalf("expected disagreement penalty factor 0.8 applied, want lpr=%f, got %f", want, global.Lpr[dstIdx])
	}
}

// TestMergePredictedCell_OccupiedTargetAgreeingLabelsReinforces covers the
// occupied-target agreement path for contrast: matching labels should
// reinforce with the 1.2 factor instead.
func TestMergePredictedCell_OccupiedTargetAgreeingLabelsReinforces(t *testing.T) {
	params := newTestParams(5, 5)
	global, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}
	scratch, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		t.Fatal(err)
	}

	dstIdx := global.Idx(2, 2)
	global.Lab[dstIdx] = LabelTraversable
	global.Lpr[dstIdx] = 0.3

	srcIdx := scratch.Idx(1, 1)
	scratch.Lab[srcIdx] = LabelTraversable
	scratch.Lpr[srcIdx] = 0.9

	decayedLpr := 0.5
	if !mergePredictedCell(global, dstIdx, scratch, srcIdx, decayedLpr) {
		t.Fatalf("expected occupied lower-confidence target to be overwritten")
	}
	if global.Lab[dstIdx] != LabelTraversable {
		t.Fatalf("expected label to remain on agreement, got %v", global.Lab[dstIdx])
	}
	want := math.Min(1.0, decayedLpr*1.2)
	if math.Abs(global.Lpr[dstIdx]-want) > 1e-9 {
		t.Fatalf("expected agreement reinforcement factor 1.2 applied, want lpr=%f, got %f", want, global.Lpr[dstIdx])
	}
}

// TestPredict_EmptyGlobalStaysEmpty exercises the first-frame case: a
// global grid with DataOn==false must not populate scratch-derived state.
func TestPredict_EmptyGlobalStaysEmpty(t *testing.T) {
	params := newTestParams(11, 11)
	global, _ := NewGrid(params.W, params.L, params.PixSize)
	scratch, _ := NewGrid(params.W, params.L, params.PixSize)

	if err := Predict(global, scratch, Pose{AngRad: 1, ShvX: 2, ShvY: 3}, params); err != nil {
		t.Fatal(err)
	}
	if global.DataOn {
		t.Fatalf("expected DataOn to remain false for empty global grid")
	}
	for _, lab := range global.Lab {
		if lab != LabelUnknown {
			t.Fatalf("expected all cells to remain UNKNOWN")
		}
	}
}
