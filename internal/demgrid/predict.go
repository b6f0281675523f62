package demgrid

import "math"

// rotate2D applies a 2-D rotation by angRad to (x,y).
func rotate2D(angRad, x, y float64) (float64, float64) {
	c, s := math.Cos(angRad), math.Sin(angRad)
	return c*x - s*y, s*x + c*y
}

// Predict re-projects the persistent global DEM into the current vehicle
// frame. scratch is used as working storage for the previous
// global state and is cleared again before returning. currentPose is the
// vehicle pose for the frame now being processed.
func Predict(global, scratch *Grid, currentPose Pose, params GridParams) error {
	if err := scratch.CopyFrom(global); err != nil {
		return err
	}
	prevPose := scratch.Trans
	hadData := scratch.DataOn

	global.clear()
	global.Trans = currentPose

	if hadData {
		// R1 rotates point positions by the heading delta; R2 rotates
		// the translation delta into the current vehicle frame.
		r1 := prevPose.AngRad - currentPose.AngRad
		r2 := -currentPose.AngRad
		shvX := prevPose.ShvX - currentPose.ShvX
		shvY := prevPose.ShvY - currentPose.ShvY
		tx, ty := rotate2D(r2, shvX, shvY)

		ox, oy := global.OriginX(), global.OriginY()
		wrote := false

		for y := 0; y < scratch.L; y++ {
			for x := 0; x < scratch.W; x++ {
				srcIdx := scratch.Idx(x, y)
				if scratch.Lab[srcIdx] == LabelUnknown || scratch.Lpr[srcIdx] < params.PredictMinConfidence {
					continue
				}

				px := float64(x-ox) * scratch.PixSize
				py := float64(y-oy) * scratch.PixSize
				px, py = rotate2D(r1, px, py)
				px += tx
				py += ty

				xx := int(math.Round(px/global.PixSize)) + ox
				yy := int(math.Round(py/global.PixSize)) + oy
				if !global.InBounds(xx, yy) {
					continue
				}

				decayedLpr := scratch.Lpr[srcIdx] * params.PredictDecay
				if decayedLpr < params.PredictMinConfidence {
					continue
				}

				dstIdx := global.Idx(xx, yy)
				if mergePredictedCell(global, dstIdx, scratch, srcIdx, decayedLpr) {
					wrote = true
				}
			}
		}
		global.DataOn = wrote
	}

	scratch.clear()
	return nil
}

// mergePredictedCell writes the re-projected source cell srcIdx (from
// scratch) into the target cell dstIdx (in global) with decayed
// confidence decayedLpr, reports whether it wrote anything.
//
// An empty target (lab=UNKNOWN) is populated wholesale. An occupied
// target is only overwritten if its current confidence is lower than
// decayedLpr; oldLab must be captured before CopyCell, since CopyCell
// already overwrites global.Lab[dstIdx] with the incoming label, which
// would make every agree/disagree comparison trivially true otherwise.
func mergePredictedCell(global *Grid, dstIdx int, scratch *Grid, srcIdx int, decayedLpr float64) bool {
	switch {
	case global.Lab[dstIdx] == LabelUnknown:
		global.CopyCell(dstIdx, scratch, srcIdx)
		global.Lpr[dstIdx] = decayedLpr
		return true
	case global.Lpr[dstIdx] < decayedLpr:
		oldLab := global.Lab[dstIdx]
		global.CopyCell(dstIdx, scratch, srcIdx)
		if oldLab == scratch.Lab[srcIdx] {
			global.Lpr[dstIdx] = math.Min(1.0, decayedLpr*1.2)
		} else {
			global.Lab[dstIdx] = scratch.Lab[srcIdx]
			global.Lpr[dstIdx] = math.Min(1.0, decayedLpr*0.8)
		}
		return true
	}
	return false
}
