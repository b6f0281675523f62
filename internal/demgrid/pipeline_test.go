package demgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticRangeView(params GridParams) *RangeView {
	rv := NewRangeView(params.W, params.L)
	for i := range rv.Points {
		x := i % params.W
		y := i / params.W
		// A flat ground plane under the whole footprint, one segment.
		rv.Points[i] = RangePoint{
			X:     float64(x-params.W/2) * params.PixSize,
			Y:     float64(y-params.L/2) * params.PixSize,
			Z:     0.0,
			Valid: true,
		}
		rv.RegionID[i] = 0
	}
	rv.Segments = []Segment{{PointCount: len(rv.Points)}}
	return rv
}

func TestContext_ProcessFrame_RunsFullPipelineOrder(t *testing.T) {
	params := newTestParams(41, 41)
	ctx, err := NewContext(params)
	require.NoError(t, err)
	rv := syntheticRangeView(params)

	report, err := ctx.ProcessFrame(rv, Pose{})
	require.NoError(t, err)
	assert.Equal(t, ctx.RunID, report.RunID)
	assert.Greater(t, report.TraversableCells, 0, "flat ground plane should yield traversable cells")
	assert.True(t, ctx.Global.DataOn)
}

func TestContext_ProcessFrame_AccumulatesAcrossFrames(t *testing.T) {
	params := newTestParams(41, 41)
	ctx, err := NewContext(params)
	require.NoError(t, err)
	rv := syntheticRangeView(params)

	first, err := ctx.ProcessFrame(rv, Pose{})
	require.NoError(t, err)
	second, err := ctx.ProcessFrame(rv, Pose{ShvX: 0.2})
	require.NoError(t, err)

	assert.Greater(t, second.TraversableCells, 0, "traversable cells should persist across frames")
	assert.Equal(t, first.RunID, second.RunID, "RunID should stay stable across frames in the same context")
}

// TestContext_FusionMetrics_AccumulatesAcceptsAndResets covers the
// acceptance/rejection bucketing diagnostic: a flat ground plane fused
// twice in a row should register agreeing (accepted) updates, and
// ResetFusionMetrics should zero them back out without touching buckets.
func TestContext_FusionMetrics_AccumulatesAcceptsAndResets(t *testing.T) {
	params := newTestParams(41, 41)
	ctx, err := NewContext(params)
	require.NoError(t, err)
	rv := syntheticRangeView(params)

	_, err = ctx.ProcessFrame(rv, Pose{})
	require.NoError(t, err)
	_, err = ctx.ProcessFrame(rv, Pose{})
	require.NoError(t, err)

	metrics := ctx.FusionMetrics()
	require.NotNil(t, metrics)
	assert.Equal(t, DefaultAcceptanceBucketsMeters, metrics.BucketsMeters)

	var totalAccept int64
	for _, n := range metrics.AcceptCounts {
		totalAccept += n
	}
	assert.Greater(t, totalAccept, int64(0), "repeated agreeing fuses should accrue accept counts")

	ctx.ResetFusionMetrics()
	reset := ctx.FusionMetrics()
	require.NotNil(t, reset)
	for _, n := range reset.AcceptCounts {
		assert.Zero(t, n)
	}
	for _, n := range reset.RejectCounts {
		assert.Zero(t, n)
	}
	assert.Equal(t, DefaultAcceptanceBucketsMeters, reset.BucketsMeters, "reset must not touch bucket boundaries")
}
