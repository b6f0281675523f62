package demgrid

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/dem-traversability/internal/monitoring"
)

// Context bundles the three DEM instances a pipeline run needs: the
// per-frame Local grid, the persistent Global grid, and a Scratch grid
// used as working storage during prediction. RunID correlates the
// per-frame log line and every FrameReport emitted by this context
// across a process's lifetime.
type Context struct {
	RunID  uuid.UUID
	Params GridParams

	Local   *Grid
	Global  *Grid
	Scratch *Grid
}

// NewContext allocates the three grids at the dimensions in params.
func NewContext(params GridParams) (*Context, error) {
	local, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		return nil, fmt.Errorf("demgrid: allocating local grid: %w", err)
	}
	global, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		return nil, fmt.Errorf("demgrid: allocating global grid: %w", err)
	}
	scratch, err := NewGrid(params.W, params.L, params.PixSize)
	if err != nil {
		return nil, fmt.Errorf("demgrid: allocating scratch grid: %w", err)
	}
	global.EnableAcceptanceBuckets(DefaultAcceptanceBucketsMeters)
	return &Context{
		RunID:   uuid.New(),
		Params:  params,
		Local:   local,
		Global:  global,
		Scratch: scratch,
	}, nil
}

// FrameReport summarizes one ProcessFrame invocation: coarse label
// histogram plus sub-label counts of the two obstacle flavors and of
// EDGEPOINTS cells, all taken over the Global grid, useful for
// dashboards and regression assertions alike.
type FrameReport struct {
	RunID uuid.UUID

	TraversableCells    int
	NonTraversableCells int
	UnknownCells        int

	PositiveObstacleCells int
	NegativeObstacleCells int
	EdgePointCells        int
}

// ProcessFrame runs the full per-frame sequence in the mandatory order
// from allocation: predict, fuse, extract centerline, sublabel surface,
// sublabel obstacles. BuildLocalDEM runs first since fuse needs it.
//
// The centerline-scoped RoadSurface variant is intentionally not run
// here: the full-grid and centerline-scoped sublabelers are treated
// as two entry points an implementation selects between per call site,
// not two passes over the same frame. Callers that want the
// corridor-restricted classification call ClassifyBlockCenterline
// directly after ProcessFrame returns.
func (c *Context) ProcessFrame(rv *RangeView, pose Pose) (FrameReport, error) {
	BuildLocalDEM(c.Local, rv, pose, c.Params)

	if err := Predict(c.Global, c.Scratch, pose, c.Params); err != nil {
		return FrameReport{}, fmt.Errorf("demgrid: predict: %w", err)
	}
	if err := Fuse(c.Global, c.Local, c.Params); err != nil {
		return FrameReport{}, fmt.Errorf("demgrid: fuse: %w", err)
	}

	ExtractCenterline(c.Global, c.Params)
	ClassifyBlock(c.Global)
	ClassifyObstacles(c.Global, c.Params)

	report := c.summarize()
	monitoring.Logf("demgrid: run=%s frame processed: traversable=%d nontraversable=%d unknown=%d pos_obstacle=%d neg_obstacle=%d",
		c.RunID, report.TraversableCells, report.NonTraversableCells, report.UnknownCells,
		report.PositiveObstacleCells, report.NegativeObstacleCells)
	return report, nil
}

// FusionMetrics returns a snapshot of the global grid's fusion
// accept/reject counts, bucketed by distance from the vehicle origin.
// Returns nil if acceptance bucketing was never enabled on Global.
func (c *Context) FusionMetrics() *FusionMetrics {
	if len(c.Global.AcceptanceBucketsMeters) == 0 {
		return nil
	}
	buckets := make([]float64, len(c.Global.AcceptanceBucketsMeters))
	copy(buckets, c.Global.AcceptanceBucketsMeters)
	accept := make([]int64, len(c.Global.AcceptByRangeBuckets))
	copy(accept, c.Global.AcceptByRangeBuckets)
	reject := make([]int64, len(c.Global.RejectByRangeBuckets))
	copy(reject, c.Global.RejectByRangeBuckets)
	return &FusionMetrics{BucketsMeters: buckets, AcceptCounts: accept, RejectCounts: reject}
}

// ResetFusionMetrics zeros the fusion accept/reject counters without
// touching bucket boundaries, for clean before/after comparisons when
// tuning FuseDisagreeDecay/FuseFlipFloor.
func (c *Context) ResetFusionMetrics() {
	for i := range c.Global.AcceptByRangeBuckets {
		c.Global.AcceptByRangeBuckets[i] = 0
	}
	for i := range c.Global.RejectByRangeBuckets {
		c.Global.RejectByRangeBuckets[i] = 0
	}
}

func (c *Context) summarize() FrameReport {
	r := FrameReport{RunID: c.RunID}
	for i, lab := range c.Global.Lab {
		switch lab {
		case LabelTraversable:
			r.TraversableCells++
		case LabelNonTraversable:
			r.NonTraversableCells++
		default:
			r.UnknownCells++
		}
		switch c.Global.SubLab[i] {
		case SubPosSiObsta:
			r.PositiveObstacleCells++
		case SubNegAtObsta:
			r.NegativeObstacleCells++
		case SubEdgePoints:
			r.EdgePointCells++
		}
	}
	return r
}
