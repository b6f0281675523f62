package demgrid

import "fmt"

// InvalidDouble is the sentinel height value meaning "no measurement".
const InvalidDouble = -1.0e9

// Label is the coarse traversability classification of a cell.
type Label uint8

const (
	LabelUnknown Label = iota
	LabelTraversable
	LabelNonTraversable
)

func (l Label) String() string {
	switch l {
	case LabelTraversable:
		return "TRAVERSABLE"
	case LabelNonTraversable:
		return "NONTRAVERSABLE"
	default:
		return "UNKNOWN"
	}
}

// SubLabel is the fine-grained ground geometry or obstacle-sign label.
type SubLabel uint8

const (
	SubUnknown SubLabel = iota
	SubFlatGround
	SubUpSlope
	SubDownSlope
	SubLeftSideSlope
	SubRightSideSlope
	SubEdgePoints
	SubPosSiObsta
	SubNegAtObsta
)

func (s SubLabel) String() string {
	switch s {
	case SubFlatGround:
		return "FLATGROUND"
	case SubUpSlope:
		return "UPSLOPE"
	case SubDownSlope:
		return "DOWNSLOPE"
	case SubLeftSideSlope:
		return "LEFTSIDESLOPE"
	case SubRightSideSlope:
		return "RIGHTSIDESLOPE"
	case SubEdgePoints:
		return "EDGEPOINTS"
	case SubPosSiObsta:
		return "POSSIOBSTA"
	case SubNegAtObsta:
		return "NEGATOBSTA"
	default:
		return "UNKNOWN"
	}
}

// Pose is the vehicle pose (yaw + planar shift) a grid is expressed in.
type Pose struct {
	AngRad float64 // yaw, radians
	ShvX   float64 // planar shift, meters
	ShvY   float64
}

// CenterlineRow describes the traversable corridor for one scan row:
// the span [X0,X1], the mean road height H, and the expected forward
// inter-ring spacing Dl.
type CenterlineRow struct {
	X0, X1 int
	H      float64
	Dl     float64
}

// Grid is a mutable W x L raster: local (per-frame), global (persistent)
// or scratch ("temp", used only during prediction). Every public
// operation on a Grid must preserve the invariants below.
type Grid struct {
	W, L    int
	PixSize float64

	Trans Pose

	Demg    []float64 // mean ground height; InvalidDouble where DemgNum==0
	DemgNum []uint16  // ground hit count, saturates at CounterSaturation

	DemHMin []float64 // min non-ground height; InvalidDouble where DemHNum==0
	DemHMax []float64 // max non-ground height; InvalidDouble where DemHNum==0
	DemHNum []uint16  // non-ground hit count, saturates at CounterSaturation

	Lab    []Label
	Lpr    []float64 // confidence in [0,1]
	SubLab []SubLabel

	GRoll  []float64 // plane-fit roll, radians
	GPitch []float64 // plane-fit pitch, radians

	CenterLn []CenterlineRow // len L

	// DataOn is true once this grid has been populated by at least one
	// observation. A freshly constructed Grid has DataOn == false.
	DataOn bool

	// AcceptanceBucketsMeters partitions Fuse's agree/disagree outcomes by
	// distance from the vehicle origin into upper-bound-in-meters buckets,
	// for tuning FuseDisagreeDecay/FuseFlipFloor. Left nil (the default for
	// every grid except a Context's Global), bucketing is disabled and
	// Fuse skips the accounting entirely. These counters are grid-level,
	// not per-cell, and survive clear().
	AcceptanceBucketsMeters []float64
	AcceptByRangeBuckets    []int64
	RejectByRangeBuckets    []int64
}

// EnableAcceptanceBuckets installs range buckets (ascending upper bounds in
// meters) and allocates zeroed accept/reject counters to match. Intended
// for the persistent global grid; local/scratch grids have no use for it.
func (g *Grid) EnableAcceptanceBuckets(bucketsMeters []float64) {
	g.AcceptanceBucketsMeters = append([]float64(nil), bucketsMeters...)
	g.AcceptByRangeBuckets = make([]int64, len(bucketsMeters))
	g.RejectByRangeBuckets = make([]int64, len(bucketsMeters))
}

// NewGrid constructs an empty W x L grid. Buffers are allocated
// immediately (the pipeline always touches every cell within the first
// frame) but DataOn starts false, matching the "created empty" lifecycle
// invariant contract described above.
func NewGrid(w, l int, pixSize float64) (*Grid, error) {
	if w <= 0 || l <= 0 {
		return nil, fmt.Errorf("demgrid: width and length must be positive, got w=%d l=%d", w, l)
	}
	if pixSize <= 0 {
		return nil, fmt.Errorf("demgrid: pixel size must be positive, got %f", pixSize)
	}
	g := &Grid{W: w, L: l, PixSize: pixSize}
	g.allocate()
	g.clear()
	return g, nil
}

func (g *Grid) allocate() {
	n := g.W * g.L
	g.Demg = make([]float64, n)
	g.DemgNum = make([]uint16, n)
	g.DemHMin = make([]float64, n)
	g.DemHMax = make([]float64, n)
	g.DemHNum = make([]uint16, n)
	g.Lab = make([]Label, n)
	g.Lpr = make([]float64, n)
	g.SubLab = make([]SubLabel, n)
	g.GRoll = make([]float64, n)
	g.GPitch = make([]float64, n)
	g.CenterLn = make([]CenterlineRow, g.L)
}

// Idx maps a (x,y) cell coordinate to its flat buffer index.
func (g *Grid) Idx(x, y int) int { return y*g.W + x }

// InBounds reports whether (x,y) is a valid cell coordinate.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.L
}

// OriginX and OriginY are the vehicle-centered origin cell.
func (g *Grid) OriginX() int { return g.W / 2 }
func (g *Grid) OriginY() int { return g.L / 2 }

// clear zeros every per-cell field back to its empty-cell representation
// and resets CenterLn, without reallocating buffers. DataOn is left
// false. This is the "zeroed per frame" reset used for the local DEM and
// for the scratch grid after each prediction step.
func (g *Grid) clear() {
	for i := range g.Demg {
		g.Demg[i] = InvalidDouble
		g.DemgNum[i] = 0
		g.DemHMin[i] = InvalidDouble
		g.DemHMax[i] = InvalidDouble
		g.DemHNum[i] = 0
		g.Lab[i] = LabelUnknown
		g.Lpr[i] = 0
		g.SubLab[i] = SubUnknown
		g.GRoll[i] = 0
		g.GPitch[i] = 0
	}
	for y := range g.CenterLn {
		g.CenterLn[y] = CenterlineRow{X0: g.OriginX(), X1: g.OriginX(), H: InvalidDouble}
	}
	g.DataOn = false
}

// Reset is the exported form of clear, for callers outside the package
// that need to explicitly zero a grid before reuse.
func (g *Grid) Reset() { g.clear() }

// CopyFrom deep-copies src's fields into g. Used by the predictor to
// snapshot the persistent global grid into the scratch grid before
// re-registration.
func (g *Grid) CopyFrom(src *Grid) error {
	if g.W != src.W || g.L != src.L {
		return fmt.Errorf("demgrid: CopyFrom dimension mismatch: dst %dx%d, src %dx%d", g.W, g.L, src.W, src.L)
	}
	g.Trans = src.Trans
	copy(g.Demg, src.Demg)
	copy(g.DemgNum, src.DemgNum)
	copy(g.DemHMin, src.DemHMin)
	copy(g.DemHMax, src.DemHMax)
	copy(g.DemHNum, src.DemHNum)
	copy(g.Lab, src.Lab)
	copy(g.Lpr, src.Lpr)
	copy(g.SubLab, src.SubLab)
	copy(g.GRoll, src.GRoll)
	copy(g.GPitch, src.GPitch)
	copy(g.CenterLn, src.CenterLn)
	g.DataOn = src.DataOn
	return nil
}

// CopyCell overwrites every per-cell field of cell dstIdx except Lpr with
// the fields of cell srcIdx from src; the caller sets Lpr. Used by the
// predictor when writing a re-projected cell into its target.
func (g *Grid) CopyCell(dstIdx int, src *Grid, srcIdx int) {
	g.Demg[dstIdx] = src.Demg[srcIdx]
	g.DemgNum[dstIdx] = src.DemgNum[srcIdx]
	g.DemHMin[dstIdx] = src.DemHMin[srcIdx]
	g.DemHMax[dstIdx] = src.DemHMax[srcIdx]
	g.DemHNum[dstIdx] = src.DemHNum[srcIdx]
	g.Lab[dstIdx] = src.Lab[srcIdx]
	g.SubLab[dstIdx] = src.SubLab[srcIdx]
	g.GRoll[dstIdx] = src.GRoll[srcIdx]
	g.GPitch[dstIdx] = src.GPitch[srcIdx]
}

// saturateAdd adds delta to v, capping at cap so hit counters never
// overflow uint16 during long idle periods (the cap is configurable via
// GridParams but defaults to 9999).
func saturateAdd(v uint16, delta int, cap int) uint16 {
	sum := int(v) + delta
	if sum > cap {
		sum = cap
	}
	if sum < 0 {
		sum = 0
	}
	return uint16(sum)
}
