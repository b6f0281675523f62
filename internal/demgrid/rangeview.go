package demgrid

// RangePoint is a single 3-D return from the external range-view adapter,
// already expressed in the vehicle frame, with a validity bit.
type RangePoint struct {
	X, Y, Z float64
	Valid   bool
}

// Segment describes one contiguous region of the range image identified
// by the external contour-segmentation stage. A region with PointCount>0
// is ground-plausible.
type Segment struct {
	PointCount int
}

// RangeView is the per-frame range image handed to the core by the
// external RangeView adapter: a Wid x Len array of points, a parallel
// RegionID array, and the region segment table. RangeView is consumed
// only; the core never produces one.
type RangeView struct {
	Wid, Len int

	Points   []RangePoint // len Wid*Len
	RegionID []int        // len Wid*Len; indexes into Segments

	Segments []Segment // len RegionCount
}

// NewRangeView allocates an empty RangeView of the given shape.
func NewRangeView(wid, length int) *RangeView {
	n := wid * length
	return &RangeView{
		Wid:      wid,
		Len:      length,
		Points:   make([]RangePoint, n),
		RegionID: make([]int, n),
	}
}

// groundPlausible reports whether the point at flat index i belongs to a
// non-empty region segment: its regionID must index a Segments entry
// with PointCount > 0.
func (rv *RangeView) groundPlausible(i int) bool {
	if i < 0 || i >= len(rv.RegionID) {
		return false
	}
	rid := rv.RegionID[i]
	if rid < 0 || rid >= len(rv.Segments) {
		return false
	}
	return rv.Segments[rid].PointCount > 0
}
