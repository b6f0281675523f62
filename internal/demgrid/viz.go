package demgrid

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// labelColors maps the coarse Label to a raster color for quick visual
// inspection: unknown is neutral gray, traversable green, non-traversable
// red.
var labelColors = map[Label]color.NRGBA{
	LabelUnknown:        {R: 96, G: 96, B: 96, A: 255},
	LabelTraversable:    {R: 40, G: 180, B: 60, A: 255},
	LabelNonTraversable: {R: 200, G: 40, B: 40, A: 255},
}

var subLabelColors = map[SubLabel]color.NRGBA{
	SubUnknown:        {R: 96, G: 96, B: 96, A: 255},
	SubFlatGround:     {R: 40, G: 180, B: 60, A: 255},
	SubUpSlope:        {R: 60, G: 120, B: 220, A: 255},
	SubDownSlope:      {R: 220, G: 170, B: 40, A: 255},
	SubLeftSideSlope:  {R: 150, G: 90, B: 220, A: 255},
	SubRightSideSlope: {R: 90, G: 200, B: 220, A: 255},
	SubEdgePoints:     {R: 230, G: 230, B: 230, A: 255},
	SubPosSiObsta:     {R: 220, G: 30, B: 30, A: 255},
	SubNegAtObsta:     {R: 120, G: 0, B: 160, A: 255},
}

// RasterizeLabels renders the coarse Label raster as a raw 8-bit color
// image, one pixel per cell, grid row L-1 at the image top and row 0 at
// the bottom (a forward-is-up convention).
func RasterizeLabels(g *Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.W, g.L))
	for y := 0; y < g.L; y++ {
		imgY := g.L - 1 - y
		for x := 0; x < g.W; x++ {
			c := labelColors[g.Lab[g.Idx(x, y)]]
			img.SetNRGBA(x, imgY, c)
		}
	}
	return img
}

// RasterizeSubLabels renders the fine SubLabel raster the same way.
func RasterizeSubLabels(g *Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.W, g.L))
	for y := 0; y < g.L; y++ {
		imgY := g.L - 1 - y
		for x := 0; x < g.W; x++ {
			c := subLabelColors[g.SubLab[g.Idx(x, y)]]
			img.SetNRGBA(x, imgY, c)
		}
	}
	return img
}

// RasterizeConfidence renders the per-cell confidence (Lpr) raster as a
// grayscale image, one pixel per cell: black is lpr=0, white is lpr=1.
// Unlike RasterizeLabels/RasterizeSubLabels there is no palette lookup -
// the raw Lpr value drives intensity directly.
func RasterizeConfidence(g *Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.W, g.L))
	for y := 0; y < g.L; y++ {
		imgY := g.L - 1 - y
		for x := 0; x < g.W; x++ {
			lpr := g.Lpr[g.Idx(x, y)]
			switch {
			case lpr < 0:
				lpr = 0
			case lpr > 1:
				lpr = 1
			}
			v := uint8(math.Round(lpr * 255))
			img.SetNRGBA(x, imgY, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// demHeightGrid adapts a Grid's ground height field to gonum/plot's
// plotter.GridXYZ interface for heatmap rendering.
type demHeightGrid struct {
	g *Grid
}

func (d demHeightGrid) Dims() (c, r int) { return d.g.W, d.g.L }
func (d demHeightGrid) X(c int) float64  { return float64(c-d.g.OriginX()) * d.g.PixSize }
func (d demHeightGrid) Y(r int) float64  { return float64(r-d.g.OriginY()) * d.g.PixSize }
func (d demHeightGrid) Z(c, r int) float64 {
	idx := d.g.Idx(c, r)
	if d.g.DemgNum[idx] == 0 {
		return meanGroundHeight(d.g)
	}
	return d.g.Demg[idx]
}

// meanGroundHeight computes the hit-count weighted mean ground height
// over every populated cell, used to fill holes in the heatmap so a
// single outlier doesn't wash out the color scale.
func meanGroundHeight(g *Grid) float64 {
	var heights, weights []float64
	for i, n := range g.DemgNum {
		if n == 0 {
			continue
		}
		heights = append(heights, g.Demg[i])
		weights = append(weights, float64(n))
	}
	if len(heights) == 0 {
		return 0
	}
	return stat.Mean(heights, weights)
}

// SaveHeightHeatMap renders the ground-height field as a PNG heatmap at
// path, sized widthIn x heightIn (vg.Length, in points).
func SaveHeightHeatMap(g *Grid, path string, widthIn, heightIn vg.Length) error {
	p := plot.New()
	p.Title.Text = "Ground height (m)"
	p.X.Label.Text = "lateral (m)"
	p.Y.Label.Text = "forward (m)"

	hm := plotter.NewHeatMap(demHeightGrid{g: g}, palette.Heat(24, 1))
	p.Add(hm)

	if err := p.Save(widthIn, heightIn, path); err != nil {
		return fmt.Errorf("demgrid: saving height heatmap: %w", err)
	}
	return nil
}
