package psm

import (
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Panel is one renderable consensus heatmap: a similarity matrix permuted
// into the shared leaf order on both axes, its dataset name and the shared
// cluster boundary positions. The color domain of every panel is [0, 1].
type Panel struct {
	Name  string
	Grid  plotter.GridXYZ
	Ticks []float64
}

// orderedGrid adapts a similarity matrix to plotter.GridXYZ under a leaf
// order, flipping rows so that leaf position 0 renders at the top.
type orderedGrid struct {
	m     *mat.SymDense
	order []int
}

func (g orderedGrid) Dims() (int, int) {
	n := len(g.order)
	return n, n
}

func (g orderedGrid) X(c int) float64 {
	return float64(c)
}

func (g orderedGrid) Y(r int) float64 {
	return float64(r)
}

func (g orderedGrid) Z(c, r int) float64 {
	n := len(g.order)
	return g.m.At(g.order[c], g.order[n-1-r])
}

// ConsensusMap derives a shared observation ordering from the orderby-th
// similarity matrix (0 selects the last, see OrderBy) cut into nclust flat
// clusters, and wraps every matrix of the sequence as a renderable panel
// under that ordering.
func ConsensusMap(p *PosteriorSimilarity, nclust, orderby int) ([]Panel, error) {
	ord, err := OrderBy(p, nclust, orderby)
	if err != nil {
		return nil, err
	}

	panels := make([]Panel, len(p.Matrices))

	for i, m := range p.Matrices {
		panels[i] = Panel{
			Name:  p.Names[i],
			Grid:  orderedGrid{m: m, order: ord.Leaves},
			Ticks: ord.Ticks,
		}
	}

	return panels, nil
}

// RenderConsensusMap draws the panels side by side as heatmaps on a fixed
// [0, 1] color scale, marks the cluster boundaries and writes the composed
// image to file as a PNG.
func RenderConsensusMap(panels []Panel, file string) error {
	var (
		row = make([]*plot.Plot, len(panels))
		pal = moreland.SmoothBlueRed().Palette(255)
	)

	for i, pn := range panels {
		pl := plot.New()
		pl.Title.Text = pn.Name

		h := plotter.NewHeatMap(pn.Grid, pal)
		h.Min, h.Max = 0, 1
		pl.Add(h)

		n, _ := pn.Grid.Dims()
		lo, hi := -0.5, float64(n)-0.5

		for _, b := range pn.Ticks {
			// the vertical boundary at leaf position b and its mirror on
			// the flipped vertical axis
			vl, err := plotter.NewLine(plotter.XYs{{X: b, Y: lo}, {X: b, Y: hi}})
			if err != nil {
				return err
			}

			hl, err := plotter.NewLine(plotter.XYs{{X: lo, Y: float64(n-1) - b}, {X: hi, Y: float64(n-1) - b}})
			if err != nil {
				return err
			}

			pl.Add(vl, hl)
		}

		row[i] = pl
	}

	img := vgimg.New(vg.Length(len(panels))*4*vg.Inch, 4*vg.Inch)
	dc := draw.New(img)

	canvases := plot.Align([][]*plot.Plot{row}, draw.Tiles{Rows: 1, Cols: len(row)}, dc)
	for i, pl := range row {
		pl.Draw(canvases[0][i])
	}

	w, err := os.Create(file)
	if err != nil {
		return err
	}

	defer w.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return err
	}

	return nil
}
