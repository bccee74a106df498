package export

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var chartPalette = []color.RGBA{
	{R: 40, G: 140, B: 255, A: 255},
	{R: 240, G: 70, B: 70, A: 255},
	{R: 60, G: 180, B: 90, A: 255},
	{R: 250, G: 170, B: 30, A: 255},
	{R: 170, G: 90, B: 230, A: 255},
	{R: 90, G: 200, B: 210, A: 255},
}

// Chart renders every body's displacement history as one line chart.
// The output format follows the file extension; .png and .svg both work.
func Chart(path string, s *Series) error {
	if err := s.validate(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Displacement history"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "displacement (m)"
	p.Legend.Top = true

	for j := 0; j < s.bodies(); j++ {
		pts := make(plotter.XYs, len(s.Times))
		for i, t := range s.Times {
			pts[i].X = t
			pts[i].Y = s.Displacements[i][j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.Color = chartPalette[j%len(chartPalette)]
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("body %d", j+1), line)
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
