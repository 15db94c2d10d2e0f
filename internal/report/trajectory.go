// Package report renders recorded tracker commits as PNG charts.
package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/tracking"
)

// ErrNoCommits is returned when there is nothing to plot.
var ErrNoCommits = errors.New("no commits to plot")

// PlotTrajectory draws the committed positions in normalized frame
// coordinates and saves the chart to path. The file format follows the
// extension (.png, .svg, .pdf).
//
// The path is drawn as a grey line in commit order, with each commit marked
// in the color that was detected. Y is flipped so the chart reads like the
// camera image.
func PlotTrajectory(commits []tracking.Commit, path string) error {
	if len(commits) == 0 {
		return ErrNoCommits
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Session %s - Committed Positions", commits[0].SessionID)
	p.X.Label.Text = "X (normalized)"
	p.Y.Label.Text = "Y (normalized, flipped)"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	trail := make(plotter.XYs, len(commits))
	byColor := make(map[detection.TrackingColor]plotter.XYs)
	for i, c := range commits {
		pt := plotter.XY{X: c.Position.X, Y: 1 - c.Position.Y}
		trail[i] = pt
		byColor[c.Color] = append(byColor[c.Color], pt)
	}

	line, err := plotter.NewLine(trail)
	if err != nil {
		return err
	}
	line.Color = color.Gray{Y: 160}
	line.Width = vg.Points(0.5)
	p.Add(line)

	for _, tc := range detection.ScanOrder(detection.Auto) {
		pts := byColor[tc]
		if len(pts) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = tc.Display()
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		p.Legend.Add(tc.String(), scatter)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save trajectory plot: %w", err)
	}
	return nil
}

// PlotArea draws the committed region area against tracker time.
func PlotArea(commits []tracking.Commit, path string) error {
	if len(commits) == 0 {
		return ErrNoCommits
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Session %s - Committed Area", commits[0].SessionID)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Area (pixels)"

	pts := make(plotter.XYs, len(commits))
	for i, c := range commits {
		pts[i] = plotter.XY{X: c.Time, Y: float64(c.Area)}
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	points.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(line, points)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save area plot: %w", err)
	}
	return nil
}
