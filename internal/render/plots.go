// Package render produces static PNG plots of a finished simulation run:
// the reference path with the driven trajectory and periodic car outlines,
// and the cross-track error / velocity time series.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pathtrack/internal/course"
	"github.com/banshee-data/pathtrack/internal/sim"
	"github.com/banshee-data/pathtrack/internal/vehicle"
)

// outlineCount is how many car poses get drawn along the trajectory.
const outlineCount = 10

var (
	pathColor    = color.RGBA{R: 218, G: 165, B: 32, A: 255} // gold, like the demo
	trackColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	carColor     = color.RGBA{A: 255} // black
	velocityCol  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	crossTrackCo = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// SaveRunPlots writes the trajectory and diagnostics plots for a run into
// outputDir and returns the number of files written.
func SaveRunPlots(outputDir string, path *course.Path, snaps []sim.Snapshot, desc vehicle.Description) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	count := 0
	if err := trajectoryPlot(filepath.Join(outputDir, "trajectory.png"), path, snaps, desc); err != nil {
		return count, fmt.Errorf("trajectory plot: %w", err)
	}
	count++

	if err := diagnosticsPlot(filepath.Join(outputDir, "diagnostics.png"), snaps); err != nil {
		return count, fmt.Errorf("diagnostics plot: %w", err)
	}
	count++

	return count, nil
}

// SaveCoursePlot writes a plot of the reference path alone, with no
// trajectory overlay. Used by the offline course inspection tool.
func SaveCoursePlot(file string, path *course.Path) error {
	return trajectoryPlot(file, path, nil, vehicle.Description{})
}

// trajectoryPlot overlays the reference path, the driven trajectory and a
// handful of car outlines on a square, symmetric-axis plot.
func trajectoryPlot(file string, path *course.Path, snaps []sim.Snapshot, desc vehicle.Description) error {
	p := plot.New()
	p.Title.Text = "Reference Path vs Vehicle Trajectory"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	maxAbs := 1.0

	pathPts := make(plotter.XYs, len(path.Samples))
	for i, s := range path.Samples {
		pathPts[i] = plotter.XY{X: s.X, Y: s.Y}
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(s.X), math.Abs(s.Y)))
	}
	pathLine, err := plotter.NewLine(pathPts)
	if err != nil {
		return err
	}
	pathLine.Color = pathColor
	pathLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(pathLine)
	p.Legend.Add("path", pathLine)

	if len(snaps) > 0 {
		trackPts := make(plotter.XYs, len(snaps))
		for i, s := range snaps {
			trackPts[i] = plotter.XY{X: s.X, Y: s.Y}
			maxAbs = math.Max(maxAbs, math.Max(math.Abs(s.X), math.Abs(s.Y)))
		}
		trackLine, err := plotter.NewLine(trackPts)
		if err != nil {
			return err
		}
		trackLine.Color = trackColor
		trackLine.Width = vg.Points(1)
		p.Add(trackLine)
		p.Legend.Add("vehicle", trackLine)

		step := len(snaps) / outlineCount
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(snaps); i += step {
			if err := addCarOutline(p, desc, snaps[i]); err != nil {
				return err
			}
		}
	}

	// Symmetric axes keep the course's aspect ratio on the square canvas.
	pad := maxAbs * 1.05
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 10*vg.Inch, file)
}

// addCarOutline draws the body and wheel rectangles for one snapshot pose.
func addCarOutline(p *plot.Plot, desc vehicle.Description, snap sim.Snapshot) error {
	body, wheels := desc.Outline(snap.X, snap.Y, snap.Yaw, snap.Steer)
	for _, poly := range append([]vehicle.Polyline{body}, wheels...) {
		pts := make(plotter.XYs, len(poly.X))
		for i := range poly.X {
			pts[i] = plotter.XY{X: poly.X[i], Y: poly.Y[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = carColor
		line.Width = vg.Points(0.5)
		p.Add(line)
	}
	return nil
}

// diagnosticsPlot charts cross-track error and velocity over sim time.
func diagnosticsPlot(file string, snaps []sim.Snapshot) error {
	p := plot.New()
	p.Title.Text = "Run Diagnostics"
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "crosstrack (m) / velocity (m/s)"
	p.Add(plotter.NewGrid())

	ctPts := make(plotter.XYs, len(snaps))
	vPts := make(plotter.XYs, len(snaps))
	for i, s := range snaps {
		ctPts[i] = plotter.XY{X: s.Time, Y: s.CrossTrack}
		vPts[i] = plotter.XY{X: s.Time, Y: s.Velocity}
	}

	ctLine, err := plotter.NewLine(ctPts)
	if err != nil {
		return err
	}
	ctLine.Color = crossTrackCo
	p.Add(ctLine)
	p.Legend.Add("crosstrack", ctLine)

	vLine, err := plotter.NewLine(vPts)
	if err != nil {
		return err
	}
	vLine.Color = velocityCol
	p.Add(vLine)
	p.Legend.Add("velocity", vLine)

	p.Legend.Top = true
	return p.Save(14*vg.Inch, 6*vg.Inch, file)
}
