// Package report renders a SequenceReport's smoothed trajectory as a static
// PNG (gonum/plot) or an interactive HTML page (go-echarts). Neither format
// is part of the lift engine's contract; both are adapters over its output.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fieldvector/cuboidlift/internal/lift"
)

// TrajectoryPlotPNG renders the smoothed footprint centroid (x, z) over frame
// index and the smoothed yaw over frame index as two separate PNGs named
// after filename: one with a "-centroid" suffix and one with a "-yaw"
// suffix, matching GridPlotter's one-PNG-per-series convention. Nothing is
// written to filename itself.
func TrajectoryPlotPNG(report *lift.SequenceReport, filename string) error {
	if len(report.Frames) == 0 {
		return fmt.Errorf("report: cannot plot an empty sequence")
	}

	xPts := make(plotter.XYs, 0, len(report.Frames))
	zPts := make(plotter.XYs, 0, len(report.Frames))
	yawPts := make(plotter.XYs, 0, len(report.Frames))
	for _, f := range report.Frames {
		xPts = append(xPts, plotter.XY{X: float64(f.Index), Y: f.SmoothedPose.BaseCenterWorld[0]})
		zPts = append(zPts, plotter.XY{X: float64(f.Index), Y: f.SmoothedPose.BaseCenterWorld[2]})
		yawPts = append(yawPts, plotter.XY{X: float64(f.Index), Y: f.SmoothedPose.YawDeg})
	}

	pCenter := plot.New()
	pCenter.Title.Text = "Smoothed footprint centroid"
	pCenter.X.Label.Text = "Frame"
	pCenter.Y.Label.Text = "Position (m)"

	xLine, err := plotter.NewLine(xPts)
	if err != nil {
		return fmt.Errorf("report: x line: %w", err)
	}
	xLine.Width = vg.Points(1)
	pCenter.Add(xLine)
	pCenter.Legend.Add("x", xLine)

	zLine, err := plotter.NewLine(zPts)
	if err != nil {
		return fmt.Errorf("report: z line: %w", err)
	}
	zLine.Width = vg.Points(1)
	pCenter.Add(zLine)
	pCenter.Legend.Add("z", zLine)

	pCenter.Legend.Top = true
	pCenter.Legend.Left = false
	pCenter.Legend.XOffs = -10
	pCenter.Legend.YOffs = -10

	pYaw := plot.New()
	pYaw.Title.Text = "Smoothed yaw"
	pYaw.X.Label.Text = "Frame"
	pYaw.Y.Label.Text = "Yaw (deg)"

	yawLine, err := plotter.NewLine(yawPts)
	if err != nil {
		return fmt.Errorf("report: yaw line: %w", err)
	}
	yawLine.Width = vg.Points(1)
	pYaw.Add(yawLine)
	pYaw.Legend.Add("yaw", yawLine)
	pYaw.Legend.Top = true
	pYaw.Legend.Left = false
	pYaw.Legend.XOffs = -10
	pYaw.Legend.YOffs = -10

	const width, height = 8 * vg.Inch, 4 * vg.Inch
	if err := pCenter.Save(width, height, suffixed(filename, "centroid")); err != nil {
		return fmt.Errorf("report: save centroid plot: %w", err)
	}
	if err := pYaw.Save(width, height, suffixed(filename, "yaw")); err != nil {
		return fmt.Errorf("report: save yaw plot: %w", err)
	}
	return nil
}

// suffixed inserts "-suffix" before filename's extension, e.g.
// suffixed("out.png", "yaw") -> "out-yaw.png".
func suffixed(filename, suffix string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s-%s%s", base, suffix, ext)
}
