package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fieldvector/cuboidlift/internal/lift"
)

// TrajectoryHTML writes an interactive scatter-plus-line page rendering a
// sequence's smoothed footprint centroid (x, z) to filename. Point color
// encodes yaw.
func TrajectoryHTML(report *lift.SequenceReport, filename string) error {
	if len(report.Frames) == 0 {
		return fmt.Errorf("report: cannot render an empty sequence")
	}

	points := make([]opts.ScatterData, 0, len(report.Frames))
	lineData := make([]opts.LineData, 0, len(report.Frames))
	pad := 0.0
	for _, f := range report.Frames {
		x := f.SmoothedPose.BaseCenterWorld[0]
		z := f.SmoothedPose.BaseCenterWorld[2]
		if a := abs(x); a > pad {
			pad = a
		}
		if a := abs(z); a > pad {
			pad = a
		}
		points = append(points, opts.ScatterData{Value: []interface{}{x, z, f.SmoothedPose.YawDeg}})
		lineData = append(lineData, opts.LineData{Value: []interface{}{x, z}})
	}
	pad *= 1.2
	if pad == 0 {
		pad = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Cuboid Lift Trajectory", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Smoothed footprint trajectory", Subtitle: fmt.Sprintf("frames=%d", len(report.Frames))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Z (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Dimension:  2,
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)
	scatter.AddSeries("centroid", points, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Show: opts.Bool(false)}),
	)
	line.AddSeries("path", lineData)
	scatter.Overlap(line)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", filename, err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("report: render trajectory html: %w", err)
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
