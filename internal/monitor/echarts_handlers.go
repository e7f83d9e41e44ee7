package monitor

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleTrajectoryChart renders an HTML scatter chart overlaying the
// reference path with the vehicle trajectory of a run. Query params:
//   - run_id (optional; defaults to the most recent run)
//   - max_points (optional; default 4000) to reduce payload size
func (ws *WebServer) handleTrajectoryChart(w http.ResponseWriter, r *http.Request) {
	runID, err := ws.latestRunID(r)
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("resolve run: %v", err))
		return
	}

	ticks, err := ws.store.Ticks(runID)
	if err != nil || len(ticks) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no ticks for run '%s'", runID))
		return
	}

	maxPoints := 4000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	// Downsample both series by stride to stay within maxPoints each.
	pathData := make([]opts.ScatterData, 0, maxPoints)
	maxAbs := 0.0
	for i := 0; i < ws.path.Len(); i += stride(ws.path.Len(), maxPoints) {
		s := ws.path.Samples[i]
		pathData = append(pathData, opts.ScatterData{Value: []interface{}{s.X, s.Y}})
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(s.X), math.Abs(s.Y)))
	}

	trackData := make([]opts.ScatterData, 0, maxPoints)
	for i := 0; i < len(ticks); i += stride(len(ticks), maxPoints) {
		t := ticks[i]
		trackData = append(trackData, opts.ScatterData{Value: []interface{}{t.X, t.Y}})
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(t.X), math.Abs(t.Y)))
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	// Square plot with symmetric axes so the course keeps its shape.
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trajectory", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Reference Path vs Vehicle Trajectory", Subtitle: fmt.Sprintf("run=%s ticks=%d", runID, len(ticks))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("path", pathData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
	scatter.AddSeries("vehicle", trackData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	renderChart(ws, w, scatter)
}

// handleCrossTrackChart renders an HTML line chart of cross-track error and
// velocity over simulation time for a run.
func (ws *WebServer) handleCrossTrackChart(w http.ResponseWriter, r *http.Request) {
	runID, err := ws.latestRunID(r)
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("resolve run: %v", err))
		return
	}

	ticks, err := ws.store.Ticks(runID)
	if err != nil || len(ticks) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no ticks for run '%s'", runID))
		return
	}

	x := make([]string, 0, len(ticks))
	crosstrack := make([]opts.LineData, 0, len(ticks))
	velocity := make([]opts.LineData, 0, len(ticks))
	for _, t := range ticks {
		x = append(x, fmt.Sprintf("%.2f", t.Time))
		crosstrack = append(crosstrack, opts.LineData{Value: t.CrossTrack})
		velocity = append(velocity, opts.LineData{Value: t.Velocity})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Cross-track", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cross-track Error and Velocity", Subtitle: fmt.Sprintf("run=%s", runID)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
	)
	line.SetXAxis(x).
		AddSeries("crosstrack (m)", crosstrack).
		AddSeries("velocity (m/s)", velocity)

	renderChart(ws, w, line)
}

// renderer is the subset of the go-echarts chart API the handlers need.
type renderer interface {
	Render(w io.Writer) error
}

func renderChart(ws *WebServer, w http.ResponseWriter, chart renderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// stride picks a downsampling step so at most maxPoints survive.
func stride(n, maxPoints int) int {
	if n <= maxPoints {
		return 1
	}
	return int(math.Ceil(float64(n) / float64(maxPoints)))
}
