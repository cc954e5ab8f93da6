package multiview

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "240px"

// ChartSeries represents a set of values plotted for a given legend entry.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
}

// ChartPoint represents an individual value (optionally labeled).
type ChartPoint struct {
	Label string
	Value float64
}

// ChartRenderer renders server-side go-echarts markup for chart panels.
type ChartRenderer struct {
	theme      string
	assetsHost string
}

// ChartRendererOption customizes chart rendering.
type ChartRendererOption func(*ChartRenderer)

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so the ECharts runtime loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a chart renderer.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{theme: types.ThemeWesteros}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render draws series as a "line" or "bar" chart.
func (r *ChartRenderer) Render(kind, title string, series []ChartSeries) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("multiview: chart series is required")
	}
	xAxis := axisLabels(series[0].Points)
	switch strings.ToLower(kind) {
	case "line":
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalOptions(title)...)
		line.SetXAxis(xAxis)
		for _, s := range series {
			line.AddSeries(s.Name, toLineData(s.Points))
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case "bar":
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions(title)...)
		bar.SetXAxis(xAxis)
		for _, s := range series {
			bar.AddSeries(s.Name, toBarData(s.Points))
		}
		return renderChart(bar)
	default:
		return "", fmt.Errorf("multiview: unsupported chart type: %s", kind)
	}
}

func (r *ChartRenderer) globalOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func axisLabels(points []ChartPoint) []string {
	labels := make([]string, len(points))
	for i, point := range points {
		labels[i] = point.Label
		if labels[i] == "" {
			labels[i] = fmt.Sprintf("#%d", i+1)
		}
	}
	return labels
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.Label, Value: point.Value}
	}
	return data
}
