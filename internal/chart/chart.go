// Package chart renders analysis reports as standalone ECharts HTML pages.
package chart

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/indicator"
)

const (
	width  = "1600px"
	height = "600px"

	// missing is how ECharts marks a gap in a line series
	missing = "-"

	// visibleBars is how many trailing bars the zoom window starts on
	visibleBars = 120
)

// Render writes an HTML page with the price chart and its overlays, followed
// by the RSI and ATR panes.
func Render(w io.Writer, report *analysis.Report) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}

	xs := axis(report.Times)
	zoom := zoomStart(report.Len())

	price := newLine(fmt.Sprintf("%s %s", report.Symbol, report.Interval), subtitle(report), zoom)
	price.SetXAxis(xs).
		AddSeries("close", lineData(report.Close)).
		AddSeries(fmt.Sprintf("sma(%d)", report.Params.SMALength), lineData(report.Series[analysis.SMA])).
		AddSeries(fmt.Sprintf("ema(%d)", report.Params.EMALength), lineData(report.Series[analysis.EMA])).
		AddSeries(fmt.Sprintf("rma(%d)", report.Params.RMALength), lineData(report.Series[analysis.RMA])).
		AddSeries("bb upper", lineData(report.Bands.Upper)).
		AddSeries("bb lower", lineData(report.Bands.Lower))

	rsi := newLine(fmt.Sprintf("rsi(%d)", report.Params.RSILength), "", zoom)
	rsi.SetGlobalOptions(charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}))
	rsi.SetXAxis(xs).
		AddSeries("rsi", lineData(report.Series[analysis.RSI]))

	atr := newLine(fmt.Sprintf("atr(%d)", report.Params.ATRLength), "", zoom)
	atr.SetXAxis(xs).
		AddSeries("tr", lineData(report.Series[analysis.TR])).
		AddSeries("atr", lineData(report.Series[analysis.ATR]))

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s %s indicators", report.Symbol, report.Interval)
	page.AddCharts(price, rsi, atr)
	return page.Render(w)
}

func newLine(title, sub string, zoom float32) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  width,
			Height: height,
			Theme:  types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "5%"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: true}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      zoom,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)
	return line
}

func subtitle(report *analysis.Report) string {
	if report.GeneratedAt.IsZero() {
		return report.Provider
	}
	return fmt.Sprintf("%s, generated %s", report.Provider, report.GeneratedAt.Format(time.RFC3339))
}

func axis(times []time.Time) []string {
	xs := make([]string, len(times))
	for i, t := range times {
		xs[i] = t.UTC().Format("2006-01-02 15:04")
	}
	return xs
}

func lineData(s indicator.Series) []opts.LineData {
	data := make([]opts.LineData, len(s))
	for i, v := range s {
		// echarts options are JSON, which has no NaN or Inf
		if indicator.IsNA(v) || math.IsInf(v, 0) {
			data[i] = opts.LineData{Value: missing}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func zoomStart(n int) float32 {
	if n <= visibleBars {
		return 0
	}
	return 100 - float32(visibleBars)/float32(n)*100
}
