package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
	"github.com/Sumatoshi-tech/benchsweep/pkg/results"
)

const (
	pageTitle   = "benchsweep"
	chartWidth  = "100%"
	chartHeight = "500px"
	shortHash   = 7
	xAxisRotate = 45
)

// Plot writes an HTML page charting t.
//
// A collated table (first column "commit") becomes a line chart with one
// series per benchmark across commits; missing values leave gaps. Any other
// table is read as a single report and becomes a bar chart per benchmark
// with one series per numeric column.
func Plot(w io.Writer, t report.Table) error {
	page := components.NewPage()
	page.PageTitle = pageTitle

	header := t.Header()
	if len(header) > 0 && header[0] == results.CommitColumn {
		page.AddCharts(sweepChart(t))
	} else {
		page.AddCharts(reportChart(t))
	}

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	return nil
}

func sweepChart(t report.Table) *charts.Line {
	header := t.Header()
	rows := t.Rows()

	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = shorten(cell(row, 0))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "CPU time per commit"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "bottom"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}, opts.DataZoom{Type: "inside"}),
		charts.WithGridOpts(opts.Grid{Bottom: "20%", ContainLabel: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "commit", AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate}}),
		charts.WithYAxisOpts(opts.YAxis{Name: report.ColumnCPUTime}),
	)
	line.SetXAxis(labels)

	for col := 1; col < len(header); col++ {
		data := make([]opts.LineData, len(rows))
		for i, row := range rows {
			data[i] = opts.LineData{Value: numeric(cell(row, col))}
		}

		line.AddSeries(header[col], data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
		)
	}

	return line
}

func reportChart(t report.Table) *charts.Bar {
	header := t.Header()

	var rows []report.Row

	for _, row := range t.Rows() {
		if cell(row, 0) != report.TotalLabel {
			rows = append(rows, row)
		}
	}

	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = cell(row, 0)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Benchmark report"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"}}),
	)
	bar.SetXAxis(labels)

	for col := 1; col < len(header); col++ {
		data := make([]opts.BarData, len(rows))
		for i, row := range rows {
			data[i] = opts.BarData{Value: numeric(cell(row, col))}
		}

		bar.AddSeries(header[col], data)
	}

	return bar
}

func cell(row report.Row, i int) string {
	if i < len(row) {
		return row[i]
	}

	return ""
}

// numeric returns the cell as a float, or nil so the chart leaves a gap.
func numeric(s string) any {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	return v
}

func shorten(commit string) string {
	if len(commit) <= shortHash {
		return commit
	}

	return commit[:shortHash]
}
