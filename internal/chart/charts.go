package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/sla-dashboard/internal/sla"
)

const (
	LabelViolation = "FORA DO PRAZO"
	LabelCompliant = "Within SLA"

	TitleHeatmapAll    = "Number of Exams by Day and Time Period"
	TitleHeatmapWithin = "Exams Within SLA by Day and Time Period"
	TitleHeatmapWorst  = "Number of FORA DO PRAZO Exams on Top 10 Worst Days (with Dates)"
	TitlePie           = "SLA Violations"
	TitleBar           = "Average Process Time by SLA Category"
)

var (
	violationColor = drawing.ColorFromHex("ff9999")
	compliantColor = drawing.ColorFromHex("99ff99")
	barColor       = drawing.ColorFromHex("66b3ff")
)

// Pie draws the violation split. Empty slices are left out.
func Pie(w io.Writer, violations, compliant int) error {
	total := violations + compliant
	if total == 0 {
		return errors.New("pie chart needs at least one record")
	}

	slice := func(label string, n int, c drawing.Color) chart.Value {
		pct := 100 * float64(n) / float64(total)
		return chart.Value{
			Value: float64(n),
			Label: fmt.Sprintf("%s %1.1f%%", label, pct),
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		}
	}

	var values []chart.Value
	if violations > 0 {
		values = append(values, slice(LabelViolation, violations, violationColor))
	}
	if compliant > 0 {
		values = append(values, slice(LabelCompliant, compliant, compliantColor))
	}

	pie := chart.PieChart{
		Title:  TitlePie,
		Width:  480,
		Height: 480,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}

// Bar draws the mean processing hours per SLA status bucket.
func Bar(w io.Writer, means []sla.StatusMean) error {
	if len(means) == 0 {
		return errors.New("bar chart needs at least one status")
	}

	lo, hi := 0.0, 0.0
	bars := make([]chart.Value, 0, len(means))
	for _, m := range means {
		v := m.MeanHours
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		bars = append(bars, chart.Value{
			Value: v,
			Label: string(m.Status),
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}
	if hi == lo {
		hi = lo + 1
	}

	bar := chart.BarChart{
		Title:      TitleBar,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		Width:      720,
		Height:     420,
		BarWidth:   80,
		BarSpacing: 40,
		YAxis: chart.YAxis{
			Name:           "Average Time (hours)",
			Range:          &chart.ContinuousRange{Min: lo, Max: hi * 1.1},
			ValueFormatter: func(v any) string { return fmt.Sprintf("%.1f", v) },
		},
		Bars: bars,
	}
	return bar.Render(chart.PNG, w)
}

// Images holds the rendered report charts as PNG bytes.
type Images struct {
	HeatmapAll       []byte
	HeatmapWithinSLA []byte
	HeatmapWorstDays []byte
	Pie              []byte
	Bar              []byte
}

// RenderReport draws every chart of a report concurrently.
func RenderReport(ctx context.Context, report *sla.Report) (*Images, error) {
	images := &Images{}
	g, ctx := errgroup.WithContext(ctx)

	render := func(dst *[]byte, draw func(io.Writer) error) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := draw(&buf); err != nil {
				return err
			}
			*dst = buf.Bytes()
			return nil
		})
	}

	render(&images.HeatmapAll, func(w io.Writer) error {
		return Heatmap(w, TitleHeatmapAll, report.HeatmapAll, CoolWarm, false)
	})
	render(&images.HeatmapWithinSLA, func(w io.Writer) error {
		return Heatmap(w, TitleHeatmapWithin, report.HeatmapWithinSLA, Blues, false)
	})
	render(&images.HeatmapWorstDays, func(w io.Writer) error {
		return Heatmap(w, TitleHeatmapWorst, report.HeatmapWorstDays, Reds, true)
	})
	render(&images.Pie, func(w io.Writer) error {
		return Pie(w, report.Summary.Violations, report.Summary.Compliant)
	})
	render(&images.Bar, func(w io.Writer) error {
		return Bar(w, report.MeanByStatus)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render charts: %w", err)
	}
	return images, nil
}
