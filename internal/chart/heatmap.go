package chart

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/godilite/sla-dashboard/internal/sla"
)

const (
	heatmapWidth  = 760
	heatmapHeight = 460

	marginTop    = 48
	marginLeft   = 110
	marginRight  = 24
	marginBottom = 40
)

// Palette is a linear colour scale through evenly spaced stops.
type Palette []drawing.Color

var (
	CoolWarm = Palette{drawing.ColorFromHex("3b4cc0"), drawing.ColorFromHex("dddddd"), drawing.ColorFromHex("b40426")}
	Blues    = Palette{drawing.ColorFromHex("f7fbff"), drawing.ColorFromHex("6baed6"), drawing.ColorFromHex("08306b")}
	Reds     = Palette{drawing.ColorFromHex("fff5f0"), drawing.ColorFromHex("fb6a4a"), drawing.ColorFromHex("67000d")}
)

// At maps t in [0,1] onto the scale.
func (p Palette) At(t float64) drawing.Color {
	if len(p) == 0 {
		return drawing.ColorWhite
	}
	if t <= 0 || len(p) == 1 {
		return p[0]
	}
	if t >= 1 {
		return p[len(p)-1]
	}

	pos := t * float64(len(p)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := p[i], p[i+1]
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*frac + 0.5)
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

var defaultFont = sync.OnceValues(chart.GetDefaultFont)

// Heatmap draws the weekday × period matrix as PNG. With annotate set the
// cell notes replace the numeric counts.
func Heatmap(w io.Writer, title string, h sla.Heatmap, palette Palette, annotate bool) error {
	font, err := defaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	r, err := chart.PNG(heatmapWidth, heatmapHeight)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	chart.Draw.Box(r, chart.Box{Top: 0, Left: 0, Right: heatmapWidth, Bottom: heatmapHeight}, chart.Style{
		FillColor: drawing.ColorWhite,
	})

	label := chart.Style{
		Font:                font,
		FontColor:           drawing.ColorBlack,
		TextHorizontalAlign: chart.TextHorizontalAlignCenter,
		TextVerticalAlign:   chart.TextVerticalAlignMiddle,
	}

	titleStyle := label
	titleStyle.FontSize = 13
	chart.Draw.TextWithin(r, title, chart.Box{Top: 0, Left: 0, Right: heatmapWidth, Bottom: marginTop}, titleStyle)

	rows, cols := len(sla.Weekdays), len(sla.Periods)
	cellW := (heatmapWidth - marginLeft - marginRight) / cols
	cellH := (heatmapHeight - marginTop - marginBottom) / rows
	peak := float64(h.Max())

	axis := label
	axis.FontSize = 10
	for i, d := range sla.Weekdays {
		top := marginTop + i*cellH
		chart.Draw.TextWithin(r, d.String(), chart.Box{Top: top, Left: 0, Right: marginLeft - 8, Bottom: top + cellH}, axis)
	}
	for j, p := range sla.Periods {
		left := marginLeft + j*cellW
		bottom := marginTop + rows*cellH
		chart.Draw.TextWithin(r, string(p), chart.Box{Top: bottom, Left: left, Right: left + cellW, Bottom: bottom + marginBottom}, axis)
	}

	for i := range rows {
		for j := range cols {
			count := h.Counts[i][j]
			t := 0.0
			if peak > 0 {
				t = float64(count) / peak
			}
			cell := chart.Box{
				Top:    marginTop + i*cellH,
				Left:   marginLeft + j*cellW,
				Right:  marginLeft + (j+1)*cellW,
				Bottom: marginTop + (i+1)*cellH,
			}
			chart.Draw.Box(r, cell, chart.Style{
				FillColor:   palette.At(t),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
			})

			text := strconv.Itoa(count)
			textStyle := label
			textStyle.FontSize = 11
			if annotate {
				text = h.Notes[i][j]
				textStyle.FontSize = 8
				textStyle.TextWrap = chart.TextWrapWord
			}
			if text == "" {
				continue
			}
			if t > 0.6 {
				textStyle.FontColor = drawing.ColorWhite
			}
			chart.Draw.TextWithin(r, text, cell, textStyle)
		}
	}

	return r.Save(w)
}
