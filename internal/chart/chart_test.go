package chart

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/godilite/sla-dashboard/internal/sla"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func testReport(t testing.TB) *sla.Report {
	t.Helper()

	table := &sla.Table{Columns: []string{sla.ColModality, sla.ColCareType, sla.ColFacility, sla.ColPrescribedAt, sla.ColFinalizedAt}}
	for i := 0; i < 30; i++ {
		prescribed := time.Date(2024, 1, 1+i%10, (i*7)%24, 0, 0, 0, time.UTC)
		finalized := prescribed.Add(time.Duration(i*13%260) * time.Minute)
		table.Rows = append(table.Rows, []string{
			sla.ModalityCT, sla.CareTypeEmergency, "Hospital A",
			prescribed.Format("02/01/2006 15:04:05"), finalized.Format("02/01/2006 15:04:05"),
		})
	}

	w, err := sla.RangeWindow(civil.Date{Year: 2024, Month: 1, Day: 1}, civil.Date{Year: 2024, Month: 1, Day: 31})
	require.NoError(t, err)
	report, err := sla.Run(table, sla.Filters{Facility: "Hospital A", Window: w})
	require.NoError(t, err)
	return report
}

func requirePNG(t *testing.T, b []byte) {
	t.Helper()
	require.True(t, bytes.HasPrefix(b, pngSignature), "not a PNG")
	_, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
}

func TestPalette_At(t *testing.T) {
	p := Palette{drawing.ColorFromHex("000000"), drawing.ColorFromHex("ffffff")}

	assert.Equal(t, p[0], p.At(-1))
	assert.Equal(t, p[0], p.At(0))
	assert.Equal(t, p[1], p.At(1))
	assert.Equal(t, p[1], p.At(2))

	mid := p.At(0.5)
	assert.Equal(t, uint8(128), mid.R)
	assert.Equal(t, mid.R, mid.G)
	assert.Equal(t, uint8(255), mid.A)

	assert.Equal(t, drawing.ColorWhite, Palette{}.At(0.3))
}

func TestHeatmap(t *testing.T) {
	report := testReport(t)

	t.Run("counts", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Heatmap(&buf, TitleHeatmapAll, report.HeatmapAll, CoolWarm, false))
		requirePNG(t, buf.Bytes())
	})

	t.Run("annotations", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Heatmap(&buf, TitleHeatmapWorst, report.HeatmapWorstDays, Reds, true))
		requirePNG(t, buf.Bytes())
	})

	t.Run("empty matrix", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Heatmap(&buf, TitleHeatmapWithin, sla.Heatmap{}, Blues, false))
		requirePNG(t, buf.Bytes())
	})
}

func TestPie(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Pie(&buf, 2, 1))
	requirePNG(t, buf.Bytes())

	buf.Reset()
	require.NoError(t, Pie(&buf, 0, 4))
	requirePNG(t, buf.Bytes())

	assert.Error(t, Pie(&buf, 0, 0))
}

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bar(&buf, []sla.StatusMean{
		{Status: sla.StatusWithin, MeanHours: 0.5, Count: 3},
		{Status: sla.StatusOverThree, MeanHours: 4.25, Count: 1},
	}))
	requirePNG(t, buf.Bytes())

	assert.Error(t, Bar(&buf, nil))
}

func TestRenderReport(t *testing.T) {
	report := testReport(t)

	images, err := RenderReport(context.Background(), report)
	require.NoError(t, err)

	for _, img := range [][]byte{images.HeatmapAll, images.HeatmapWithinSLA, images.HeatmapWorstDays, images.Pie, images.Bar} {
		requirePNG(t, img)
	}

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := RenderReport(ctx, report)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func BenchmarkRenderReport(b *testing.B) {
	report := testReport(b)
	for b.Loop() {
		if _, err := RenderReport(context.Background(), report); err != nil {
			b.Fatal(err)
		}
	}
}
