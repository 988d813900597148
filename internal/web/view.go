package web

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/godilite/sla-dashboard/internal/chart"
	"github.com/godilite/sla-dashboard/internal/service"
	"github.com/godilite/sla-dashboard/internal/sla"
)

const (
	pageTitle = "SLA Dashboard for CT Exams"

	msgNoUpload = "Please upload an Excel file to continue."
	msgNoData   = "No data available for the selected UNIDADE and date range."

	timestampLayout = "2006-01-02 15:04:05"
)

//go:embed templates/*.html
var templateFS embed.FS

var printer = message.NewPrinter(language.English)

func parseTemplates() *template.Template {
	funcs := template.FuncMap{
		"count": func(n int) string { return printer.Sprintf("%d", n) },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

type pageView struct {
	Title    string
	Error    string
	Upload   *service.UploadSummary
	Controls service.ReportRequest
	Signals  string
	Report   *reportView
}

func newPageView(summary *service.UploadSummary, controls service.ReportRequest, report *reportView) *pageView {
	signals, _ := json.Marshal(controls)
	return &pageView{
		Title:    pageTitle,
		Upload:   summary,
		Controls: controls,
		Signals:  string(signals),
		Report:   report,
	}
}

// defaultControls mirrors the initial sidebar state: first facility, a
// single day of today, and a range of the last seven days.
func defaultControls(summary *service.UploadSummary, now time.Time) service.ReportRequest {
	today := civil.DateOf(now)
	req := service.ReportRequest{
		Mode:  service.DateModeSingle,
		Date:  today.String(),
		Start: today.AddDays(-7).String(),
		End:   today.String(),
	}
	if summary != nil && len(summary.Facilities) > 0 {
		req.Facility = summary.Facilities[0]
	}
	return req
}

type processedRow struct {
	Prescribed string
	Finalized  string
	Hours      string
	Status     sla.SLAStatus
	Violates   bool
}

type worstDayRow struct {
	Date   string
	Day    string
	Period sla.TimePeriod
	Count  int
}

type images struct {
	HeatmapAll       template.URL
	HeatmapWithinSLA template.URL
	HeatmapWorstDays template.URL
	Pie              template.URL
	Bar              template.URL
}

type reportView struct {
	Message string
	Failed  bool

	Facility      string
	Columns       []string
	Filtered      [][]string
	FilteredTotal int
	Processed     []processedRow
	WorstDays     []worstDayRow
	Total         int
	MeanHours     string
	Images        images
}

func messageView(msg string, failed bool) *reportView {
	return &reportView{Message: msg, Failed: failed}
}

func newReportView(report *sla.Report, img *chart.Images, maxRows int) *reportView {
	v := &reportView{
		Facility:      report.Facility,
		Columns:       report.Columns,
		FilteredTotal: len(report.Filtered),
		Total:         report.Summary.Total,
		MeanHours:     report.Summary.MeanHoursRounded().StringFixed(2),
		Images: images{
			HeatmapAll:       dataURI(img.HeatmapAll),
			HeatmapWithinSLA: dataURI(img.HeatmapWithinSLA),
			HeatmapWorstDays: dataURI(img.HeatmapWorstDays),
			Pie:              dataURI(img.Pie),
			Bar:              dataURI(img.Bar),
		},
	}

	n := len(report.Filtered)
	if maxRows > 0 {
		n = min(n, maxRows)
	}
	for _, r := range report.Filtered[:n] {
		v.Filtered = append(v.Filtered, r.Fields)
	}
	for _, p := range report.Processed[:n] {
		v.Processed = append(v.Processed, processedRow{
			Prescribed: p.PrescribedAt.Format(timestampLayout),
			Finalized:  p.FinalizedAt.Format(timestampLayout),
			Hours:      formatHours(p.ProcessTimeHours),
			Status:     p.Status,
			Violates:   p.ViolatesSLA,
		})
	}
	for _, w := range report.WorstDays {
		v.WorstDays = append(v.WorstDays, worstDayRow{
			Date:   w.Date.String(),
			Day:    w.DayOfWeek.String(),
			Period: w.Period,
			Count:  w.Count,
		})
	}
	return v
}

// Truncated reports whether the record tables were cut to the row limit.
func (v *reportView) Truncated() bool {
	return len(v.Filtered) < v.FilteredTotal
}

func formatHours(h float64) string {
	if math.IsNaN(h) {
		return ""
	}
	return fmt.Sprintf("%.2f", h)
}

func dataURI(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}
