package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/sla-dashboard/internal/chart"
	"github.com/godilite/sla-dashboard/internal/service"
	"github.com/godilite/sla-dashboard/internal/sla"
	"github.com/godilite/sla-dashboard/internal/workbook"
)

const (
	defaultMaxTableRows  = 500
	defaultReportTimeout = 30 * time.Second
)

type Handlers struct {
	service      ReportService
	logger       *zap.Logger
	templates    *template.Template
	sfGroup      singleflight.Group
	maxTableRows int
	now          func() time.Time
}

type Option func(*Handlers)

// WithMaxTableRows caps the rows rendered in the record tables. Counts and
// charts always cover every record.
func WithMaxTableRows(n int) Option {
	return func(h *Handlers) {
		if n > 0 {
			h.maxTableRows = n
		}
	}
}

// WithClock overrides the source of "today" for the default date controls.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) { h.now = now }
}

// NewHandlers initializes the page handlers.
func NewHandlers(svc ReportService, logger *zap.Logger, opts ...Option) *Handlers {
	if svc == nil {
		panic("nil ReportService provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		service:      svc,
		logger:       logger.Named("web-handler"),
		templates:    parseTemplates(),
		maxTableRows: defaultMaxTableRows,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Index)
	r.POST("/upload", h.Upload)
	r.GET("/report", h.Report)
}

// Index renders the full page with the report for the default controls.
func (h *Handlers) Index(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.service.Current(ctx)
	switch {
	case errors.Is(err, service.ErrNoUpload):
		h.render(c, http.StatusOK, newPageView(nil, defaultControls(nil, h.now()), messageView(msgNoUpload, false)))
		return
	case err != nil:
		view := newPageView(nil, defaultControls(nil, h.now()), nil)
		view.Error = h.errorMessage(ctx, "Current", err)
		h.render(c, http.StatusInternalServerError, view)
		return
	}

	controls := defaultControls(summary, h.now())
	h.render(c, http.StatusOK, newPageView(summary, controls, h.buildReport(ctx, controls)))
}

// Upload replaces the session workbook and redirects back to the page.
func (h *Handlers) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	fail := func(status int, msg string) {
		view := newPageView(nil, defaultControls(nil, h.now()), nil)
		view.Error = msg
		h.render(c, status, view)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(http.StatusRequestEntityTooLarge, fmt.Sprintf("The file is larger than %d MB.", tooLarge.Limit>>20))
			return
		}
		fail(http.StatusBadRequest, "Please choose an .xlsx file to upload.")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		fail(http.StatusUnprocessableEntity, "Only .xlsx files are supported.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(http.StatusBadRequest, "The uploaded file could not be read.")
		return
	}
	defer f.Close()

	if _, err := h.service.Upload(ctx, filepath.Base(fh.Filename), f); err != nil {
		status := http.StatusUnprocessableEntity
		if !structural(err) {
			status = http.StatusInternalServerError
		}
		fail(status, h.errorMessage(ctx, "Upload", err))
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Report re-runs the pipeline for the current control signals and patches
// the #report element over SSE.
func (h *Handlers) Report(c *gin.Context) {
	var req service.ReportRequest
	if err := datastar.ReadSignals(c.Request, &req); err != nil {
		c.String(http.StatusBadRequest, "invalid signals: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultReportTimeout)
	defer cancel()

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "report", h.buildReport(ctx, req)); err != nil {
		h.logger.Error("render report fragment failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}

	sse := datastar.NewSSE(c.Writer, c.Request)
	if err := sse.PatchElements(buf.String()); err != nil {
		h.logger.Warn("patch report failed", zap.Error(err))
	}
}

func (h *Handlers) buildReport(ctx context.Context, req service.ReportRequest) *reportView {
	if req.Facility == "" {
		return messageView(msgNoData, false)
	}

	key := strings.Join([]string{req.Facility, string(req.Mode), req.Date, req.Start, req.End}, "\x00")
	v, err, shared := h.sfGroup.Do(key, func() (any, error) {
		report, err := h.service.GenerateReport(ctx, req)
		if err != nil {
			return nil, err
		}
		img, err := chart.RenderReport(ctx, report)
		if err != nil {
			return nil, err
		}
		return newReportView(report, img, h.maxTableRows), nil
	})
	if shared {
		h.logger.Debug("report shared with concurrent request", zap.String("facility", req.Facility))
	}

	switch {
	case err == nil:
		return v.(*reportView)
	case errors.Is(err, service.ErrNoUpload):
		return messageView(msgNoUpload, false)
	case errors.Is(err, sla.ErrNoData):
		return messageView(msgNoData, false)
	default:
		return messageView(h.errorMessage(ctx, "GenerateReport", err), true)
	}
}

// errorMessage maps service errors to text shown on the page.
func (h *Handlers) errorMessage(ctx context.Context, op string, err error) string {
	switch ctx.Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		return "The request was cancelled."
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		return "The request timed out."
	}

	switch {
	case errors.Is(err, sla.ErrMissingColumn):
		h.logger.Info("workbook missing column", zap.String("op", op), zap.Error(err))
		return fmt.Sprintf("The workbook is missing a required column (%s).", missingColumn(err))
	case errors.Is(err, workbook.ErrEmptyWorkbook):
		return "The workbook has no header row."
	case errors.Is(err, workbook.ErrInvalidWorkbook):
		h.logger.Info("invalid workbook", zap.String("op", op), zap.Error(err))
		return "The file could not be read as an Excel workbook."
	case errors.Is(err, sla.ErrInvalidWindow):
		return "The end date must not be before the start date."
	case errors.Is(err, service.ErrInvalidFilters):
		h.logger.Info("invalid filters", zap.String("op", op), zap.Error(err))
		return "Please choose a UNIDADE and valid dates."
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return "The uploaded data could not be loaded. Please upload the file again."
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return "Something went wrong while building the report."
	}
}

func structural(err error) bool {
	return errors.Is(err, sla.ErrMissingColumn) ||
		errors.Is(err, workbook.ErrInvalidWorkbook) ||
		errors.Is(err, workbook.ErrEmptyWorkbook)
}

func missingColumn(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func (h *Handlers) render(c *gin.Context, status int, view *pageView) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "index", view); err != nil {
		h.logger.Error("render page failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
