package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/godilite/sla-dashboard/internal/repository"
	"github.com/godilite/sla-dashboard/internal/repository/models"
	"github.com/godilite/sla-dashboard/internal/sla"
	"github.com/godilite/sla-dashboard/internal/workbook"
)

const (
	storeTimeout = 5 * time.Second
)

var (
	ErrNoUpload       = errors.New("no workbook uploaded")
	ErrStorageFailure = errors.New("storage failure")
	ErrInvalidFilters = errors.New("invalid filters")
)

// ReportService turns the uploaded workbook into SLA reports.
type ReportService struct {
	storage  UploadStore
	validate *validator.Validate
	readOpts []workbook.Option
	logger   *zap.Logger
}

// NewReportService creates a new ReportService instance. Read options are
// applied to every uploaded workbook.
func NewReportService(storage UploadStore, logger *zap.Logger, readOpts ...workbook.Option) *ReportService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &ReportService{
		storage:  storage,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		readOpts: readOpts,
		logger:   logger,
	}
}

// Upload parses the workbook and makes it the session's data, replacing
// whatever was uploaded before.
func (s *ReportService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadSummary, error) {
	table, err := workbook.Read(r, s.readOpts...)
	if err != nil {
		return nil, err
	}

	facilities, err := sla.Facilities(table)
	if err != nil {
		return nil, err
	}

	u := &models.Upload{
		ID:         uuid.New(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Columns:    table.Columns,
		Rows:       table.Rows,
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.storage.ReplaceUpload(dbCtx, u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("workbook uploaded",
		zap.String("upload_id", u.ID.String()),
		zap.String("filename", filename),
		zap.Int("rows", len(u.Rows)),
		zap.Int("facilities", len(facilities)))

	return &UploadSummary{
		ID:         u.ID,
		Filename:   u.Filename,
		UploadedAt: u.UploadedAt,
		Rows:       len(u.Rows),
		Facilities: facilities,
	}, nil
}

// Current describes the session's workbook, including the facility options.
func (s *ReportService) Current(ctx context.Context) (*UploadSummary, error) {
	u, table, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	facilities, err := sla.Facilities(table)
	if err != nil {
		return nil, err
	}

	return &UploadSummary{
		ID:         u.ID,
		Filename:   u.Filename,
		UploadedAt: u.UploadedAt,
		Rows:       len(u.Rows),
		Facilities: facilities,
	}, nil
}

// Facilities returns the UNIDADE options of the current workbook.
func (s *ReportService) Facilities(ctx context.Context) ([]string, error) {
	summary, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Facilities, nil
}

// GenerateReport runs the SLA pipeline for the given controls. It returns
// sla.ErrNoData when nothing matches.
func (s *ReportService) GenerateReport(ctx context.Context, req ReportRequest) (*sla.Report, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilters, err)
	}
	window, err := req.Window()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilters, err)
	}

	u, table, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	start, end := window.Days()
	report, err := sla.Run(table, sla.Filters{Facility: req.Facility, Window: window})
	if err != nil {
		if errors.Is(err, sla.ErrNoData) {
			s.logger.Debug("no records for filters",
				zap.String("upload_id", u.ID.String()),
				zap.String("facility", req.Facility),
				zap.String("start", start.String()),
				zap.String("end", end.String()))
		}
		return nil, err
	}

	s.logger.Info("report generated",
		zap.String("upload_id", u.ID.String()),
		zap.String("facility", req.Facility),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
		zap.Int("records", report.Summary.Total),
		zap.Int("violations", report.Summary.Violations),
		zap.String("mean_hours", report.Summary.MeanHoursRounded().StringFixed(2)))

	return report, nil
}

func (s *ReportService) load(ctx context.Context) (*models.Upload, *sla.Table, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := s.storage.LatestUpload(dbCtx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoUpload
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return u, &sla.Table{Columns: u.Columns, Rows: u.Rows}, nil
}
