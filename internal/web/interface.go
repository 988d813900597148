package web

import (
	"context"
	"io"

	"github.com/godilite/sla-dashboard/internal/service"
	"github.com/godilite/sla-dashboard/internal/sla"
)

type ReportService interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*service.UploadSummary, error)
	Current(ctx context.Context) (*service.UploadSummary, error)
	GenerateReport(ctx context.Context, req service.ReportRequest) (*sla.Report, error)
}
