package mocks

import (
	"context"
	"errors"
	"io"

	"github.com/godilite/sla-dashboard/internal/service"
	"github.com/godilite/sla-dashboard/internal/sla"
)

// MockReportService is a mock implementation of the ReportService interface
// for testing the web handlers.
type MockReportService struct {
	UploadFunc         func(ctx context.Context, filename string, r io.Reader) (*service.UploadSummary, error)
	CurrentFunc        func(ctx context.Context) (*service.UploadSummary, error)
	GenerateReportFunc func(ctx context.Context, req service.ReportRequest) (*sla.Report, error)
}

func (m *MockReportService) Upload(ctx context.Context, filename string, r io.Reader) (*service.UploadSummary, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, filename, r)
	}
	return nil, errors.New("UploadFunc not implemented")
}

func (m *MockReportService) Current(ctx context.Context) (*service.UploadSummary, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx)
	}
	return nil, errors.New("CurrentFunc not implemented")
}

func (m *MockReportService) GenerateReport(ctx context.Context, req service.ReportRequest) (*sla.Report, error) {
	if m.GenerateReportFunc != nil {
		return m.GenerateReportFunc(ctx, req)
	}
	return nil, errors.New("GenerateReportFunc not implemented")
}
