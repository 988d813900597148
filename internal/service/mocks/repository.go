package mocks

import (
	"context"
	"errors"

	"github.com/godilite/sla-dashboard/internal/repository/models"
)

// MockUploadStore is a mock implementation of the UploadStore interface
// for testing the service layer.
type MockUploadStore struct {
	ReplaceUploadFunc func(ctx context.Context, u *models.Upload) error
	LatestUploadFunc  func(ctx context.Context) (*models.Upload, error)
}

// ReplaceUpload implements the UploadStore interface
func (m *MockUploadStore) ReplaceUpload(ctx context.Context, u *models.Upload) error {
	if m.ReplaceUploadFunc != nil {
		return m.ReplaceUploadFunc(ctx, u)
	}
	return errors.New("ReplaceUploadFunc not implemented")
}

// LatestUpload implements the UploadStore interface
func (m *MockUploadStore) LatestUpload(ctx context.Context) (*models.Upload, error) {
	if m.LatestUploadFunc != nil {
		return m.LatestUploadFunc(ctx)
	}
	return nil, errors.New("LatestUploadFunc not implemented")
}
