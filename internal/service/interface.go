package service

import (
	"context"

	"github.com/godilite/sla-dashboard/internal/repository/models"
)

// UploadStore holds the single workbook of the current session.
type UploadStore interface {
	ReplaceUpload(ctx context.Context, u *models.Upload) error
	LatestUpload(ctx context.Context) (*models.Upload, error)
}
