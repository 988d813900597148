package models

import (
	"time"

	"github.com/google/uuid"
)

// Upload is the workbook currently held by the session. Rows keep the
// spreadsheet's cell text positionally aligned with Columns.
type Upload struct {
	ID         uuid.UUID
	Filename   string
	UploadedAt time.Time
	Columns    []string
	Rows       [][]string
}
