package service

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/godilite/sla-dashboard/internal/sla"
)

type DateMode string

const (
	DateModeSingle DateMode = "single"
	DateModeRange  DateMode = "range"
)

// ReportRequest carries the page controls. Dates use the ISO form the
// browser's date inputs submit.
type ReportRequest struct {
	Facility string   `json:"facility" validate:"required"`
	Mode     DateMode `json:"mode" validate:"required,oneof=single range"`
	Date     string   `json:"date" validate:"required_if=Mode single,omitempty,datetime=2006-01-02"`
	Start    string   `json:"start" validate:"required_if=Mode range,omitempty,datetime=2006-01-02"`
	End      string   `json:"end" validate:"required_if=Mode range,omitempty,datetime=2006-01-02"`
}

// Window converts the date controls. Call after validation.
func (r ReportRequest) Window() (sla.Window, error) {
	if r.Mode == DateModeSingle {
		d, err := civil.ParseDate(r.Date)
		if err != nil {
			return sla.Window{}, err
		}
		return sla.DayWindow(d), nil
	}

	start, err := civil.ParseDate(r.Start)
	if err != nil {
		return sla.Window{}, err
	}
	end, err := civil.ParseDate(r.End)
	if err != nil {
		return sla.Window{}, err
	}
	return sla.RangeWindow(start, end)
}

type UploadSummary struct {
	ID         uuid.UUID
	Filename   string
	UploadedAt time.Time
	Rows       int
	Facilities []string
}
