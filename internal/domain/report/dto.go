package report

import (
	"time"

	"github.com/officehub/officehub-backend-go/internal/pkg/validator"
)

type AttendanceSummaryFilter struct {
	StartDate string
	EndDate   string
}

func (f *AttendanceSummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(f.StartDate)
	if f.StartDate == "" || !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(f.EndDate)
	if f.EndDate == "" || !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AttendanceSummary aggregates the persisted attendance records of one
// company over a date range.
type AttendanceSummary struct {
	StartDate          time.Time
	EndDate            time.Time
	TotalRecords       int64
	StatusCounts       map[string]int64
	TotalWorkingHours  float64
	TotalOvertimeHours float64
	TotalBreakMinutes  int64
}

type AttendanceSummaryResponse struct {
	StartDate          string           `json:"start_date"`
	EndDate            string           `json:"end_date"`
	TotalRecords       int64            `json:"total_records"`
	StatusCounts       map[string]int64 `json:"status_counts"`
	TotalWorkingHours  float64          `json:"total_working_hours"`
	TotalOvertimeHours float64          `json:"total_overtime_hours"`
	TotalBreakMinutes  int64            `json:"total_break_minutes"`
}
