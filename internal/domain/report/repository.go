package report

import (
	"context"
	"time"
)

type ReportRepository interface {
	// AttendanceSummary aggregates attendance records over a shift-date range
	AttendanceSummary(ctx context.Context, companyID string, start, end time.Time) (AttendanceSummary, error)
}
