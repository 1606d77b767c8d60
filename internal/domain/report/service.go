package report

import "context"

type ReportService interface {
	// GetAttendanceSummary aggregates attendance for the caller's company
	GetAttendanceSummary(ctx context.Context, filter AttendanceSummaryFilter) (AttendanceSummaryResponse, error)
}
