package report

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/officehub/officehub-backend-go/internal/domain/report"
)

type ReportServiceImpl struct {
	report.ReportRepository
}

func NewReportService(reportRepo report.ReportRepository) report.ReportService {
	return &ReportServiceImpl{
		ReportRepository: reportRepo,
	}
}

// GetAttendanceSummary implements report.ReportService.
func (r *ReportServiceImpl) GetAttendanceSummary(ctx context.Context, filter report.AttendanceSummaryFilter) (report.AttendanceSummaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return report.AttendanceSummaryResponse{}, err
	}

	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return report.AttendanceSummaryResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return report.AttendanceSummaryResponse{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	start, _ := time.Parse("2006-01-02", filter.StartDate)
	end, _ := time.Parse("2006-01-02", filter.EndDate)

	summary, err := r.ReportRepository.AttendanceSummary(ctx, companyID, start, end)
	if err != nil {
		return report.AttendanceSummaryResponse{}, err
	}

	return report.AttendanceSummaryResponse{
		StartDate:          summary.StartDate.Format("2006-01-02"),
		EndDate:            summary.EndDate.Format("2006-01-02"),
		TotalRecords:       summary.TotalRecords,
		StatusCounts:       summary.StatusCounts,
		TotalWorkingHours:  summary.TotalWorkingHours,
		TotalOvertimeHours: summary.TotalOvertimeHours,
		TotalBreakMinutes:  summary.TotalBreakMinutes,
	}, nil
}
