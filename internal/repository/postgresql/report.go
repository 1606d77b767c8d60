package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/officehub/officehub-backend-go/internal/domain/report"
	"github.com/officehub/officehub-backend-go/internal/pkg/database"
)

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepository{db: db}
}

// AttendanceSummary implements report.ReportRepository.
func (r *reportRepository) AttendanceSummary(ctx context.Context, companyID string, start, end time.Time) (report.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	summary := report.AttendanceSummary{
		StartDate:    start,
		EndDate:      end,
		StatusCounts: make(map[string]int64),
	}

	statusQuery := `
		SELECT status, COUNT(*)
		FROM attendances
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY status
	`

	rows, err := q.Query(ctx, statusQuery, companyID, start, end)
	if err != nil {
		return report.AttendanceSummary{}, fmt.Errorf("failed to aggregate statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return report.AttendanceSummary{}, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.StatusCounts[status] = count
		summary.TotalRecords += count
	}
	if err := rows.Err(); err != nil {
		return report.AttendanceSummary{}, fmt.Errorf("failed to read status counts: %w", err)
	}

	// Hours are summed over attendances alone; joining breaks here would
	// count a record's hours once per break row.
	hoursQuery := `
		SELECT COALESCE(SUM(working_hours), 0),
		       COALESCE(SUM(overtime_hours), 0)
		FROM attendances
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
	`

	err = q.QueryRow(ctx, hoursQuery, companyID, start, end).Scan(
		&summary.TotalWorkingHours,
		&summary.TotalOvertimeHours,
	)
	if err != nil {
		return report.AttendanceSummary{}, fmt.Errorf("failed to aggregate hours: %w", err)
	}

	breaksQuery := `
		SELECT COALESCE(SUM(b.duration_minutes), 0)
		FROM attendance_breaks b
		JOIN attendances a ON a.id = b.attendance_id
		WHERE b.end_time IS NOT NULL
		  AND a.company_id = $1 AND a.date BETWEEN $2 AND $3
	`

	err = q.QueryRow(ctx, breaksQuery, companyID, start, end).Scan(&summary.TotalBreakMinutes)
	if err != nil {
		return report.AttendanceSummary{}, fmt.Errorf("failed to aggregate break minutes: %w", err)
	}

	return summary, nil
}
