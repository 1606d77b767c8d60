package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/officehub/officehub-backend-go/internal/domain/attendance"
	"github.com/officehub/officehub-backend-go/internal/domain/shift"
)

// staleSessionAge is how long a session may stay open before the
// auto-close job claims it.
const staleSessionAge = 24 * time.Hour

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	policies       shift.Policies
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	policies shift.Policies,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		policies:       policies,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_attendances", 1*time.Hour, j.AutoCloseStaleAttendances)
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
}

// AutoCloseStaleAttendances closes sessions whose clock-in is older than
// staleSessionAge and that never received a clock-out. The session is closed
// as an early clock-out so the record shows the checkout was not the
// employee's own.
func (j *AttendanceJobs) AutoCloseStaleAttendances(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-staleSessionAge)

	sessions, err := j.attendanceRepo.ListStaleOpenSessions(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale sessions: %w", err)
	}

	if len(sessions) == 0 {
		return nil
	}

	slog.Info("Cron: closing stale attendance sessions", "count", len(sessions))

	closedCount := 0
	for _, session := range sessions {
		closeAt := session.ClockIn.Add(staleSessionAge)

		if session.OpenBreak() != nil {
			brk, err := session.EndBreak(closeAt)
			if err == nil {
				if err := j.attendanceRepo.CloseBreak(ctx, *brk); err != nil {
					slog.Error("Cron: failed to close stale break", "attendance_id", session.ID, "error", err)
					continue
				}
			}
		}

		policy := j.policies.ForModel(session.ShiftModel)
		summary := policy.ComputeWorkSummary(*session.ClockIn, closeAt, session.TotalBreakMinutes())

		session.ClockOut = &closeAt
		session.Status = shift.StatusEarlyClockout
		session.WorkingHours = &summary.WorkingHours
		session.OvertimeHours = &summary.OvertimeHours
		session.UpdatedAt = time.Now().UTC()

		// Conditional on clock_out still being unset: an employee checkout
		// that lands between the listing and this write wins.
		if err := j.attendanceRepo.SetCheckOut(ctx, session); err != nil {
			slog.Error("Cron: failed to close stale session", "attendance_id", session.ID, "error", err)
			continue
		}
		closedCount++
	}

	slog.Info("Cron: stale attendance sessions closed", "closed", closedCount, "total", len(sessions))
	return nil
}

// MarkAbsentEmployees inserts absent records for employees with no attendance
// on the previous day. Runs once per day in the first hour after midnight in
// the shift timezone, when both shift models have passed their check-in
// windows for that date.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	loc := j.policies.Day.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	if now.Hour() != 0 {
		return nil
	}

	date := now.AddDate(0, 0, -1)
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	created, err := j.attendanceRepo.MarkAbsent(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to mark absent employees: %w", err)
	}

	if created > 0 {
		slog.Info("Cron: marked absent employees", "date", date.Format("2006-01-02"), "count", created)
	}
	return nil
}
