package cron

import (
	"context"
	"testing"
	"time"

	"github.com/officehub/officehub-backend-go/internal/domain/attendance"
	"github.com/officehub/officehub-backend-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttendanceRepo struct {
	stale        []attendance.Attendance
	closedBreaks []attendance.Break
	checkOuts    []attendance.Attendance
}

func (f *fakeAttendanceRepo) Create(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	return att, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, _ string, _ string) (attendance.Attendance, error) {
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, _ string, _ time.Time, _ string) (*attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, _ attendance.Attendance) error {
	return nil
}

func (f *fakeAttendanceRepo) SetCheckIn(_ context.Context, _ attendance.Attendance) error {
	return nil
}

func (f *fakeAttendanceRepo) SetCheckOut(_ context.Context, att attendance.Attendance) error {
	f.checkOuts = append(f.checkOuts, att)
	return nil
}

func (f *fakeAttendanceRepo) AddBreak(_ context.Context, brk attendance.Break) (attendance.Break, error) {
	return brk, nil
}

func (f *fakeAttendanceRepo) CloseBreak(_ context.Context, brk attendance.Break) error {
	f.closedBreaks = append(f.closedBreaks, brk)
	return nil
}

func (f *fakeAttendanceRepo) List(_ context.Context, _ attendance.AttendanceFilter, _ string) ([]attendance.Attendance, int64, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) GetMyAttendance(_ context.Context, _ string, _ attendance.MyAttendanceFilter, _ string) ([]attendance.Attendance, int64, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) ListStaleOpenSessions(_ context.Context, _ time.Time) ([]attendance.Attendance, error) {
	return f.stale, nil
}

func (f *fakeAttendanceRepo) MarkAbsent(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func TestAutoCloseStaleAttendances(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	policies := shift.Policies{
		Day:   shift.DayShift(loc),
		Night: shift.NightShift(loc),
	}

	// 07:00 WIB, two days back so the session is well past the stale cutoff.
	clockIn := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	closeAt := clockIn.Add(staleSessionAge)

	thirty := 30
	breakEnd := clockIn.Add(5*time.Hour + 30*time.Minute)

	repo := &fakeAttendanceRepo{
		stale: []attendance.Attendance{
			{
				ID:         "att-closed-break",
				EmployeeID: "emp-1",
				ShiftModel: shift.ModelDay,
				ClockIn:    &clockIn,
				Breaks: []attendance.Break{
					{
						ID:              "brk-1",
						AttendanceID:    "att-closed-break",
						StartTime:       clockIn.Add(5 * time.Hour),
						EndTime:         &breakEnd,
						DurationMinutes: &thirty,
					},
				},
			},
			{
				ID:         "att-open-break",
				EmployeeID: "emp-2",
				ShiftModel: shift.ModelDay,
				ClockIn:    &clockIn,
				Breaks: []attendance.Break{
					{
						ID:           "brk-2",
						AttendanceID: "att-open-break",
						StartTime:    clockIn.Add(23 * time.Hour),
					},
				},
			},
		},
	}

	jobs := NewAttendanceJobs(repo, policies)
	require.NoError(t, jobs.AutoCloseStaleAttendances(context.Background()))

	require.Len(t, repo.checkOuts, 2)
	byID := make(map[string]attendance.Attendance, len(repo.checkOuts))
	for _, att := range repo.checkOuts {
		byID[att.ID] = att
	}

	first := byID["att-closed-break"]
	assert.Equal(t, shift.StatusEarlyClockout, first.Status)
	require.NotNil(t, first.ClockOut)
	assert.True(t, first.ClockOut.Equal(closeAt))
	require.NotNil(t, first.WorkingHours)
	assert.InDelta(t, 23.5, *first.WorkingHours, 1e-6)
	require.NotNil(t, first.OvertimeHours)
	assert.InDelta(t, 15.5, *first.OvertimeHours, 1e-6)

	// The open break ends at the close instant before hours are derived.
	require.Len(t, repo.closedBreaks, 1)
	closed := repo.closedBreaks[0]
	assert.Equal(t, "brk-2", closed.ID)
	require.NotNil(t, closed.EndTime)
	assert.True(t, closed.EndTime.Equal(closeAt))
	require.NotNil(t, closed.DurationMinutes)
	assert.Equal(t, 60, *closed.DurationMinutes)

	second := byID["att-open-break"]
	require.NotNil(t, second.WorkingHours)
	assert.InDelta(t, 23.0, *second.WorkingHours, 1e-6)
}

func TestAutoCloseStaleAttendancesNoSessions(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	jobs := NewAttendanceJobs(repo, shift.Policies{
		Day:   shift.DayShift(time.UTC),
		Night: shift.NightShift(time.UTC),
	})

	require.NoError(t, jobs.AutoCloseStaleAttendances(context.Background()))
	assert.Empty(t, repo.checkOuts)
	assert.Empty(t, repo.closedBreaks)
}
