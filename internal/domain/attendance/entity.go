package attendance

import (
	"time"

	"github.com/officehub/officehub-backend-go/internal/domain/shift"
)

// Attendance is one record per (employee, shift-date). The date is the shift
// anchor resolved by the employee's shift policy, not necessarily the calendar
// date of the clock-in timestamp.
type Attendance struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	ShiftModel shift.Model

	ClockIn           *time.Time
	ClockOut          *time.Time
	ClockInIP         *string
	ClockOutIP        *string
	ClockInLatitude   *float64
	ClockInLongitude  *float64
	ClockOutLatitude  *float64
	ClockOutLongitude *float64

	Status        shift.Status
	Breaks        []Break
	WorkingHours  *float64
	OvertimeHours *float64

	Notes           *string
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName     *string
	EmployeePosition *string
}

// Break is one rest interval inside an attendance record. An entry without an
// EndTime is the record's open break.
type Break struct {
	ID              string
	AttendanceID    string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	Reason          BreakReason
	CreatedAt       time.Time
}

type BreakReason string

const (
	BreakReasonWashroom BreakReason = "washroom"
	BreakReasonLunch    BreakReason = "lunch"
	BreakReasonSmoke    BreakReason = "smoke"
	BreakReasonGeneric  BreakReason = "break"
)

func (r BreakReason) Valid() bool {
	switch r {
	case BreakReasonWashroom, BreakReasonLunch, BreakReasonSmoke, BreakReasonGeneric:
		return true
	}
	return false
}

// OpenBreak returns the record's unterminated break, or nil.
func (a *Attendance) OpenBreak() *Break {
	for i := range a.Breaks {
		if a.Breaks[i].EndTime == nil {
			return &a.Breaks[i]
		}
	}
	return nil
}

// StartBreak appends a new open break. At most one break may be open at a
// time, and breaks only exist between clock-in and clock-out.
func (a *Attendance) StartBreak(now time.Time, reason BreakReason) (*Break, error) {
	if !reason.Valid() {
		return nil, ErrInvalidBreakReason
	}
	if a.ClockIn == nil {
		return nil, ErrNoCheckInYet
	}
	if a.ClockOut != nil {
		return nil, ErrAlreadyCheckedOut
	}
	if a.OpenBreak() != nil {
		return nil, ErrBreakAlreadyOpen
	}

	a.Breaks = append(a.Breaks, Break{
		AttendanceID: a.ID,
		StartTime:    now,
		Reason:       reason,
	})
	return &a.Breaks[len(a.Breaks)-1], nil
}

// EndBreak closes the open break and fixes its duration in whole minutes,
// rounded down.
func (a *Attendance) EndBreak(now time.Time) (*Break, error) {
	open := a.OpenBreak()
	if open == nil {
		return nil, ErrNoOpenBreak
	}

	end := now
	duration := int(end.Sub(open.StartTime) / time.Minute)
	open.EndTime = &end
	open.DurationMinutes = &duration
	return open, nil
}

// TotalBreakMinutes sums the durations of closed breaks. An open break does
// not count until it is closed.
func (a *Attendance) TotalBreakMinutes() int {
	total := 0
	for _, b := range a.Breaks {
		if b.DurationMinutes != nil {
			total += *b.DurationMinutes
		}
	}
	return total
}

// LiveBreakMinutes is TotalBreakMinutes plus the elapsed minutes of the open
// break, if any. Read-time projection only; never persisted.
func (a *Attendance) LiveBreakMinutes(now time.Time) int {
	total := a.TotalBreakMinutes()
	if open := a.OpenBreak(); open != nil && now.After(open.StartTime) {
		total += int(now.Sub(open.StartTime) / time.Minute)
	}
	return total
}
