package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All read methods include companyID to prevent cross-company data access.
type AttendanceRepository interface {
	// Create inserts a new attendance record. The (employee_id, date) pair is
	// unique; a concurrent duplicate insert surfaces as ErrAlreadyCheckedIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves attendance by ID with company isolation. Breaks are
	// loaded with the record.
	GetByID(ctx context.Context, id string, companyID string) (Attendance, error)

	// GetByEmployeeAndDate retrieves the record for one employee on one
	// shift-date, breaks included. Returns nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*Attendance, error)

	// Update persists the record's mutable fields.
	Update(ctx context.Context, attendance Attendance) error

	// SetCheckIn attaches a check-in to a pre-created record. The write is
	// conditional on clock_in still being unset; a lost race surfaces as
	// ErrAlreadyCheckedIn.
	SetCheckIn(ctx context.Context, attendance Attendance) error

	// SetCheckOut finalizes a session's clock-out, status and derived hours.
	// Conditional on clock_out still being unset; a lost race surfaces as
	// ErrAlreadyCheckedOut.
	SetCheckOut(ctx context.Context, attendance Attendance) error

	// AddBreak inserts a new break row for the record.
	AddBreak(ctx context.Context, brk Break) (Break, error)

	// CloseBreak persists the end time and duration of a closed break.
	CloseBreak(ctx context.Context, brk Break) error

	// List retrieves attendance records with filters and pagination.
	List(ctx context.Context, filter AttendanceFilter, companyID string) ([]Attendance, int64, error)

	// GetMyAttendance retrieves attendance records for a specific employee.
	GetMyAttendance(ctx context.Context, employeeID string, filter MyAttendanceFilter, companyID string) ([]Attendance, int64, error)

	// ListStaleOpenSessions returns records still missing a clock-out whose
	// clock-in is older than the given cutoff.
	ListStaleOpenSessions(ctx context.Context, before time.Time) ([]Attendance, error)

	// MarkAbsent inserts absent records for employees with no record on the
	// given shift-date. Returns the number of records created.
	MarkAbsent(ctx context.Context, date time.Time) (int64, error)
}
