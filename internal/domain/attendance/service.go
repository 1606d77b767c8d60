package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens the employee's record for the resolved shift-date
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes the open record and derives working/overtime hours
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// StartBreak opens a break on the employee's current record
	StartBreak(ctx context.Context, req StartBreakRequest) (AttendanceResponse, error)

	// EndBreak closes the open break
	EndBreak(ctx context.Context) (AttendanceResponse, error)

	// GetShiftStatus is a read-only projection of the employee's current shift,
	// including a live working-hours estimate while still checked in
	GetShiftStatus(ctx context.Context) (ShiftStatusResponse, error)

	// GetMyAttendance retrieves attendance records for authenticated employee
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (admin/manager)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single attendance record by ID
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// UpdateAttendance updates an attendance record (admin/manager) - for fixing wrong data
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)

	// ApproveAttendance approves an attendance record
	ApproveAttendance(ctx context.Context, req ApproveAttendanceRequest) (AttendanceResponse, error)

	// RejectAttendance rejects an attendance record with reason
	RejectAttendance(ctx context.Context, req RejectAttendanceRequest) (AttendanceResponse, error)
}
