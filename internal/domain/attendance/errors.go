package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn      = errors.New("you have already checked in for this shift")
	ErrNotCheckedIn          = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut     = errors.New("you have already checked out")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time is before check-in time")

	// Break errors
	ErrNoCheckInYet       = errors.New("cannot take a break before checking in")
	ErrBreakAlreadyOpen   = errors.New("a break is already in progress")
	ErrNoOpenBreak        = errors.New("no break is in progress")
	ErrInvalidBreakReason = errors.New("invalid break reason")

	// General errors
	ErrAttendanceNotFound         = errors.New("attendance record not found")
	ErrUnauthorized               = errors.New("unauthorized to access this attendance record")
	ErrAttendanceAlreadyProcessed = errors.New("attendance has already been approved or rejected")
)
