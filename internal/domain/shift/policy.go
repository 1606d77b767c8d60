package shift

import (
	"errors"
	"time"
)

// Model selects which shift rules apply to an employee.
type Model string

const (
	ModelDay   Model = "day"
	ModelNight Model = "night"
)

func (m Model) Valid() bool {
	return m == ModelDay || m == ModelNight
}

// Status is the classification of an attendance record.
type Status string

const (
	StatusAbsent        Status = "absent"
	StatusEarly         Status = "early"
	StatusPresent       Status = "present"
	StatusLate          Status = "late"
	StatusOvertime      Status = "overtime"
	StatusClockedOut    Status = "clocked-out"
	StatusEarlyClockout Status = "early-clockout"
	StatusHalfDay       Status = "half-day"
	StatusOnLeave       Status = "on-leave"
	StatusHoliday       Status = "holiday"
	StatusWeekend       Status = "weekend"
)

// ErrOutsideWindow is returned when a check-in falls outside the hours the
// shift model accepts (after the day cutoff, or inside the night dead zone).
var ErrOutsideWindow = errors.New("check-in is outside the allowed shift window")

// OvertimePolicy selects how overtime is derived once a record has both
// clock times.
type OvertimePolicy string

const (
	// OvertimeFixedDaily grants overtime for every worked hour past eight.
	OvertimeFixedDaily OvertimePolicy = "fixed_daily"
	// OvertimeCheckoutBoundary grants overtime for the time worked past a
	// clock-time boundary (night shifts ending the next morning).
	OvertimeCheckoutBoundary OvertimePolicy = "checkout_boundary"
)

// Day-shift clock windows, in minutes since local midnight.
const (
	dayPresentStart  = 7 * 60    // 07:00
	dayPresentEnd    = 7*60 + 5  // 07:05, inclusive
	dayCheckInCutoff = 16 * 60   // no check-in at or after 16:00
	dayClockOutStart = 16 * 60   // 16:00
	dayClockOutEnd   = 16*60 + 5 // 16:05, inclusive
)

// Night-shift clock windows. The shift starts at 18:00 and is keyed by its
// start date, so everything before 18:00 belongs to the previous day's record.
const (
	nightRolloverHour  = 18
	nightDeadZoneStart = 4 // [04:00, 18:00) accepts no check-in
	nightEarlyHour     = 18
	nightPresentStart  = 19 * 60
	nightPresentEnd    = 19*60 + 5 // inclusive
	nightGraceStart    = 3*60 + 55 // 03:55
	nightClockOutEnd   = 4*60 + 5  // 04:05, inclusive
	nightMorningEnd    = 12        // checkout rules apply before local noon only
)

// Policy bundles the shift model with the deployment's timezone and overtime
// configuration. All clock-window comparisons use the policy's location.
type Policy struct {
	Model            Model
	Location         *time.Location
	Overtime         OvertimePolicy
	OvertimeBoundary int // minutes since midnight; checkout_boundary policy only
}

// DayShift returns the standard 07:00-16:00 day-shift policy.
func DayShift(loc *time.Location) Policy {
	return Policy{
		Model:    ModelDay,
		Location: loc,
		Overtime: OvertimeFixedDaily,
	}
}

// NightShift returns the 18:00-04:00 night-shift policy with the 04:05
// overtime boundary.
func NightShift(loc *time.Location) Policy {
	return Policy{
		Model:            ModelNight,
		Location:         loc,
		Overtime:         OvertimeCheckoutBoundary,
		OvertimeBoundary: nightClockOutEnd,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// ShiftDate resolves the anchor date a timestamp belongs to, truncated to
// local midnight. For night shifts, activity before 18:00 is keyed to the
// previous day's shift.
func (p Policy) ShiftDate(now time.Time) time.Time {
	local := now.In(p.location())
	year, month, day := local.Date()
	date := time.Date(year, month, day, 0, 0, 0, 0, p.location())
	if p.Model == ModelNight && local.Hour() < nightRolloverHour {
		date = date.AddDate(0, 0, -1)
	}
	return date
}

// ClassifyCheckIn maps a check-in timestamp to its status. It returns
// ErrOutsideWindow when the timestamp falls outside the model's permitted
// check-in hours.
func (p Policy) ClassifyCheckIn(now time.Time) (Status, error) {
	local := now.In(p.location())
	m := minuteOfDay(local)

	if p.Model == ModelNight {
		if local.Hour() >= nightDeadZoneStart && local.Hour() < nightRolloverHour {
			return "", ErrOutsideWindow
		}
		switch {
		case local.Hour() == nightEarlyHour:
			return StatusEarly, nil
		case m >= nightPresentStart && m <= nightPresentEnd:
			return StatusPresent, nil
		default:
			// After 19:05, including the post-midnight hours before the
			// dead zone.
			return StatusLate, nil
		}
	}

	if m >= dayCheckInCutoff {
		return "", ErrOutsideWindow
	}
	switch {
	case m < dayPresentStart:
		return StatusEarly, nil
	case m <= dayPresentEnd:
		return StatusPresent, nil
	default:
		return StatusLate, nil
	}
}

// ClassifyCheckOut maps a check-out timestamp to its status. Checking out
// before the shift's clock-out window leaves the check-in status in place.
func (p Policy) ClassifyCheckOut(now time.Time, prior Status) Status {
	local := now.In(p.location())
	m := minuteOfDay(local)

	if p.Model == ModelNight {
		// The window only covers the morning tail of an overnight shift.
		// An evening checkout keeps whatever the check-in produced.
		if local.Hour() >= nightMorningEnd {
			return prior
		}
		switch {
		case m < nightGraceStart:
			return StatusEarlyClockout
		case m <= nightClockOutEnd:
			return StatusClockedOut
		default:
			return StatusOvertime
		}
	}

	switch {
	case m < dayClockOutStart:
		return prior
	case m <= dayClockOutEnd:
		return StatusClockedOut
	default:
		return StatusOvertime
	}
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Policies holds the deployment's configured policy per shift model.
type Policies struct {
	Day   Policy
	Night Policy
}

// ForModel returns the policy for an employee's assigned shift model.
// Unassigned employees fall back to the day shift.
func (ps Policies) ForModel(m Model) Policy {
	if m == ModelNight {
		return ps.Night
	}
	return ps.Day
}
