package shift

import "time"

// WorkSummary holds the derived hour fields of a completed attendance record.
type WorkSummary struct {
	WorkingHours  float64
	OvertimeHours float64
}

const standardWorkdayHours = 8

// ComputeWorkSummary derives working and overtime hours from the clock times
// and the accumulated closed-break minutes. It is a pure recomputation: calling
// it again with the same inputs yields the same result, so it is safe to run on
// every save where both clock times are present.
func (p Policy) ComputeWorkSummary(clockIn, clockOut time.Time, breakMinutes int) WorkSummary {
	elapsedHours := clockOut.Sub(clockIn).Hours()
	breakHours := float64(breakMinutes) / 60

	workingHours := elapsedHours - breakHours
	if workingHours < 0 {
		workingHours = 0
	}

	return WorkSummary{
		WorkingHours:  workingHours,
		OvertimeHours: p.overtimeHours(clockOut, workingHours),
	}
}

func (p Policy) overtimeHours(clockOut time.Time, workingHours float64) float64 {
	switch p.Overtime {
	case OvertimeCheckoutBoundary:
		local := clockOut.In(p.location())
		if local.Hour() >= nightMorningEnd {
			return 0
		}
		year, month, day := local.Date()
		boundary := time.Date(year, month, day,
			p.OvertimeBoundary/60, p.OvertimeBoundary%60, 0, 0, p.location())
		if !local.After(boundary) {
			return 0
		}
		return local.Sub(boundary).Hours()
	default:
		overtime := workingHours - standardWorkdayHours
		if overtime < 0 {
			return 0
		}
		return overtime
	}
}
