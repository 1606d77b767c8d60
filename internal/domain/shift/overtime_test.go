package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeWorkSummary_FixedDaily(t *testing.T) {
	day := DayShift(wib)

	t.Run("standard day with lunch break", func(t *testing.T) {
		got := day.ComputeWorkSummary(at(7, 0), at(16, 0), 60)
		assert.InDelta(t, 8.0, got.WorkingHours, 1e-9)
		assert.InDelta(t, 0.0, got.OvertimeHours, 1e-9)
	})

	t.Run("hours past eight count as overtime", func(t *testing.T) {
		got := day.ComputeWorkSummary(at(7, 0), at(18, 0), 0)
		assert.InDelta(t, 11.0, got.WorkingHours, 1e-9)
		assert.InDelta(t, 3.0, got.OvertimeHours, 1e-9)
	})

	t.Run("breaks exceeding elapsed time clamp to zero", func(t *testing.T) {
		got := day.ComputeWorkSummary(at(7, 0), at(7, 30), 60)
		assert.Equal(t, 0.0, got.WorkingHours)
		assert.Equal(t, 0.0, got.OvertimeHours)
	})
}

func TestComputeWorkSummary_CheckoutBoundary(t *testing.T) {
	night := NightShift(wib)
	clockIn := at(19, 0)
	nextMorning := func(hour, min int) time.Time {
		return time.Date(2024, 3, 11, hour, min, 0, 0, wib)
	}

	t.Run("overnight shift with late checkout", func(t *testing.T) {
		// 19:00 to 04:10 with a 30 minute break: 9h10m elapsed,
		// 8h40m worked, 5 minutes past the 04:05 boundary.
		got := night.ComputeWorkSummary(clockIn, nextMorning(4, 10), 30)
		assert.InDelta(t, 8.0+40.0/60.0, got.WorkingHours, 1e-6)
		assert.InDelta(t, 5.0/60.0, got.OvertimeHours, 1e-6)
	})

	t.Run("checkout at the boundary earns none", func(t *testing.T) {
		got := night.ComputeWorkSummary(clockIn, nextMorning(4, 5), 0)
		assert.Equal(t, 0.0, got.OvertimeHours)
	})

	t.Run("early checkout earns none", func(t *testing.T) {
		got := night.ComputeWorkSummary(clockIn, nextMorning(2, 0), 0)
		assert.Equal(t, 0.0, got.OvertimeHours)
	})

	t.Run("checkout past noon earns none", func(t *testing.T) {
		got := night.ComputeWorkSummary(clockIn, nextMorning(13, 0), 0)
		assert.Equal(t, 0.0, got.OvertimeHours)
	})

	t.Run("working hours still net of breaks", func(t *testing.T) {
		got := night.ComputeWorkSummary(clockIn, nextMorning(4, 0), 60)
		assert.InDelta(t, 8.0, got.WorkingHours, 1e-6)
	})
}

func TestComputeWorkSummary_Recompute(t *testing.T) {
	night := NightShift(wib)
	clockIn := at(19, 0)
	clockOut := time.Date(2024, 3, 11, 4, 30, 0, 0, wib)

	first := night.ComputeWorkSummary(clockIn, clockOut, 45)
	second := night.ComputeWorkSummary(clockIn, clockOut, 45)
	assert.Equal(t, first, second)
}
