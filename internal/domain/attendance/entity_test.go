package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkedInRecord(t *testing.T) *Attendance {
	t.Helper()
	clockIn := time.Date(2024, 3, 10, 7, 2, 0, 0, time.UTC)
	return &Attendance{
		ID:      "att-1",
		ClockIn: &clockIn,
	}
}

func TestStartBreak(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("opens a break", func(t *testing.T) {
		att := checkedInRecord(t)

		brk, err := att.StartBreak(base, BreakReasonLunch)
		require.NoError(t, err)
		assert.Equal(t, "att-1", brk.AttendanceID)
		assert.Equal(t, BreakReasonLunch, brk.Reason)
		assert.Nil(t, brk.EndTime)
		assert.NotNil(t, att.OpenBreak())
	})

	t.Run("rejects invalid reason", func(t *testing.T) {
		att := checkedInRecord(t)

		_, err := att.StartBreak(base, "nap")
		assert.ErrorIs(t, err, ErrInvalidBreakReason)
	})

	t.Run("rejects before check-in", func(t *testing.T) {
		att := &Attendance{ID: "att-1"}

		_, err := att.StartBreak(base, BreakReasonLunch)
		assert.ErrorIs(t, err, ErrNoCheckInYet)
	})

	t.Run("rejects after check-out", func(t *testing.T) {
		att := checkedInRecord(t)
		clockOut := base.Add(6 * time.Hour)
		att.ClockOut = &clockOut

		_, err := att.StartBreak(base, BreakReasonLunch)
		assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
	})

	t.Run("rejects a second open break", func(t *testing.T) {
		att := checkedInRecord(t)

		_, err := att.StartBreak(base, BreakReasonWashroom)
		require.NoError(t, err)

		_, err = att.StartBreak(base.Add(time.Minute), BreakReasonSmoke)
		assert.ErrorIs(t, err, ErrBreakAlreadyOpen)
	})
}

func TestEndBreak(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("closes the open break with floored minutes", func(t *testing.T) {
		att := checkedInRecord(t)
		_, err := att.StartBreak(base, BreakReasonLunch)
		require.NoError(t, err)

		brk, err := att.EndBreak(base.Add(45*time.Minute + 59*time.Second))
		require.NoError(t, err)
		require.NotNil(t, brk.DurationMinutes)
		assert.Equal(t, 45, *brk.DurationMinutes)
		assert.Nil(t, att.OpenBreak())
	})

	t.Run("sub-minute break floors to zero", func(t *testing.T) {
		att := checkedInRecord(t)
		_, err := att.StartBreak(base, BreakReasonWashroom)
		require.NoError(t, err)

		brk, err := att.EndBreak(base.Add(59 * time.Second))
		require.NoError(t, err)
		assert.Equal(t, 0, *brk.DurationMinutes)
	})

	t.Run("rejects without an open break", func(t *testing.T) {
		att := checkedInRecord(t)

		_, err := att.EndBreak(base)
		assert.ErrorIs(t, err, ErrNoOpenBreak)
	})

	t.Run("break can be reopened after closing", func(t *testing.T) {
		att := checkedInRecord(t)
		_, err := att.StartBreak(base, BreakReasonLunch)
		require.NoError(t, err)
		_, err = att.EndBreak(base.Add(30 * time.Minute))
		require.NoError(t, err)

		_, err = att.StartBreak(base.Add(2*time.Hour), BreakReasonSmoke)
		require.NoError(t, err)
		assert.Len(t, att.Breaks, 2)
	})
}

func TestTotalBreakMinutes(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	att := checkedInRecord(t)

	_, err := att.StartBreak(base, BreakReasonLunch)
	require.NoError(t, err)
	_, err = att.EndBreak(base.Add(40 * time.Minute))
	require.NoError(t, err)

	_, err = att.StartBreak(base.Add(2*time.Hour), BreakReasonSmoke)
	require.NoError(t, err)
	_, err = att.EndBreak(base.Add(2*time.Hour + 10*time.Minute))
	require.NoError(t, err)

	// Third break stays open and must not count.
	_, err = att.StartBreak(base.Add(4*time.Hour), BreakReasonWashroom)
	require.NoError(t, err)

	assert.Equal(t, 50, att.TotalBreakMinutes())
}

func TestLiveBreakMinutes(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	att := checkedInRecord(t)

	_, err := att.StartBreak(base, BreakReasonLunch)
	require.NoError(t, err)
	_, err = att.EndBreak(base.Add(30 * time.Minute))
	require.NoError(t, err)

	_, err = att.StartBreak(base.Add(time.Hour), BreakReasonGeneric)
	require.NoError(t, err)

	assert.Equal(t, 30, att.TotalBreakMinutes())
	assert.Equal(t, 45, att.LiveBreakMinutes(base.Add(time.Hour+15*time.Minute)))
}
