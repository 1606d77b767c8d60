package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/officehub/officehub-backend-go/internal/domain/attendance"
	"github.com/officehub/officehub-backend-go/internal/domain/employee"
	"github.com/officehub/officehub-backend-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("WIB", 7*3600)

const (
	testEmployeeID = "emp-1"
	testCompanyID  = "comp-1"
)

type fakeAttendanceRepo struct {
	records map[string]*attendance.Attendance
	nextID  int

	// Hooks run just before the conditional writes apply, simulating a
	// writer that slips in between the service's read and its write.
	beforeSetCheckIn  func()
	beforeSetCheckOut func()
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*attendance.Attendance)}
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.UTC().Format("2006-01-02")
}

func (f *fakeAttendanceRepo) Create(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	key := recordKey(att.EmployeeID, att.Date)
	if _, exists := f.records[key]; exists {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}
	f.nextID++
	att.ID = fmt.Sprintf("att-%d", f.nextID)
	stored := att
	f.records[key] = &stored
	return att, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string, companyID string) (attendance.Attendance, error) {
	for _, att := range f.records {
		if att.ID == id && att.CompanyID == companyID {
			return *att, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	att, ok := f.records[recordKey(employeeID, date)]
	if !ok || att.CompanyID != companyID {
		return nil, nil
	}
	copied := *att
	copied.Breaks = append([]attendance.Break(nil), att.Breaks...)
	return &copied, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, att attendance.Attendance) error {
	key := recordKey(att.EmployeeID, att.Date)
	stored, ok := f.records[key]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	breaks := stored.Breaks
	*stored = att
	stored.Breaks = breaks
	return nil
}

func (f *fakeAttendanceRepo) SetCheckIn(_ context.Context, att attendance.Attendance) error {
	if f.beforeSetCheckIn != nil {
		f.beforeSetCheckIn()
	}
	stored, ok := f.records[recordKey(att.EmployeeID, att.Date)]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if stored.ClockIn != nil {
		return attendance.ErrAlreadyCheckedIn
	}
	stored.ClockIn = att.ClockIn
	stored.ClockInIP = att.ClockInIP
	stored.ClockInLatitude = att.ClockInLatitude
	stored.ClockInLongitude = att.ClockInLongitude
	stored.Status = att.Status
	return nil
}

func (f *fakeAttendanceRepo) SetCheckOut(_ context.Context, att attendance.Attendance) error {
	if f.beforeSetCheckOut != nil {
		f.beforeSetCheckOut()
	}
	stored, ok := f.records[recordKey(att.EmployeeID, att.Date)]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if stored.ClockOut != nil {
		return attendance.ErrAlreadyCheckedOut
	}
	stored.ClockOut = att.ClockOut
	stored.ClockOutIP = att.ClockOutIP
	stored.ClockOutLatitude = att.ClockOutLatitude
	stored.ClockOutLongitude = att.ClockOutLongitude
	stored.Status = att.Status
	stored.WorkingHours = att.WorkingHours
	stored.OvertimeHours = att.OvertimeHours
	return nil
}

func (f *fakeAttendanceRepo) AddBreak(_ context.Context, brk attendance.Break) (attendance.Break, error) {
	for _, att := range f.records {
		if att.ID == brk.AttendanceID {
			f.nextID++
			brk.ID = fmt.Sprintf("brk-%d", f.nextID)
			att.Breaks = append(att.Breaks, brk)
			return brk, nil
		}
	}
	return attendance.Break{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) CloseBreak(_ context.Context, brk attendance.Break) error {
	for _, att := range f.records {
		if att.ID != brk.AttendanceID {
			continue
		}
		for i := range att.Breaks {
			if att.Breaks[i].EndTime == nil {
				att.Breaks[i].EndTime = brk.EndTime
				att.Breaks[i].DurationMinutes = brk.DurationMinutes
				return nil
			}
		}
	}
	return attendance.ErrNoOpenBreak
}

func (f *fakeAttendanceRepo) List(_ context.Context, _ attendance.AttendanceFilter, _ string) ([]attendance.Attendance, int64, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) GetMyAttendance(_ context.Context, _ string, _ attendance.MyAttendanceFilter, _ string) ([]attendance.Attendance, int64, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) ListStaleOpenSessions(_ context.Context, _ time.Time) ([]attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) MarkAbsent(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string, companyID string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok || emp.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) GetByUserID(_ context.Context, _ string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) List(_ context.Context, _ employee.EmployeeFilter, _ string) ([]employee.Employee, int64, error) {
	return nil, 0, nil
}

type fixture struct {
	svc     *AttendanceServiceImpl
	attRepo *fakeAttendanceRepo
	ctx     context.Context
}

func newFixture(t *testing.T, model shift.Model) *fixture {
	t.Helper()

	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		testEmployeeID: {
			ID:         testEmployeeID,
			CompanyID:  testCompanyID,
			FullName:   "Test Employee",
			ShiftModel: model,
		},
	}}

	svc := &AttendanceServiceImpl{
		AttendanceRepository: attRepo,
		EmployeeRepository:   empRepo,
		policies: shift.Policies{
			Day:   shift.DayShift(testZone),
			Night: shift.NightShift(testZone),
		},
		now: time.Now,
	}

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": testEmployeeID,
		"company_id":  testCompanyID,
		"role":        "employee",
	})
	require.NoError(t, err)

	return &fixture{
		svc:     svc,
		attRepo: attRepo,
		ctx:     jwtauth.NewContext(context.Background(), token, nil),
	}
}

func (fx *fixture) setNow(t time.Time) {
	fx.svc.now = func() time.Time { return t }
}

func localTime(day, hour, min int) time.Time {
	return time.Date(2024, 3, day, hour, min, 0, 0, testZone)
}

func TestCheckIn(t *testing.T) {
	t.Run("inside the day window is present", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 3))

		resp, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)
		assert.Equal(t, shift.StatusPresent, resp.Status)
		assert.Equal(t, "2024-03-10", resp.Date)
		require.NotNil(t, resp.CheckInTime)
	})

	t.Run("after the day cutoff writes nothing", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 16, 30))

		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		assert.ErrorIs(t, err, shift.ErrOutsideWindow)
		assert.Empty(t, fx.attRepo.records)
	})

	t.Run("second check-in on the same shift date conflicts", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))

		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		fx.setNow(localTime(10, 9, 0))
		_, err = fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	})

	t.Run("concurrent check-in on a pre-created record loses to the first writer", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		date := localTime(10, 0, 0)
		fx.attRepo.records[recordKey(testEmployeeID, date)] = &attendance.Attendance{
			ID:         "att-absent",
			EmployeeID: testEmployeeID,
			CompanyID:  testCompanyID,
			Date:       date,
			ShiftModel: shift.ModelDay,
			Status:     shift.StatusAbsent,
		}

		winner := localTime(10, 7, 1).UTC()
		fx.attRepo.beforeSetCheckIn = func() {
			stored := fx.attRepo.records[recordKey(testEmployeeID, date)]
			stored.ClockIn = &winner
			stored.Status = shift.StatusPresent
		}

		fx.setNow(localTime(10, 7, 3))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

		stored := fx.attRepo.records[recordKey(testEmployeeID, date)]
		require.NotNil(t, stored.ClockIn)
		assert.Equal(t, winner, *stored.ClockIn)
	})

	t.Run("night check-in after midnight keys to the previous day", func(t *testing.T) {
		fx := newFixture(t, shift.ModelNight)
		fx.setNow(localTime(10, 2, 0))

		resp, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)
		assert.Equal(t, "2024-03-09", resp.Date)
		assert.Equal(t, shift.StatusLate, resp.Status)
	})

	t.Run("night dead zone rejects", func(t *testing.T) {
		fx := newFixture(t, shift.ModelNight)
		fx.setNow(localTime(10, 11, 0))

		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		assert.ErrorIs(t, err, shift.ErrOutsideWindow)
	})

	t.Run("captures caller audit data", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))

		lat, lon := -6.2, 106.8
		req := attendance.CheckInRequest{}
		req.IPAddress = "10.1.2.3"
		req.Latitude = &lat
		req.Longitude = &lon

		resp, err := fx.svc.CheckIn(fx.ctx, req)
		require.NoError(t, err)
		require.NotNil(t, resp.CheckInIP)
		assert.Equal(t, "10.1.2.3", *resp.CheckInIP)
		assert.Equal(t, &lat, resp.CheckInLatitude)
	})
}

func TestCheckOut(t *testing.T) {
	t.Run("without a check-in", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 16, 0))

		_, err := fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
	})

	t.Run("derives working and overtime hours", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		fx.setNow(localTime(10, 12, 0))
		_, err = fx.svc.StartBreak(fx.ctx, attendance.StartBreakRequest{Reason: "lunch"})
		require.NoError(t, err)
		fx.setNow(localTime(10, 12, 30))
		_, err = fx.svc.EndBreak(fx.ctx)
		require.NoError(t, err)

		fx.setNow(localTime(10, 16, 4))
		resp, err := fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		require.NoError(t, err)

		assert.Equal(t, shift.StatusClockedOut, resp.Status)
		assert.Equal(t, 30, resp.TotalBreakMinutes)
		require.NotNil(t, resp.WorkingHours)
		// 9h04m elapsed minus the 30 minute break
		assert.InDelta(t, 8.0+34.0/60.0, *resp.WorkingHours, 1e-6)
		require.NotNil(t, resp.OvertimeHours)
		assert.InDelta(t, 34.0/60.0, *resp.OvertimeHours, 1e-6)
	})

	t.Run("second check-out conflicts", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		fx.setNow(localTime(10, 16, 0))
		_, err = fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		require.NoError(t, err)

		fx.setNow(localTime(10, 16, 10))
		_, err = fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
	})

	t.Run("concurrent check-out loses to the first writer", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		date := localTime(10, 0, 0)
		winner := localTime(10, 16, 1).UTC()
		fx.attRepo.beforeSetCheckOut = func() {
			stored := fx.attRepo.records[recordKey(testEmployeeID, date)]
			stored.ClockOut = &winner
			stored.Status = shift.StatusClockedOut
		}

		fx.setNow(localTime(10, 16, 2))
		_, err = fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

		stored := fx.attRepo.records[recordKey(testEmployeeID, date)]
		require.NotNil(t, stored.ClockOut)
		assert.Equal(t, winner, *stored.ClockOut)
	})

	t.Run("rejects a check-out earlier than the stored check-in", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		// A clock-in corrected to later in the day.
		corrected := localTime(10, 9, 0).UTC()
		fx.attRepo.records[recordKey(testEmployeeID, localTime(10, 0, 0))].ClockIn = &corrected

		fx.setNow(localTime(10, 8, 0))
		_, err = fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeCheckIn)
	})

	t.Run("closes an open break at the checkout instant", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		fx.setNow(localTime(10, 15, 0))
		_, err = fx.svc.StartBreak(fx.ctx, attendance.StartBreakRequest{Reason: "break"})
		require.NoError(t, err)

		fx.setNow(localTime(10, 16, 0))
		resp, err := fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		require.NoError(t, err)

		require.Len(t, resp.Breaks, 1)
		require.NotNil(t, resp.Breaks[0].EndTime)
		assert.Equal(t, 60, resp.TotalBreakMinutes)
	})

	t.Run("night overtime past the boundary", func(t *testing.T) {
		fx := newFixture(t, shift.ModelNight)
		fx.setNow(localTime(10, 19, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		// Next morning, 5 minutes past 04:05.
		fx.setNow(localTime(11, 4, 10))
		resp, err := fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		require.NoError(t, err)

		assert.Equal(t, "2024-03-10", resp.Date)
		assert.Equal(t, shift.StatusOvertime, resp.Status)
		require.NotNil(t, resp.OvertimeHours)
		assert.InDelta(t, 5.0/60.0, *resp.OvertimeHours, 1e-6)
	})
}

func TestBreaks(t *testing.T) {
	t.Run("start without check-in", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 10, 0))

		_, err := fx.svc.StartBreak(fx.ctx, attendance.StartBreakRequest{Reason: "lunch"})
		assert.ErrorIs(t, err, attendance.ErrNoCheckInYet)
	})

	t.Run("only one open break at a time", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		fx.setNow(localTime(10, 10, 0))
		_, err = fx.svc.StartBreak(fx.ctx, attendance.StartBreakRequest{Reason: "washroom"})
		require.NoError(t, err)

		_, err = fx.svc.StartBreak(fx.ctx, attendance.StartBreakRequest{Reason: "smoke"})
		assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)
	})

	t.Run("end without an open break", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		_, err = fx.svc.EndBreak(fx.ctx)
		assert.ErrorIs(t, err, attendance.ErrNoOpenBreak)
	})

	t.Run("invalid reason is rejected up front", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 10, 0))

		_, err := fx.svc.StartBreak(fx.ctx, attendance.StartBreakRequest{Reason: "nap"})
		assert.Error(t, err)
	})
}

func TestGetShiftStatus(t *testing.T) {
	t.Run("empty before any check-in", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 8, 0))

		resp, err := fx.svc.GetShiftStatus(fx.ctx)
		require.NoError(t, err)
		assert.Nil(t, resp.Attendance)
		assert.False(t, resp.IsCheckedIn)
	})

	t.Run("live estimate nets out the open break", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)

		fx.setNow(localTime(10, 11, 30))
		_, err = fx.svc.StartBreak(fx.ctx, attendance.StartBreakRequest{Reason: "lunch"})
		require.NoError(t, err)

		fx.setNow(localTime(10, 12, 0))
		resp, err := fx.svc.GetShiftStatus(fx.ctx)
		require.NoError(t, err)

		assert.True(t, resp.IsCheckedIn)
		assert.True(t, resp.IsOnBreak)
		assert.False(t, resp.IsCheckedOut)
		require.NotNil(t, resp.CurrentWorkingHoursEstimate)
		// 5h elapsed minus the 30 minutes on break so far
		assert.InDelta(t, 4.5, *resp.CurrentWorkingHoursEstimate, 1e-6)
	})

	t.Run("settled after checkout", func(t *testing.T) {
		fx := newFixture(t, shift.ModelDay)
		fx.setNow(localTime(10, 7, 0))
		_, err := fx.svc.CheckIn(fx.ctx, attendance.CheckInRequest{})
		require.NoError(t, err)
		fx.setNow(localTime(10, 16, 0))
		_, err = fx.svc.CheckOut(fx.ctx, attendance.CheckOutRequest{})
		require.NoError(t, err)

		resp, err := fx.svc.GetShiftStatus(fx.ctx)
		require.NoError(t, err)
		assert.True(t, resp.IsCheckedOut)
		assert.Nil(t, resp.CurrentWorkingHoursEstimate)
	})
}
