package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"github.com/officehub/officehub-backend-go/internal/domain/attendance"
	"github.com/officehub/officehub-backend-go/internal/domain/employee"
	"github.com/officehub/officehub-backend-go/internal/domain/shift"
	"github.com/officehub/officehub-backend-go/internal/pkg/database"
	"github.com/officehub/officehub-backend-go/internal/repository/postgresql"
)

type AttendanceServiceImpl struct {
	db *database.DB
	attendance.AttendanceRepository
	employee.EmployeeRepository
	policies shift.Policies
	now      func() time.Time
}

func NewAttendanceService(
	db *database.DB,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	policies shift.Policies,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:                   db,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		policies:             policies,
		now:                  time.Now,
	}
}

// inTransaction runs fn inside a database transaction, with the transaction
// reachable through the context for the repositories. Without a pool (tests
// run on in-memory repositories) fn runs on the bare context.
func (a *AttendanceServiceImpl) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if a.db == nil {
		return fn(ctx)
	}
	return postgresql.WithTransaction(ctx, a.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}

// callerFromContext extracts the authenticated employee and company from the
// JWT claims.
func callerFromContext(ctx context.Context) (employeeID string, companyID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	employeeID, ok = claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	return employeeID, companyID, nil
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, companyID, err := callerFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	policy := a.policies.ForModel(emp.ShiftModel)
	nowUTC := a.now().UTC()

	// Classification rejects check-ins outside the model's window before
	// anything is written.
	status, err := policy.ClassifyCheckIn(nowUTC)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	shiftDate := policy.ShiftDate(nowUTC)

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, shiftDate, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance for shift date: %w", err)
	}

	var record attendance.Attendance
	if existing != nil {
		if existing.ClockIn != nil {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		// The record was pre-created without a clock-in (absent marking);
		// attach the check-in to it.
		existing.ClockIn = &nowUTC
		existing.ClockInIP = strPtrOrNil(req.IPAddress)
		existing.ClockInLatitude = req.Latitude
		existing.ClockInLongitude = req.Longitude
		existing.Status = status
		if err := a.AttendanceRepository.SetCheckIn(ctx, *existing); err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
			}
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to attach check-in: %w", err)
		}
		record = *existing
	} else {
		data := attendance.Attendance{
			EmployeeID: employeeID,
			CompanyID:  companyID,

			// Date is the shift anchor, not the clock-in timestamp: a
			// night-shift check-in after midnight keys to the previous day.
			Date:       shiftDate,
			ShiftModel: emp.ShiftModel,

			// Absolute times are stored UTC.
			ClockIn: &nowUTC,

			// Caller audit data, persisted verbatim.
			ClockInIP:        strPtrOrNil(req.IPAddress),
			ClockInLatitude:  req.Latitude,
			ClockInLongitude: req.Longitude,

			Status: status,
		}

		// A concurrent duplicate insert trips the (employee_id, date)
		// uniqueness constraint and surfaces as ErrAlreadyCheckedIn.
		record, err = a.AttendanceRepository.Create(ctx, data)
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
			}
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
	}

	record.EmployeeName = &emp.FullName
	return mapAttendanceToResponse(record), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, companyID, err := callerFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	policy := a.policies.ForModel(emp.ShiftModel)
	nowUTC := a.now().UTC()
	shiftDate := policy.ShiftDate(nowUTC)

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, shiftDate, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance for shift date: %w", err)
	}
	if record == nil || record.ClockIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if record.ClockOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}
	if nowUTC.Before(*record.ClockIn) {
		return attendance.AttendanceResponse{}, attendance.ErrCheckOutBeforeCheckIn
	}

	// The break close and the checkout write land together or not at all.
	err = a.inTransaction(ctx, func(ctx context.Context) error {
		// An unterminated break ends at the checkout instant.
		if record.OpenBreak() != nil {
			closed, err := record.EndBreak(nowUTC)
			if err != nil {
				return fmt.Errorf("failed to close open break: %w", err)
			}
			if err := a.AttendanceRepository.CloseBreak(ctx, *closed); err != nil {
				return fmt.Errorf("failed to persist closed break: %w", err)
			}
		}

		record.ClockOut = &nowUTC
		record.ClockOutIP = strPtrOrNil(req.IPAddress)
		record.ClockOutLatitude = req.Latitude
		record.ClockOutLongitude = req.Longitude
		record.Status = policy.ClassifyCheckOut(nowUTC, record.Status)

		summary := policy.ComputeWorkSummary(*record.ClockIn, nowUTC, record.TotalBreakMinutes())
		record.WorkingHours = &summary.WorkingHours
		record.OvertimeHours = &summary.OvertimeHours

		// Conditional write: a concurrent checkout that committed first
		// leaves zero rows and rolls this one back.
		return a.AttendanceRepository.SetCheckOut(ctx, *record)
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to finalize checkout: %w", err)
	}

	record.EmployeeName = &emp.FullName
	return mapAttendanceToResponse(*record), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, companyID, err := callerFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, _, err := a.currentRecord(ctx, employeeID, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if record == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNoCheckInYet
	}

	brk, err := record.StartBreak(a.now().UTC(), attendance.BreakReason(req.Reason))
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	saved, err := a.AttendanceRepository.AddBreak(ctx, *brk)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to save break: %w", err)
	}
	*brk = saved

	return mapAttendanceToResponse(*record), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context) (attendance.AttendanceResponse, error) {
	employeeID, companyID, err := callerFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, _, err := a.currentRecord(ctx, employeeID, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if record == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNoOpenBreak
	}

	closed, err := record.EndBreak(a.now().UTC())
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := a.AttendanceRepository.CloseBreak(ctx, *closed); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to persist closed break: %w", err)
	}

	return mapAttendanceToResponse(*record), nil
}

// GetShiftStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetShiftStatus(ctx context.Context) (attendance.ShiftStatusResponse, error) {
	employeeID, companyID, err := callerFromContext(ctx)
	if err != nil {
		return attendance.ShiftStatusResponse{}, err
	}

	record, policy, err := a.currentRecord(ctx, employeeID, companyID)
	if err != nil {
		return attendance.ShiftStatusResponse{}, err
	}

	resp := attendance.ShiftStatusResponse{}
	if record == nil {
		return resp, nil
	}

	mapped := mapAttendanceToResponse(*record)
	resp.Attendance = &mapped
	resp.IsCheckedIn = record.ClockIn != nil
	resp.IsCheckedOut = record.ClockOut != nil
	resp.IsOnBreak = record.OpenBreak() != nil

	// While checked in, estimate worked hours against "now" with the same
	// elapsed-minus-breaks formula used at checkout. The in-progress break
	// counts here, display only.
	if record.ClockIn != nil && record.ClockOut == nil {
		nowUTC := a.now().UTC()
		estimate := policy.ComputeWorkSummary(*record.ClockIn, nowUTC, record.LiveBreakMinutes(nowUTC)).WorkingHours
		resp.CurrentWorkingHoursEstimate = &estimate
	}

	return resp, nil
}

// currentRecord loads the caller's record for the shift-date "now" resolves
// to under their assigned shift policy.
func (a *AttendanceServiceImpl) currentRecord(ctx context.Context, employeeID, companyID string) (*attendance.Attendance, shift.Policy, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, shift.Policy{}, employee.ErrEmployeeNotFound
		}
		return nil, shift.Policy{}, fmt.Errorf("failed to get employee: %w", err)
	}

	policy := a.policies.ForModel(emp.ShiftModel)
	shiftDate := policy.ShiftDate(a.now().UTC())

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, shiftDate, companyID)
	if err != nil {
		return nil, shift.Policy{}, fmt.Errorf("failed to get attendance for shift date: %w", err)
	}
	if record != nil {
		record.EmployeeName = &emp.FullName
	}
	return record, policy, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	employeeID, companyID, err := callerFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.GetMyAttendance(ctx, employeeID, filter, companyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return buildListResponse(attendances, total, filter.Page, filter.Limit), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, filter, companyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	return buildListResponse(attendances, total, filter.Page, filter.Limit), nil
}

func buildListResponse(attendances []attendance.Attendance, total int64, page, limit int) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, mapAttendanceToResponse(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	var employeeName string
	if att.EmployeeName != nil {
		employeeName = *att.EmployeeName
	}

	breaks := make([]attendance.BreakResponse, 0, len(att.Breaks))
	for _, b := range att.Breaks {
		breaks = append(breaks, attendance.BreakResponse{
			ID:              b.ID,
			StartTime:       b.StartTime.Format("2006-01-02 15:04:05"),
			EndTime:         timePtrToString(b.EndTime),
			DurationMinutes: b.DurationMinutes,
			Reason:          string(b.Reason),
		})
	}

	return attendance.AttendanceResponse{
		ID:                att.ID,
		EmployeeID:        att.EmployeeID,
		EmployeeName:      employeeName,
		EmployeePosition:  att.EmployeePosition,
		Date:              att.Date.Format("2006-01-02"),
		ShiftModel:        att.ShiftModel,
		CheckInTime:       timePtrToString(att.ClockIn),
		CheckOutTime:      timePtrToString(att.ClockOut),
		CheckInIP:         att.ClockInIP,
		CheckOutIP:        att.ClockOutIP,
		CheckInLatitude:   att.ClockInLatitude,
		CheckInLongitude:  att.ClockInLongitude,
		CheckOutLatitude:  att.ClockOutLatitude,
		CheckOutLongitude: att.ClockOutLongitude,
		Status:            att.Status,
		Breaks:            breaks,
		TotalBreakMinutes: att.TotalBreakMinutes(),
		WorkingHours:      att.WorkingHours,
		OvertimeHours:     att.OvertimeHours,
		Notes:             att.Notes,
		ApprovedBy:        att.ApprovedBy,
		CreatedAt:         att.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:         att.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// UpdateAttendance implements attendance.AttendanceService.
// This allows managers/owners to fix attendance data like wrong clock times.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return attendance.AttendanceResponse{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	att, err := a.AttendanceRepository.GetByID(ctx, req.ID, companyID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if req.Date != nil && *req.Date != "" {
		parsedDate, _ := time.Parse("2006-01-02", *req.Date)
		att.Date = parsedDate
	}

	if t := parseClockTime(req.CheckInTime, att.Date); t != nil {
		att.ClockIn = t
	}
	if t := parseClockTime(req.CheckOutTime, att.Date); t != nil {
		att.ClockOut = t
	}

	if req.Status != nil {
		att.Status = shift.Status(*req.Status)
	}
	if req.Notes != nil {
		att.Notes = req.Notes
	}

	// Working and overtime hours are derived, never taken from the caller.
	// Recompute whenever both clock times are present.
	if att.ClockIn != nil && att.ClockOut != nil {
		policy := a.policies.ForModel(att.ShiftModel)
		summary := policy.ComputeWorkSummary(*att.ClockIn, *att.ClockOut, att.TotalBreakMinutes())
		att.WorkingHours = &summary.WorkingHours
		att.OvertimeHours = &summary.OvertimeHours
	}

	if err := a.AttendanceRepository.Update(ctx, att); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	updatedAtt, err := a.AttendanceRepository.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get updated attendance: %w", err)
	}

	return mapAttendanceToResponse(updatedAtt), nil
}

// parseClockTime accepts a full datetime or a bare time combined with the
// record's date.
func parseClockTime(value *string, date time.Time) *time.Time {
	if value == nil || *value == "" {
		return nil
	}

	t, err := time.Parse("2006-01-02 15:04:05", *value)
	if err != nil {
		clock, err := time.Parse("15:04:05", *value)
		if err != nil {
			return nil
		}
		t = time.Date(date.Year(), date.Month(), date.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
	}
	return &t
}

// ApproveAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ApproveAttendance(ctx context.Context, req attendance.ApproveAttendanceRequest) (attendance.AttendanceResponse, error) {
	return a.resolveApproval(ctx, req.ID, true, nil)
}

// RejectAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RejectAttendance(ctx context.Context, req attendance.RejectAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return a.resolveApproval(ctx, req.ID, false, &req.Reason)
}

func (a *AttendanceServiceImpl) resolveApproval(ctx context.Context, id string, approve bool, reason *string) (attendance.AttendanceResponse, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return attendance.AttendanceResponse{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return attendance.AttendanceResponse{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	att, err := a.AttendanceRepository.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	now := a.now().UTC()
	att.ApprovedBy = &userID
	att.ApprovedAt = &now
	att.RejectionReason = reason
	if approve {
		att.RejectionReason = nil
	}

	if err := a.AttendanceRepository.Update(ctx, att); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	updatedAtt, err := a.AttendanceRepository.GetByID(ctx, id, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get updated attendance: %w", err)
	}

	return mapAttendanceToResponse(updatedAtt), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return attendance.AttendanceResponse{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	att, err := a.AttendanceRepository.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return mapAttendanceToResponse(att), nil
}
