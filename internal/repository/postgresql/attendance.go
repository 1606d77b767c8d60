package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/officehub/officehub-backend-go/internal/domain/attendance"
	"github.com/officehub/officehub-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const uniqueViolationCode = "23505"

const attendanceColumns = `
	id, employee_id, company_id, date, shift_model,
	clock_in, clock_out, clock_in_ip, clock_out_ip,
	clock_in_latitude, clock_in_longitude,
	clock_out_latitude, clock_out_longitude,
	status, working_hours, overtime_hours,
	notes, approved_by, approved_at, rejection_reason,
	created_at, updated_at`

func scanAttendance(row pgx.Row, att *attendance.Attendance) error {
	return row.Scan(
		&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date, &att.ShiftModel,
		&att.ClockIn, &att.ClockOut, &att.ClockInIP, &att.ClockOutIP,
		&att.ClockInLatitude, &att.ClockInLongitude,
		&att.ClockOutLatitude, &att.ClockOutLongitude,
		&att.Status, &att.WorkingHours, &att.OvertimeHours,
		&att.Notes, &att.ApprovedBy, &att.ApprovedAt, &att.RejectionReason,
		&att.CreatedAt, &att.UpdatedAt,
	)
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			employee_id, company_id, date, shift_model,
			clock_in, clock_in_ip, clock_in_latitude, clock_in_longitude,
			status, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.CompanyID,
		newAttendance.Date,
		newAttendance.ShiftModel,
		newAttendance.ClockIn,
		newAttendance.ClockInIP,
		newAttendance.ClockInLatitude,
		newAttendance.ClockInLongitude,
		newAttendance.Status,
		newAttendance.Notes,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		// Two concurrent check-ins for the same shift-date race on the
		// (employee_id, date) unique index; the loser sees a duplicate key.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1
		  AND date = $2
		  AND company_id = $3
		LIMIT 1
	`

	var att attendance.Attendance
	err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, companyID), &att)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	breaks, err := a.loadBreaks(ctx, []string{att.ID})
	if err != nil {
		return nil, err
	}
	att.Breaks = breaks[att.ID]

	return &att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			a.id, a.employee_id, a.company_id, a.date, a.shift_model,
			a.clock_in, a.clock_out, a.clock_in_ip, a.clock_out_ip,
			a.clock_in_latitude, a.clock_in_longitude,
			a.clock_out_latitude, a.clock_out_longitude,
			a.status, a.working_hours, a.overtime_hours,
			a.notes, a.approved_by, a.approved_at, a.rejection_reason,
			a.created_at, a.updated_at,
			e.full_name AS employee_name,
			e.position_title AS employee_position
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1 AND a.company_id = $2
	`

	var att attendance.Attendance
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date, &att.ShiftModel,
		&att.ClockIn, &att.ClockOut, &att.ClockInIP, &att.ClockOutIP,
		&att.ClockInLatitude, &att.ClockInLongitude,
		&att.ClockOutLatitude, &att.ClockOutLongitude,
		&att.Status, &att.WorkingHours, &att.OvertimeHours,
		&att.Notes, &att.ApprovedBy, &att.ApprovedAt, &att.RejectionReason,
		&att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.EmployeePosition,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	breaks, err := a.loadBreaks(ctx, []string{att.ID})
	if err != nil {
		return attendance.Attendance{}, err
	}
	att.Breaks = breaks[att.ID]

	return att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			date = $2,
			clock_in = $3,
			clock_out = $4,
			clock_in_ip = $5,
			clock_out_ip = $6,
			clock_in_latitude = $7,
			clock_in_longitude = $8,
			clock_out_latitude = $9,
			clock_out_longitude = $10,
			status = $11,
			working_hours = $12,
			overtime_hours = $13,
			notes = $14,
			approved_by = $15,
			approved_at = $16,
			rejection_reason = $17,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.Date,
		att.ClockIn,
		att.ClockOut,
		att.ClockInIP,
		att.ClockOutIP,
		att.ClockInLatitude,
		att.ClockInLongitude,
		att.ClockOutLatitude,
		att.ClockOutLongitude,
		att.Status,
		att.WorkingHours,
		att.OvertimeHours,
		att.Notes,
		att.ApprovedBy,
		att.ApprovedAt,
		att.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// SetCheckIn implements attendance.AttendanceRepository. The clock_in guard
// keeps the first writer when two check-ins race on one record.
func (a *attendanceRepository) SetCheckIn(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			clock_in = $2,
			clock_in_ip = $3,
			clock_in_latitude = $4,
			clock_in_longitude = $5,
			status = $6,
			updated_at = NOW()
		WHERE id = $1 AND clock_in IS NULL
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.ClockIn,
		att.ClockInIP,
		att.ClockInLatitude,
		att.ClockInLongitude,
		att.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to set check-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAlreadyCheckedIn
	}

	return nil
}

// SetCheckOut implements attendance.AttendanceRepository. The clock_out guard
// keeps the first writer when two check-outs race on one record.
func (a *attendanceRepository) SetCheckOut(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			clock_out = $2,
			clock_out_ip = $3,
			clock_out_latitude = $4,
			clock_out_longitude = $5,
			status = $6,
			working_hours = $7,
			overtime_hours = $8,
			updated_at = NOW()
		WHERE id = $1 AND clock_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.ClockOut,
		att.ClockOutIP,
		att.ClockOutLatitude,
		att.ClockOutLongitude,
		att.Status,
		att.WorkingHours,
		att.OvertimeHours,
	)
	if err != nil {
		return fmt.Errorf("failed to set check-out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAlreadyCheckedOut
	}

	return nil
}

// AddBreak implements attendance.AttendanceRepository.
func (a *attendanceRepository) AddBreak(ctx context.Context, brk attendance.Break) (attendance.Break, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_breaks (attendance_id, start_time, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, brk.AttendanceID, brk.StartTime, brk.Reason).
		Scan(&brk.ID, &brk.CreatedAt)
	if err != nil {
		return attendance.Break{}, fmt.Errorf("failed to insert break: %w", err)
	}

	return brk, nil
}

// CloseBreak implements attendance.AttendanceRepository.
func (a *attendanceRepository) CloseBreak(ctx context.Context, brk attendance.Break) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_breaks
		SET end_time = $2, duration_minutes = $3
		WHERE id = $1 AND end_time IS NULL
	`

	tag, err := q.Exec(ctx, query, brk.ID, brk.EndTime, brk.DurationMinutes)
	if err != nil {
		return fmt.Errorf("failed to close break: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNoOpenBreak
	}

	return nil
}

// loadBreaks fetches the break rows for a set of attendance records in one
// query, keyed by attendance ID.
func (a *attendanceRepository) loadBreaks(ctx context.Context, attendanceIDs []string) (map[string][]attendance.Break, error) {
	if len(attendanceIDs) == 0 {
		return map[string][]attendance.Break{}, nil
	}

	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, attendance_id, start_time, end_time, duration_minutes, reason, created_at
		FROM attendance_breaks
		WHERE attendance_id = ANY($1)
		ORDER BY start_time ASC
	`

	rows, err := q.Query(ctx, query, attendanceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load breaks: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]attendance.Break)
	for rows.Next() {
		var b attendance.Break
		if err := rows.Scan(&b.ID, &b.AttendanceID, &b.StartTime, &b.EndTime, &b.DurationMinutes, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan break: %w", err)
		}
		result[b.AttendanceID] = append(result[b.AttendanceID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read breaks: %w", err)
	}

	return result, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	baseWhere := "a.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		baseWhere += fmt.Sprintf(" AND e.full_name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIdx++
	}

	where, args, argIdx := appendCommonFilters(baseWhere, args, argIdx,
		filter.Date, filter.StartDate, filter.EndDate, filter.Status)

	return a.queryList(ctx, where, args, argIdx, filter.Page, filter.Limit, filter.SortBy, filter.SortOrder)
}

// GetMyAttendance implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	baseWhere := "a.employee_id = $1 AND a.company_id = $2"
	args := []interface{}{employeeID, companyID}
	argIdx := 3

	where, args, argIdx := appendCommonFilters(baseWhere, args, argIdx,
		filter.Date, filter.StartDate, filter.EndDate, filter.Status)

	return a.queryList(ctx, where, args, argIdx, filter.Page, filter.Limit, filter.SortBy, filter.SortOrder)
}

func appendCommonFilters(where string, args []interface{}, argIdx int, date, startDate, endDate, status *string) (string, []interface{}, int) {
	if date != nil && *date != "" {
		where += fmt.Sprintf(" AND a.date = $%d", argIdx)
		args = append(args, *date)
		argIdx++
	}

	if startDate != nil && *startDate != "" {
		where += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *startDate)
		argIdx++
	}

	if endDate != nil && *endDate != "" {
		where += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *endDate)
		argIdx++
	}

	if status != nil && *status != "" {
		where += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *status)
		argIdx++
	}

	return where, args, argIdx
}

func (a *attendanceRepository) queryList(ctx context.Context, where string, args []interface{}, argIdx, page, limit int, sortBy, sortOrder string) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE ` + where

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	orderBy := "a.date"
	switch sortBy {
	case "status":
		orderBy = "a.status"
	case "created_at":
		orderBy = "a.created_at"
	case "working_hours":
		orderBy = "a.working_hours"
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	listQuery := fmt.Sprintf(`
		SELECT
			a.id, a.employee_id, a.company_id, a.date, a.shift_model,
			a.clock_in, a.clock_out, a.clock_in_ip, a.clock_out_ip,
			a.clock_in_latitude, a.clock_in_longitude,
			a.clock_out_latitude, a.clock_out_longitude,
			a.status, a.working_hours, a.overtime_hours,
			a.notes, a.approved_by, a.approved_at, a.rejection_reason,
			a.created_at, a.updated_at,
			e.full_name AS employee_name,
			e.position_title AS employee_position
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, direction, argIdx, argIdx+1)

	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	var ids []string
	for rows.Next() {
		var att attendance.Attendance
		if err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date, &att.ShiftModel,
			&att.ClockIn, &att.ClockOut, &att.ClockInIP, &att.ClockOutIP,
			&att.ClockInLatitude, &att.ClockInLongitude,
			&att.ClockOutLatitude, &att.ClockOutLongitude,
			&att.Status, &att.WorkingHours, &att.OvertimeHours,
			&att.Notes, &att.ApprovedBy, &att.ApprovedAt, &att.RejectionReason,
			&att.CreatedAt, &att.UpdatedAt,
			&att.EmployeeName, &att.EmployeePosition,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
		ids = append(ids, att.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendances: %w", err)
	}

	breaks, err := a.loadBreaks(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range attendances {
		attendances[i].Breaks = breaks[attendances[i].ID]
	}

	return attendances, total, nil
}

// ListStaleOpenSessions implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListStaleOpenSessions(ctx context.Context, before time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE clock_out IS NULL
		  AND clock_in IS NOT NULL
		  AND clock_in < $1
		ORDER BY clock_in ASC
	`

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale open sessions: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		if err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date, &att.ShiftModel,
			&att.ClockIn, &att.ClockOut, &att.ClockInIP, &att.ClockOutIP,
			&att.ClockInLatitude, &att.ClockInLongitude,
			&att.ClockOutLatitude, &att.ClockOutLongitude,
			&att.Status, &att.WorkingHours, &att.OvertimeHours,
			&att.Notes, &att.ApprovedBy, &att.ApprovedAt, &att.RejectionReason,
			&att.CreatedAt, &att.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendances: %w", err)
	}

	return attendances, nil
}

// MarkAbsent implements attendance.AttendanceRepository.
func (a *attendanceRepository) MarkAbsent(ctx context.Context, date time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (employee_id, company_id, date, shift_model, status)
		SELECT e.id, e.company_id, $1, e.shift_model, 'absent'
		FROM employees e
		WHERE e.deleted_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM attendances a
			WHERE a.employee_id = e.id AND a.date = $1
		  )
	`

	tag, err := q.Exec(ctx, query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to mark absent employees: %w", err)
	}

	return tag.RowsAffected(), nil
}
