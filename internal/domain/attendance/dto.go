package attendance

import (
	"github.com/officehub/officehub-backend-go/internal/domain/shift"
	"github.com/officehub/officehub-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// ClientMeta carries caller audit data. It is persisted verbatim and never
// interpreted by the attendance core.
type ClientMeta struct {
	IPAddress string   `json:"-"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (m *ClientMeta) Validate() validator.ValidationErrors {
	var errs validator.ValidationErrors

	if m.Latitude != nil && (*m.Latitude < -90 || *m.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if m.Longitude != nil && (*m.Longitude < -180 || *m.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	return errs
}

type CheckInRequest struct {
	ClientMeta
}

func (r *CheckInRequest) Validate() error {
	if errs := r.ClientMeta.Validate(); len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	ClientMeta
}

func (r *CheckOutRequest) Validate() error {
	if errs := r.ClientMeta.Validate(); len(errs) > 0 {
		return errs
	}
	return nil
}

type StartBreakRequest struct {
	Reason string `json:"reason"`
}

func (r *StartBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if !BreakReason(r.Reason).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must be one of: washroom, lunch, smoke, break",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BreakResponse struct {
	ID              string  `json:"id"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Reason          string  `json:"reason"`
}

type AttendanceResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	EmployeeName      string          `json:"employee_name"`
	EmployeePosition  *string         `json:"employee_position,omitempty"`
	Date              string          `json:"date"`
	ShiftModel        shift.Model     `json:"shift_model"`
	CheckInTime       *string         `json:"check_in_time"`
	CheckOutTime      *string         `json:"check_out_time"`
	CheckInIP         *string         `json:"check_in_ip,omitempty"`
	CheckOutIP        *string         `json:"check_out_ip,omitempty"`
	CheckInLatitude   *float64        `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64        `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64        `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64        `json:"check_out_longitude,omitempty"`
	Status            shift.Status    `json:"status"`
	Breaks            []BreakResponse `json:"breaks"`
	TotalBreakMinutes int             `json:"total_break_minutes"`
	WorkingHours      *float64        `json:"working_hours"`
	OvertimeHours     *float64        `json:"overtime_hours"`
	Notes             *string         `json:"notes,omitempty"`
	ApprovedBy        *string         `json:"approved_by,omitempty"`
	CreatedAt         string          `json:"created_at,omitempty"`
	UpdatedAt         string          `json:"updated_at,omitempty"`
}

// ShiftStatusResponse is the read-only projection of an employee's current
// shift. The working-hours estimate is computed against "now" while the
// employee is still checked in.
type ShiftStatusResponse struct {
	Attendance                  *AttendanceResponse `json:"attendance"`
	IsCheckedIn                 bool                `json:"is_checked_in"`
	IsCheckedOut                bool                `json:"is_checked_out"`
	IsOnBreak                   bool                `json:"is_on_break"`
	CurrentWorkingHoursEstimate *float64            `json:"current_working_hours_estimate,omitempty"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// ========================================
// FILTERS
// ========================================

var validStatuses = []string{
	string(shift.StatusAbsent), string(shift.StatusEarly), string(shift.StatusPresent),
	string(shift.StatusLate), string(shift.StatusOvertime), string(shift.StatusClockedOut),
	string(shift.StatusEarlyClockout), string(shift.StatusHalfDay), string(shift.StatusOnLeave),
	string(shift.StatusHoliday), string(shift.StatusWeekend),
}

var validSortFields = []string{"date", "status", "created_at", "working_hours"}

type AttendanceFilter struct {
	EmployeeID   *string
	EmployeeName *string
	Date         *string
	StartDate    *string
	EndDate      *string
	Status       *string
	Page         int
	Limit        int
	SortBy       string
	SortOrder    string
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors
	errs = append(errs, validateDateFilters(f.Date, f.StartDate, f.EndDate)...)
	errs = append(errs, validateStatusAndSort(f.Status, f.SortBy, f.SortOrder)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MyAttendanceFilter struct {
	Date      *string
	StartDate *string
	EndDate   *string
	Status    *string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors
	errs = append(errs, validateDateFilters(f.Date, f.StartDate, f.EndDate)...)
	errs = append(errs, validateStatusAndSort(f.Status, f.SortBy, f.SortOrder)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDateFilters(date, startDate, endDate *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	check := func(field string, value *string) {
		if value == nil || *value == "" {
			return
		}
		if _, ok := validator.IsValidDate(*value); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be in YYYY-MM-DD format",
			})
		}
	}

	check("date", date)
	check("start_date", startDate)
	check("end_date", endDate)
	return errs
}

func validateStatusAndSort(status *string, sortBy, sortOrder string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if status != nil && *status != "" && !validator.IsInSlice(*status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "invalid status value",
		})
	}

	if sortBy != "" && !validator.IsInSlice(sortBy, validSortFields) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "invalid sort field",
		})
	}

	if sortOrder != "" && sortOrder != "asc" && sortOrder != "desc" {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be 'asc' or 'desc'",
		})
	}

	return errs
}

// ========================================
// ADMIN DTOs
// ========================================

type UpdateAttendanceRequest struct {
	ID           string  `json:"-"`
	Date         *string `json:"date,omitempty"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
	Status       *string `json:"status,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Date != nil && *r.Date != "" {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.Status != nil && *r.Status != "" && !validator.IsInSlice(*r.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "invalid status value",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveAttendanceRequest struct {
	ID string `json:"-"`
}

type RejectAttendanceRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
