package employee

import (
	"github.com/officehub/officehub-backend-go/internal/domain/shift"
	"github.com/officehub/officehub-backend-go/internal/pkg/validator"
)

type EmployeeFilter struct {
	Name  *string
	Page  int
	Limit int
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be at least 1",
		})
	}
	if f.Limit < 1 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID            string      `json:"id"`
	EmployeeCode  string      `json:"employee_code"`
	FullName      string      `json:"full_name"`
	Email         string      `json:"email"`
	PositionTitle *string     `json:"position_title,omitempty"`
	ShiftModel    shift.Model `json:"shift_model"`
	HireDate      string      `json:"hire_date"`
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Employees  []EmployeeResponse `json:"employees"`
}
