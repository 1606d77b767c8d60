package employee

import (
	"time"

	"github.com/officehub/officehub-backend-go/internal/domain/shift"
	"github.com/shopspring/decimal"
)

// Employee is the directory entry the attendance core resolves callers
// against. The shift model assignment lives here; the shift windows
// themselves are deployment configuration.
type Employee struct {
	ID            string
	UserID        *string
	CompanyID     string
	EmployeeCode  string
	FullName      string
	Email         string
	PositionTitle *string
	ShiftModel    shift.Model
	BaseSalary    *decimal.Decimal
	HireDate      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}
