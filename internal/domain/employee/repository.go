package employee

import "context"

type EmployeeRepository interface {
	// GetByID retrieves an employee with company isolation
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)

	// GetByUserID retrieves the employee linked to a user account
	GetByUserID(ctx context.Context, userID string) (Employee, error)

	// List retrieves employees with pagination
	List(ctx context.Context, filter EmployeeFilter, companyID string) ([]Employee, int64, error)
}
