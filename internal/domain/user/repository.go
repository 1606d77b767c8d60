package user

import "context"

type UserRepository interface {
	// GetByEmail retrieves a user by email, joined with their employee record
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (User, error)

	// GetByOAuth retrieves a user by OAuth provider identity
	GetByOAuth(ctx context.Context, provider string, providerID string) (User, error)
}
