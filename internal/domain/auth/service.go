package auth

import "context"

type AuthService interface {
	// Login authenticates with email and password
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)

	// LoginWithGoogle returns the Google OAuth2 redirect URL
	LoginWithGoogle(ctx context.Context, userAgent string) (string, error)

	// OAuthCallbackGoogle completes the Google OAuth2 flow
	OAuthCallbackGoogle(ctx context.Context, state string, code string) (LoginResponse, error)

	// Refresh exchanges a valid refresh token for a new access token
	Refresh(ctx context.Context, refreshToken string) (RefreshResponse, error)

	// Logout revokes the refresh token
	Logout(ctx context.Context, refreshToken string) error
}
