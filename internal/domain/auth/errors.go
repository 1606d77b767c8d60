package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrOAuthStateMismatch = errors.New("oauth state mismatch")
	ErrUserNotFound       = errors.New("user not found")
)
