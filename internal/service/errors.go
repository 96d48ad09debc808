package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExist   = errors.New("user already exist")
	ErrTokenNotFound      = errors.New("refresh token not found")
	ErrTokenInactive      = errors.New("refresh token expired or revoked")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrTokenGeneration    = errors.New("refresh token generation exhausted retries")
)
