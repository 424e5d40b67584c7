package services

import "errors"

// Validation errors. The caller can recover by resubmitting corrected input.
var (
	ErrWeakPassword    = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")
	ErrInvalidStatus   = errors.New("invalid task status")
)

// Conflict errors.
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
)

// Auth errors. Handlers surface all of these as a generic "not authorized"
// so a caller cannot tell which check failed.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrMalformedToken     = errors.New("malformed token")
	ErrUnknownSubject     = errors.New("unknown token subject")
)
