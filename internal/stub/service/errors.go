package service

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidLogin      = errors.New("invalid username or password")
	ErrAccountDisabled   = errors.New("account is not enabled")
	ErrDuplicateAccount  = errors.New("username or email already in use")
	ErrInvalidResetToken = errors.New("password reset token is invalid or expired")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrForeignStore      = errors.New("account store is not mapped to the application")
)
