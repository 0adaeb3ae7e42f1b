package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrDonationNotFound   = errors.New("donation not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSignatureMismatch  = errors.New("notification signature mismatch")
	ErrStaleStatus        = errors.New("donation status changed concurrently")
	ErrLockBusy           = errors.New("resource is locked")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
