package services

import (
	"errors"

	"github.com/ajramos/evtui/internal/api"
)

// Standard service errors
var (
	// Data errors
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input provided")
	ErrConsentNeeded = errors.New("consent is required")
	ErrNoProfile     = errors.New("no active profile")

	// Service errors
	ErrServiceUnavailable = errors.New("service unavailable")
)

// IsRetryableError determines if an error should be retried
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || api.IsTransport(err)
}

// IsPermanentError determines if an error is permanent and should not be retried
func IsPermanentError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConsentNeeded) ||
		errors.Is(err, ErrNoProfile) ||
		api.IsNotFound(err)
}
