package errs

import "errors"

// Sentinel errors shared by the transport and auth layers.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrBookingRejected = errors.New("booking rejected")
	ErrNoCredentials   = errors.New("username and password are required")
)
