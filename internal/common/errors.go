package common

import "errors"

var (
	// Auth errors.
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSessionNotReady     = errors.New("session not initialized")
	ErrMalformedCredential = errors.New("malformed credential")

	// Transport errors.
	ErrUnavailable = errors.New("server unavailable")
	ErrServer      = errors.New("server error")

	// Request errors.
	ErrInvalidArgument = errors.New("invalid argument")

	// Storage errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
