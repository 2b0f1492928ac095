package repository

import "errors"

// Sentinel kinds for personal data lookups.
var (
	ErrNotFound      = errors.New("personal data not found")
	ErrUnreachable   = errors.New("personal data store unreachable")
	ErrNotConfigured = errors.New("personal data store not configured")
)
