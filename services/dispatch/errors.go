package dispatch

import "errors"

var (
	// ErrStoreUnavailable is returned when the request store cannot be reached
	ErrStoreUnavailable = errors.New("request store unavailable")
	// ErrRequestNotPersisted wraps the cause of a failed Create; nothing was broadcast
	ErrRequestNotPersisted = errors.New("request not persisted")
	ErrRequestNotFound     = errors.New("request not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrAuthFailure         = errors.New("authentication failed")
)
