package websocket

import "errors"

// Registry misuse. These indicate a programming error in the caller and are
// fatal to the triggering call only.
var (
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrUnknownConnection   = errors.New("unknown connection")
	ErrRoleAlreadyClaimed  = errors.New("connection role already claimed")
	ErrInvalidRole         = errors.New("invalid connection role")
)

// ErrConnectionNotOpen is returned by Send when the target is not sendable.
// Callers treat it as "target unreachable", never as a failure.
var ErrConnectionNotOpen = errors.New("connection is not open")
