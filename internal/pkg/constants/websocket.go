package constants

// WebSocket error codes
const (
	ErrorInvalidFormat = "invalid_format"
	ErrorUnauthorized  = "unauthorized"
	ErrorRoleConflict  = "role_conflict"
	ErrorRequestFailed = "request_failed"
	ErrorInternalError = "internal_error"
)

// Rider acknowledgement messages
const (
	MessageRequestSent   = "Your request has been sent to available drivers."
	MessageRequestFailed = "Your request could not be saved. Please try again."
)
