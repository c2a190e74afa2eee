package constants

// Redis key formats
const (
	KeyOpenRequests   = "dispatch:open"       // Sorted set of open request IDs scored by notification time
	KeyRequestPayload = "dispatch:request:%s" // Format: dispatch:request:{request_id}
)
