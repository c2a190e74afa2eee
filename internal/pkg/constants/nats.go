package constants

// Broker subjects (NATS) and topics (NSQ)
const (
	SubjectDispatchNotified = "dispatch.request.notified"
	SubjectDispatchUpdated  = "dispatch.request.updated"
	SubjectDispatchStatus   = "dispatch.request.status"

	// NSQ topic names may not contain dots
	TopicDispatchNotified = "dispatch_request_notified"
	TopicDispatchUpdated  = "dispatch_request_updated"
	TopicDispatchStatus   = "dispatch_request_status"
)
