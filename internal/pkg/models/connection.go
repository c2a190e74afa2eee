package models

// Role is the role a realtime connection claims
type Role string

const (
	RoleUnassigned Role = "unassigned"
	RoleRider      Role = "rider"
	RoleDriver     Role = "driver"
)

// ConnectionState is the liveness state of a realtime connection
type ConnectionState int32

const (
	ConnectionOpen ConnectionState = iota
	ConnectionClosing
	ConnectionClosed
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionOpen:
		return "open"
	case ConnectionClosing:
		return "closing"
	case ConnectionClosed:
		return "closed"
	default:
		return "unknown"
	}
}
