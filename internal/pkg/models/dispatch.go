package models

import (
	"encoding/json"
	"errors"
	"time"
)

// DispatchStatus represents the lifecycle status of a dispatch request
type DispatchStatus string

const (
	DispatchStatusPending   DispatchStatus = "pending"
	DispatchStatusNotified  DispatchStatus = "notified"
	DispatchStatusAccepted  DispatchStatus = "accepted"
	DispatchStatusCancelled DispatchStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s DispatchStatus) IsValid() bool {
	switch s {
	case DispatchStatusPending, DispatchStatusNotified, DispatchStatusAccepted, DispatchStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the request can still be picked up by a driver
func (s DispatchStatus) IsOpen() bool {
	return s == DispatchStatusPending || s == DispatchStatusNotified
}

// CanTransitionTo reports whether moving from s to next goes forward along
// pending -> notified -> {accepted, cancelled}. A pending request may skip
// notified, since recording the recipients can fail after drivers were reached.
func (s DispatchStatus) CanTransitionTo(next DispatchStatus) bool {
	switch s {
	case DispatchStatusPending:
		return next == DispatchStatusNotified || next == DispatchStatusAccepted || next == DispatchStatusCancelled
	case DispatchStatusNotified:
		return next == DispatchStatusAccepted || next == DispatchStatusCancelled
	}
	return false
}

// DispatchRequest is a rider's pickup request as recorded by the request store
type DispatchRequest struct {
	ID              string           `json:"id" db:"id"`
	RiderID         string           `json:"userId" db:"rider_id"`
	Location        json.RawMessage  `json:"location,omitempty" db:"location"`
	PickupLocation  json.RawMessage  `json:"pickupLocation" db:"pickup_location"`
	PickupGeohash   *string          `json:"pickupGeohash,omitempty" db:"pickup_geohash"`
	Status          DispatchStatus   `json:"status" db:"status"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
	NotifiedAt      *time.Time       `json:"notifiedAt,omitempty" db:"notified_at"`
	NotifiedDrivers []NotifiedDriver `json:"notifiedDrivers,omitempty" db:"-"`
}

// NotifiedDriver records one driver connection a request was broadcast to
type NotifiedDriver struct {
	RequestID    string    `json:"requestId" db:"request_id"`
	ConnectionID string    `json:"connectionId" db:"connection_id"`
	DriverID     string    `json:"driverId,omitempty" db:"driver_id"`
	NotifiedAt   time.Time `json:"notifiedAt" db:"notified_at"`
}

// NewDispatchRequest is the input of a dispatch, from either the realtime
// channel or the fallback HTTP entry point.
type NewDispatchRequest struct {
	RiderID        string          `json:"userId"`
	Location       json.RawMessage `json:"location,omitempty"`
	PickupLocation json.RawMessage `json:"pickupLocation"`

	// Origin is the submitting connection, empty for HTTP submissions
	Origin string `json:"-"`
}

// Validate checks the fields every submission must carry
func (r NewDispatchRequest) Validate() error {
	if r.RiderID == "" {
		return errors.New("userId is required")
	}
	if isEmptyJSON(r.PickupLocation) {
		return errors.New("pickupLocation is required")
	}
	return nil
}

// DispatchOutcome reports what one dispatch did
type DispatchOutcome struct {
	Request   *DispatchRequest
	Attempted int
	Notified  []NotifiedDriver
}

// StatusUpdateRequest is an externally driven status change
type StatusUpdateRequest struct {
	RequestID string         `json:"requestId"`
	Status    DispatchStatus `json:"status"`
}

// DispatchNotifiedEvent is published after a request was fanned out
type DispatchNotifiedEvent struct {
	RequestID      string          `json:"requestId"`
	RiderID        string          `json:"userId"`
	PickupLocation json.RawMessage `json:"pickupLocation"`
	DriverIDs      []string        `json:"driverIds"`
	NotifiedAt     time.Time       `json:"notifiedAt"`
}

// DispatchUpdatedEvent is published after an external status update was applied
type DispatchUpdatedEvent struct {
	RequestID string         `json:"requestId"`
	Status    DispatchStatus `json:"status"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Credential is what a role frame claims about its sender
type Credential struct {
	UserID string
	Role   Role
	Token  string
}

// Identity is a verified rider or driver identity
type Identity struct {
	UserID string
	Role   Role
}
