package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// FrameType is the "type" discriminator of a realtime frame
type FrameType string

// Inbound frame types
const (
	FrameJoinAsRider   FrameType = "user"
	FrameJoinAsDriver  FrameType = "driver"
	FrameSubmitRequest FrameType = "requestEV"
)

// Outbound frame types
const (
	FrameNewRequest FrameType = "newRequest"
	FrameEVResponse FrameType = "EVResponse"
	FrameError      FrameType = "error"
)

// EVResponse statuses
const (
	ResponseStatusSuccess = "success"
	ResponseStatusError   = "error"
)

// ErrProtocolViolation is returned for unknown or malformed frames
var ErrProtocolViolation = errors.New("protocol violation")

// ProtocolError describes why a frame was rejected
type ProtocolError struct {
	Type   string
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: %s", ErrProtocolViolation, e.Reason)
	}
	return fmt.Sprintf("%s: %s frame: %s", ErrProtocolViolation, e.Type, e.Reason)
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocolViolation
}

// InboundFrame is one of JoinAsRider, JoinAsDriver or SubmitRequest.
type InboundFrame interface {
	FrameType() FrameType
	inbound()
}

// JoinAsRider declares the connection role as rider
type JoinAsRider struct {
	UserID string `json:"userId,omitempty"`
	Token  string `json:"token,omitempty"`
}

// JoinAsDriver declares the connection role as driver
type JoinAsDriver struct {
	UserID string `json:"userId,omitempty"`
	Token  string `json:"token,omitempty"`
}

// SubmitRequest submits a pickup request over the realtime channel
type SubmitRequest struct {
	Location       json.RawMessage `json:"location,omitempty"`
	UserID         string          `json:"userId"`
	PickupLocation json.RawMessage `json:"pickupLocation"`
}

func (JoinAsRider) FrameType() FrameType   { return FrameJoinAsRider }
func (JoinAsDriver) FrameType() FrameType  { return FrameJoinAsDriver }
func (SubmitRequest) FrameType() FrameType { return FrameSubmitRequest }

func (JoinAsRider) inbound()   {}
func (JoinAsDriver) inbound()  {}
func (SubmitRequest) inbound() {}

// DecodeFrame decodes and validates one inbound frame. Every failure is a
// *ProtocolError matching ErrProtocolViolation.
func DecodeFrame(data []byte) (InboundFrame, error) {
	var envelope struct {
		Type FrameType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &ProtocolError{Reason: "invalid json"}
	}

	switch envelope.Type {
	case FrameJoinAsRider:
		var f JoinAsRider
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, &ProtocolError{Type: string(envelope.Type), Reason: err.Error()}
		}
		return f, nil
	case FrameJoinAsDriver:
		var f JoinAsDriver
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, &ProtocolError{Type: string(envelope.Type), Reason: err.Error()}
		}
		return f, nil
	case FrameSubmitRequest:
		var f SubmitRequest
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, &ProtocolError{Type: string(envelope.Type), Reason: err.Error()}
		}
		if f.UserID == "" {
			return nil, &ProtocolError{Type: string(envelope.Type), Reason: "userId is required"}
		}
		if isEmptyJSON(f.PickupLocation) {
			return nil, &ProtocolError{Type: string(envelope.Type), Reason: "pickupLocation is required"}
		}
		return f, nil
	case "":
		return nil, &ProtocolError{Reason: "missing type"}
	default:
		return nil, &ProtocolError{Type: string(envelope.Type), Reason: "unknown frame type"}
	}
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// NewRequestFrame is fanned out to drivers
type NewRequestFrame struct {
	Type           FrameType       `json:"type"`
	ID             string          `json:"id,omitempty"`
	Location       json.RawMessage `json:"location,omitempty"`
	UserID         string          `json:"userId"`
	PickupLocation json.RawMessage `json:"pickupLocation"`
}

// NewRequestFrameFrom builds the driver notification for a stored request
func NewRequestFrameFrom(req *DispatchRequest) NewRequestFrame {
	return NewRequestFrame{
		Type:           FrameNewRequest,
		ID:             req.ID,
		Location:       req.Location,
		UserID:         req.RiderID,
		PickupLocation: req.PickupLocation,
	}
}

// EVResponseFrame acknowledges a request to the rider
type EVResponseFrame struct {
	Type    FrameType `json:"type"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
	ID      string    `json:"id,omitempty"`
}

// ErrorFrame reports a rejected frame back to its sender
type ErrorFrame struct {
	Type    FrameType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}
