package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to DispatchStatus
		want     bool
	}{
		{DispatchStatusPending, DispatchStatusNotified, true},
		{DispatchStatusPending, DispatchStatusAccepted, true},
		{DispatchStatusPending, DispatchStatusCancelled, true},
		{DispatchStatusPending, DispatchStatusPending, false},
		{DispatchStatusNotified, DispatchStatusAccepted, true},
		{DispatchStatusNotified, DispatchStatusCancelled, true},
		{DispatchStatusNotified, DispatchStatusPending, false},
		{DispatchStatusAccepted, DispatchStatusCancelled, false},
		{DispatchStatusCancelled, DispatchStatusAccepted, false},
		{DispatchStatus("unknown"), DispatchStatusNotified, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDispatchStatus_IsValidAndOpen(t *testing.T) {
	assert.True(t, DispatchStatusPending.IsValid())
	assert.True(t, DispatchStatusCancelled.IsValid())
	assert.False(t, DispatchStatus("expired").IsValid())

	assert.True(t, DispatchStatusPending.IsOpen())
	assert.True(t, DispatchStatusNotified.IsOpen())
	assert.False(t, DispatchStatusAccepted.IsOpen())
	assert.False(t, DispatchStatusCancelled.IsOpen())
}

func TestNewDispatchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     NewDispatchRequest
		wantErr string
	}{
		{"valid", NewDispatchRequest{RiderID: "r-1", PickupLocation: json.RawMessage(`"Main St"`)}, ""},
		{"missing rider", NewDispatchRequest{PickupLocation: json.RawMessage(`"Main St"`)}, "userId is required"},
		{"missing pickup", NewDispatchRequest{RiderID: "r-1"}, "pickupLocation is required"},
		{"blank pickup", NewDispatchRequest{RiderID: "r-1", PickupLocation: json.RawMessage("  ")}, "pickupLocation is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
