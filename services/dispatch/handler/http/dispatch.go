package http

import (
	"errors"
	"net/http"

	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/evgo/dispatch/internal/utils"
	"github.com/evgo/dispatch/services/dispatch"
	"github.com/labstack/echo/v4"
)

// DispatchHandler handles HTTP requests for dispatch operations
type DispatchHandler struct {
	dispatchUC dispatch.DispatchUC
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(dispatchUC dispatch.DispatchUC) *DispatchHandler {
	return &DispatchHandler{
		dispatchUC: dispatchUC,
	}
}

// RequestEV is the HTTP fallback for submitting a pickup request. It runs the
// same dispatch as the realtime requestEV frame.
func (h *DispatchHandler) RequestEV(c echo.Context) error {
	var req models.NewDispatchRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request payload for pickup request",
			logger.Err(err),
			logger.String("endpoint", "RequestEV"))
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return utils.BadRequestResponse(c, err.Error())
	}

	outcome, err := h.dispatchUC.HandleNewRequest(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, dispatch.ErrRequestNotPersisted) {
			return utils.ServiceUnavailableResponse(c, "Failed to save request")
		}
		logger.Error("Pickup request failed", logger.Err(err), logger.String("rider_id", req.RiderID))
		return utils.InternalServerErrorResponse(c, "Failed to process request")
	}

	return utils.Created(c, "Request sent successfully", outcome.Request.ID)
}

// GetRequest returns a stored request with its recipients
func (h *DispatchHandler) GetRequest(c echo.Context) error {
	req, err := h.dispatchUC.GetRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.storeError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Request retrieved successfully", req)
}

type statusUpdateBody struct {
	Status models.DispatchStatus `json:"status"`
}

// UpdateStatus applies an externally driven status change
func (h *DispatchHandler) UpdateStatus(c echo.Context) error {
	var body statusUpdateBody
	if err := c.Bind(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if body.Status == "" {
		return utils.BadRequestResponse(c, "status is required")
	}

	updated, err := h.dispatchUC.UpdateStatus(c.Request().Context(), c.Param("id"), body.Status)
	if err != nil {
		return h.storeError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Request status updated successfully", updated)
}

func (h *DispatchHandler) storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, dispatch.ErrRequestNotFound):
		return utils.NotFoundResponse(c, "Request not found")
	case errors.Is(err, dispatch.ErrInvalidTransition):
		return utils.ConflictResponse(c, err.Error())
	case errors.Is(err, dispatch.ErrStoreUnavailable):
		return utils.ServiceUnavailableResponse(c, "Request store unavailable")
	default:
		logger.Error("Dispatch request operation failed",
			logger.Err(err),
			logger.String("request_id", c.Param("id")))
		return utils.InternalServerErrorResponse(c, "Internal server error")
	}
}
