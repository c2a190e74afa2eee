package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/evgo/dispatch/services/dispatch"
	"github.com/evgo/dispatch/services/dispatch/mocks"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestEV_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockUC := mocks.NewMockDispatchUC(ctrl)
	handler := NewDispatchHandler(mockUC)
	c, rec := newContext(http.MethodPost, "/request-ev", `{"userId":"rider-1","pickupLocation":{"lat":-6.2,"lng":106.8}}`)

	mockUC.EXPECT().HandleNewRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req models.NewDispatchRequest) (*models.DispatchOutcome, error) {
			assert.Equal(t, "rider-1", req.RiderID)
			assert.Empty(t, req.Origin)
			return &models.DispatchOutcome{Request: &models.DispatchRequest{ID: "req-1"}}, nil
		})

	err := handler.RequestEV(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Request sent successfully", body["message"])
	assert.Equal(t, "req-1", body["id"])
}

func TestRequestEV_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		setup    func(uc *mocks.MockDispatchUC)
		wantCode int
	}{
		{
			name:     "Malformed Body",
			body:     `{"userId":`,
			setup:    func(uc *mocks.MockDispatchUC) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Missing Rider",
			body:     `{"pickupLocation":"Main St"}`,
			setup:    func(uc *mocks.MockDispatchUC) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Missing Pickup",
			body:     `{"userId":"rider-1","pickupLocation":null}`,
			setup:    func(uc *mocks.MockDispatchUC) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Store Unavailable",
			body: `{"userId":"rider-1","pickupLocation":"Main St"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().HandleNewRequest(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: %w", dispatch.ErrRequestNotPersisted, dispatch.ErrStoreUnavailable))
			},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name: "Unexpected Failure",
			body: `{"userId":"rider-1","pickupLocation":"Main St"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().HandleNewRequest(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockUC := mocks.NewMockDispatchUC(ctrl)
			tc.setup(mockUC)
			handler := NewDispatchHandler(mockUC)
			c, rec := newContext(http.MethodPost, "/request-ev", tc.body)

			err := handler.RequestEV(c)

			require.NoError(t, err)
			assert.Equal(t, tc.wantCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetRequest(t *testing.T) {
	testCases := []struct {
		name     string
		result   *models.DispatchRequest
		err      error
		wantCode int
	}{
		{name: "Found", result: &models.DispatchRequest{ID: "req-1", Status: models.DispatchStatusNotified}, wantCode: http.StatusOK},
		{name: "Not Found", err: dispatch.ErrRequestNotFound, wantCode: http.StatusNotFound},
		{name: "Store Down", err: dispatch.ErrStoreUnavailable, wantCode: http.StatusServiceUnavailable},
		{name: "Unexpected", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockUC := mocks.NewMockDispatchUC(ctrl)
			handler := NewDispatchHandler(mockUC)
			c, rec := newContext(http.MethodGet, "/requests/req-1", "")
			c.SetParamNames("id")
			c.SetParamValues("req-1")

			mockUC.EXPECT().GetRequest(gomock.Any(), "req-1").Return(tc.result, tc.err)

			require.NoError(t, handler.GetRequest(c))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		setup    func(uc *mocks.MockDispatchUC)
		wantCode int
	}{
		{
			name: "Accepted",
			body: `{"status":"accepted"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().UpdateStatus(gomock.Any(), "req-1", models.DispatchStatusAccepted).
					Return(&models.DispatchRequest{ID: "req-1", Status: models.DispatchStatusAccepted}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "Missing Status",
			body:     `{}`,
			setup:    func(uc *mocks.MockDispatchUC) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Invalid Transition",
			body: `{"status":"pending"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().UpdateStatus(gomock.Any(), "req-1", models.DispatchStatusPending).
					Return(nil, fmt.Errorf("%w: notified -> pending", dispatch.ErrInvalidTransition))
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "Not Found",
			body: `{"status":"cancelled"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().UpdateStatus(gomock.Any(), "req-1", gomock.Any()).Return(nil, dispatch.ErrRequestNotFound)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockUC := mocks.NewMockDispatchUC(ctrl)
			tc.setup(mockUC)
			handler := NewDispatchHandler(mockUC)
			c, rec := newContext(http.MethodPatch, "/requests/req-1/status", tc.body)
			c.SetParamNames("id")
			c.SetParamValues("req-1")

			require.NoError(t, handler.UpdateStatus(c))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}
