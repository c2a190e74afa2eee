package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/evgo/dispatch/internal/pkg/constants"
	"github.com/evgo/dispatch/internal/pkg/models"
	natspkg "github.com/evgo/dispatch/internal/pkg/nats"
	pkgws "github.com/evgo/dispatch/internal/pkg/websocket"
	"github.com/evgo/dispatch/services/dispatch"
	"github.com/evgo/dispatch/services/dispatch/gateway"
	"github.com/evgo/dispatch/services/dispatch/mocks"
	"github.com/evgo/dispatch/services/dispatch/repository"
	"github.com/evgo/dispatch/services/dispatch/usecase"
	"github.com/golang/mock/gomock"
	"github.com/jmoiron/sqlx"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNatsURL = "nats://127.0.0.1:8370"

func TestMain(m *testing.M) {
	opts := natsserver.DefaultTestOptions
	opts.Port = 8370
	testNatsServer := natsserver.RunServer(&opts)
	code := m.Run()
	testNatsServer.Shutdown()
	os.Exit(code)
}

func TestHandle(t *testing.T) {
	testCases := []struct {
		name    string
		data    string
		setup   func(uc *mocks.MockDispatchUC)
		wantErr bool
	}{
		{
			name: "Applied",
			data: `{"requestId":"req-1","status":"accepted"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().UpdateStatus(gomock.Any(), "req-1", models.DispatchStatusAccepted).
					Return(&models.DispatchRequest{ID: "req-1", Status: models.DispatchStatusAccepted}, nil)
			},
		},
		{
			name:  "Malformed Is Dropped",
			data:  `not json`,
			setup: func(uc *mocks.MockDispatchUC) {},
		},
		{
			name:  "Incomplete Is Dropped",
			data:  `{"requestId":"req-1"}`,
			setup: func(uc *mocks.MockDispatchUC) {},
		},
		{
			name: "Rejected Transition Is Dropped",
			data: `{"requestId":"req-1","status":"pending"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().UpdateStatus(gomock.Any(), "req-1", gomock.Any()).Return(nil, dispatch.ErrInvalidTransition)
			},
		},
		{
			name: "Unknown Request Is Dropped",
			data: `{"requestId":"missing","status":"cancelled"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().UpdateStatus(gomock.Any(), "missing", gomock.Any()).Return(nil, dispatch.ErrRequestNotFound)
			},
		},
		{
			name: "Store Failure Is Returned",
			data: `{"requestId":"req-1","status":"cancelled"}`,
			setup: func(uc *mocks.MockDispatchUC) {
				uc.EXPECT().UpdateStatus(gomock.Any(), "req-1", gomock.Any()).Return(nil, dispatch.ErrStoreUnavailable)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockUC := mocks.NewMockDispatchUC(ctrl)
			tc.setup(mockUC)
			h := NewStatusHandler(mockUC)

			err := h.Handle([]byte(tc.data))

			if tc.wantErr {
				assert.ErrorIs(t, err, dispatch.ErrStoreUnavailable)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandle_MalformedRequestIDIsDropped(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	cfg := &models.Config{}
	repo := repository.NewDispatchRepository(cfg, sqlx.NewDb(mockDB, "sqlmock"))
	uc := usecase.NewDispatchUC(cfg, repo, nil, gateway.NoopGateway{}, gateway.TrustedIdentity{},
		pkgws.NewRegistry(time.Second), nil, nil)
	h := NewStatusHandler(uc)

	// a nil error acks the message instead of requeueing it
	assert.NoError(t, h.Handle([]byte(`{"requestId":"abc","status":"accepted"}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeNATS(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockUC := mocks.NewMockDispatchUC(ctrl)
	h := NewStatusHandler(mockUC)
	applied := make(chan struct{})

	mockUC.EXPECT().UpdateStatus(gomock.Any(), "req-1", models.DispatchStatusCancelled).
		DoAndReturn(func(context.Context, string, models.DispatchStatus) (*models.DispatchRequest, error) {
			close(applied)
			return &models.DispatchRequest{ID: "req-1", Status: models.DispatchStatusCancelled}, nil
		})

	client, err := natspkg.NewClient(testNatsURL, "dispatch-events-test")
	require.NoError(t, err)
	defer client.Close()

	sub, err := h.SubscribeNATS(client)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, client.GetConn().Flush())

	require.NoError(t, client.Publish(constants.SubjectDispatchStatus, models.StatusUpdateRequest{
		RequestID: "req-1",
		Status:    models.DispatchStatusCancelled,
	}))

	select {
	case <-applied:
	case <-time.After(2 * time.Second):
		t.Fatal("status update was not applied")
	}
}

func TestSubscribeNSQ_Unreachable(t *testing.T) {
	h := NewStatusHandler(nil)

	consumer, err := h.SubscribeNSQ(models.NSQConfig{NSQDAddress: "127.0.0.1:1", Channel: "dispatch"})

	assert.Nil(t, consumer)
	assert.ErrorContains(t, err, "failed to connect to NSQ daemon")
}
