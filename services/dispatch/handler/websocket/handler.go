package websocket

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/evgo/dispatch/internal/pkg/constants"
	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/models"
	pkgws "github.com/evgo/dispatch/internal/pkg/websocket"
	"github.com/evgo/dispatch/services/dispatch"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	controlWait  = 5 * time.Second
	maxFrameSize = 64 * 1024
)

// WebSocketHandler accepts realtime connections and routes their frames
type WebSocketHandler struct {
	dispatchUC dispatch.DispatchUC
	registry   *pkgws.Registry
	upgrader   websocket.Upgrader
	logger     *logger.ZapLogger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	dispatchUC dispatch.DispatchUC,
	registry *pkgws.Registry,
	zapLogger *logger.ZapLogger,
) *WebSocketHandler {
	if zapLogger == nil {
		zapLogger = logger.NewNopLogger()
	}
	return &WebSocketHandler{
		dispatchUC: dispatchUC,
		registry:   registry,
		logger:     zapLogger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the request and serves the connection until it closes
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.Debug("WebSocket upgrade failed", logger.Err(err))
		return nil
	}

	conn, err := h.registry.Register(uuid.NewString(), ws)
	if err != nil {
		h.logger.Error("Failed to register connection", logger.Err(err))
		_ = ws.Close()
		return nil
	}
	defer h.registry.Unregister(conn.ID())

	log := h.logger.WithConnection(conn.ID(), conn.Role())
	log.Debug("Connection opened", zap.String("remote_addr", c.RealIP()))

	done := make(chan struct{})
	defer close(done)
	go keepAlive(ws, done)

	h.readLoop(c.Request().Context(), conn, ws)
	log.Debug("Connection closed", zap.String("final_role", string(conn.Role())))
	return nil
}

// readLoop handles frames in arrival order until the transport fails
func (h *WebSocketHandler) readLoop(ctx context.Context, conn *pkgws.Connection, ws *websocket.Conn) {
	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error",
					logger.String("connection_id", conn.ID()),
					logger.Err(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		h.handleFrame(ctx, conn, data)
	}
}

func (h *WebSocketHandler) handleFrame(ctx context.Context, conn *pkgws.Connection, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic while handling frame",
				logger.String("connection_id", conn.ID()),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
			h.sendError(conn, constants.ErrorInternalError, "Internal error")
		}
	}()

	frame, err := models.DecodeFrame(data)
	if err != nil {
		h.logger.Warn("Dropped invalid frame",
			logger.String("connection_id", conn.ID()),
			logger.Err(err))
		h.sendError(conn, constants.ErrorInvalidFormat, err.Error())
		return
	}

	switch f := frame.(type) {
	case models.JoinAsRider:
		h.join(ctx, conn, models.Credential{UserID: f.UserID, Role: models.RoleRider, Token: f.Token})
	case models.JoinAsDriver:
		h.join(ctx, conn, models.Credential{UserID: f.UserID, Role: models.RoleDriver, Token: f.Token})
	case models.SubmitRequest:
		h.submit(ctx, conn, f)
	}
}

func (h *WebSocketHandler) join(ctx context.Context, conn *pkgws.Connection, credential models.Credential) {
	err := h.dispatchUC.JoinAs(ctx, conn.ID(), credential)
	switch {
	case err == nil:
	case errors.Is(err, dispatch.ErrAuthFailure):
		h.logger.Warn("Role claim rejected",
			logger.String("connection_id", conn.ID()),
			logger.String("role", string(credential.Role)),
			logger.Err(err))
		h.sendError(conn, constants.ErrorUnauthorized, "Authentication failed")
	case errors.Is(err, pkgws.ErrRoleAlreadyClaimed):
		h.sendError(conn, constants.ErrorRoleConflict, "Connection role is already set")
	default:
		h.logger.Error("Failed to join connection",
			logger.String("connection_id", conn.ID()),
			logger.Err(err))
		h.sendError(conn, constants.ErrorInternalError, "Internal error")
	}
}

func (h *WebSocketHandler) submit(ctx context.Context, conn *pkgws.Connection, f models.SubmitRequest) {
	_, err := h.dispatchUC.HandleNewRequest(ctx, models.NewDispatchRequest{
		RiderID:        f.UserID,
		Location:       f.Location,
		PickupLocation: f.PickupLocation,
		Origin:         conn.ID(),
	})
	if err != nil {
		// riders already received an EVResponse error
		h.logger.Warn("Pickup request failed",
			logger.String("connection_id", conn.ID()),
			logger.String("rider_id", f.UserID),
			logger.Err(err))
	}
}

func (h *WebSocketHandler) sendError(conn *pkgws.Connection, code, message string) {
	err := h.registry.Send(conn, models.ErrorFrame{
		Type:    models.FrameError,
		Code:    code,
		Message: message,
	})
	if err != nil && !errors.Is(err, pkgws.ErrConnectionNotOpen) {
		h.logger.Debug("Failed to send error frame",
			logger.String("connection_id", conn.ID()),
			logger.Err(err))
	}
}

// keepAlive pings the peer so dead connections hit the read deadline
func keepAlive(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(controlWait)); err != nil {
				return
			}
		}
	}
}
