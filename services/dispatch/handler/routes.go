package handler

import (
	"github.com/evgo/dispatch/internal/pkg/middleware"
	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/evgo/dispatch/services/dispatch/handler/http"
	"github.com/evgo/dispatch/services/dispatch/handler/websocket"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
)

// Handler coordinates the protocol handlers of the dispatch service
type Handler struct {
	wsHandler       *websocket.WebSocketHandler
	dispatchHandler *http.DispatchHandler
	redisClient     *redis.Client
	cfg             *models.Config
}

// NewHandler creates the route set. redisClient may be nil, which turns off
// rate limiting.
func NewHandler(
	wsHandler *websocket.WebSocketHandler,
	dispatchHandler *http.DispatchHandler,
	redisClient *redis.Client,
	cfg *models.Config,
) *Handler {
	return &Handler{
		wsHandler:       wsHandler,
		dispatchHandler: dispatchHandler,
		redisClient:     redisClient,
		cfg:             cfg,
	}
}

// RegisterRoutes registers the realtime upgrade, the fallback entry point
// and the request endpoints, all behind CORS
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Use(middleware.CORS(h.cfg.API.CORSAllowOrigins))

	e.GET("/", h.wsHandler.HandleWebSocket)
	e.GET("/ws", h.wsHandler.HandleWebSocket)

	e.POST("/request-ev", h.dispatchHandler.RequestEV,
		middleware.IPRateLimiter(h.cfg.API.RateLimit, h.cfg.API.RateLimitPeriod, h.redisClient))

	requests := e.Group("/requests")
	requests.GET("/:id", h.dispatchHandler.GetRequest)
	requests.PATCH("/:id/status", h.dispatchHandler.UpdateStatus,
		middleware.ValidateAPIKey(h.cfg.API.StatusAPIKey))
}
