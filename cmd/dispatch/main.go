package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evgo/dispatch/internal/pkg/config"
	"github.com/evgo/dispatch/internal/pkg/database"
	"github.com/evgo/dispatch/internal/pkg/health"
	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/metrics"
	"github.com/evgo/dispatch/internal/pkg/middleware"
	natspkg "github.com/evgo/dispatch/internal/pkg/nats"
	nsqpkg "github.com/evgo/dispatch/internal/pkg/nsq"
	"github.com/evgo/dispatch/internal/pkg/server"
	pkgws "github.com/evgo/dispatch/internal/pkg/websocket"
	"github.com/evgo/dispatch/services/dispatch"
	"github.com/evgo/dispatch/services/dispatch/gateway"
	"github.com/evgo/dispatch/services/dispatch/handler"
	"github.com/evgo/dispatch/services/dispatch/handler/events"
	httphandler "github.com/evgo/dispatch/services/dispatch/handler/http"
	wshandler "github.com/evgo/dispatch/services/dispatch/handler/websocket"
	"github.com/evgo/dispatch/services/dispatch/repository"
	"github.com/evgo/dispatch/services/dispatch/usecase"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	appName    = "dispatch-service"
	configPath = "config/dispatch.env"
)

func main() {
	configs := config.InitConfig(configPath)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	healthService := health.NewHealthService()

	// Initialize PostgreSQL database connection
	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	healthService.AddChecker("postgres", health.PingChecker{Pinger: postgresClient})

	// Redis backs the open-request cache and rate limiting; both are optional
	var redisClient *redis.Client
	var cache dispatch.OpenRequestCache
	if configs.Redis.Host != "" {
		rc, err := database.NewRedisClient(configs.Redis)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
		}
		defer rc.Close()
		redisClient = rc.GetClient()
		cache = repository.NewOpenRequestCache(redisClient, configs.Dispatch.ReplayWindow)
		healthService.AddChecker("redis", health.PingChecker{Pinger: rc})
	} else {
		zapLogger.Warn("Redis not configured, open-request replay and rate limiting disabled")
	}

	// Prometheus
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dispatchMetrics, err := metrics.NewDispatchMetrics(reg)
	if err != nil {
		zapLogger.Fatal("Failed to register metrics", logger.Err(err))
	}

	registry := pkgws.NewRegistry(configs.Dispatch.WriteTimeout)
	if err := metrics.RegisterConnectionGauges(reg, registry.Count); err != nil {
		zapLogger.Fatal("Failed to register connection gauges", logger.Err(err))
	}

	dispatchRepo := repository.NewDispatchRepository(configs, postgresClient.GetDB())
	identity := gateway.NewIdentityVerifier(configs)

	// The use case publishes events through the broker, and the status
	// subscription needs the use case, so the broker is set up in two steps.
	var (
		dispatchGW  dispatch.DispatchGW = gateway.NoopGateway{}
		natsClient  *natspkg.Client
		nsqProducer *nsqpkg.Producer
	)
	switch configs.Broker.Type {
	case "nats":
		natsClient, err = natspkg.NewClient(configs.NATS.URL, appName)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
		}
		dispatchGW = gateway.NewNATSGateway(natsClient)
		healthService.AddChecker("nats", health.ConnectedChecker{Client: natsClient})
	case "nsq":
		nsqProducer, err = nsqpkg.NewProducer(configs.NSQ.NSQDAddress)
		if err != nil {
			zapLogger.Fatal("Failed to create NSQ producer", logger.Err(err))
		}
		dispatchGW = gateway.NewNSQGateway(nsqProducer)
	case "", "none":
		zapLogger.Warn("No event broker configured, dispatch events are not published")
	default:
		zapLogger.Fatal("Unknown event broker", logger.String("type", configs.Broker.Type))
	}

	dispatchUC := usecase.NewDispatchUC(configs, dispatchRepo, cache, dispatchGW, identity,
		registry, dispatchMetrics, zapLogger)

	statusHandler := events.NewStatusHandler(dispatchUC)
	var nsqConsumer *nsqpkg.Consumer
	switch {
	case natsClient != nil:
		if _, err := statusHandler.SubscribeNATS(natsClient); err != nil {
			zapLogger.Fatal("Failed to subscribe to status updates", logger.Err(err))
		}
	case nsqProducer != nil:
		nsqConsumer, err = statusHandler.SubscribeNSQ(configs.NSQ)
		if err != nil {
			zapLogger.Fatal("Failed to subscribe to status updates", logger.Err(err))
		}
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(configs.Server.ReadTimeout) * time.Second
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.PanicRecoveryWithZapMiddleware(zapLogger))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	health.RegisterHealthEndpoints(e, appName, configs.App.Version, healthService)
	if configs.Metrics.Enabled {
		e.GET(configs.Metrics.Path, echo.WrapHandler(metrics.Handler(reg)))
	}

	routes := handler.NewHandler(
		wshandler.NewWebSocketHandler(dispatchUC, registry, zapLogger),
		httphandler.NewDispatchHandler(dispatchUC),
		redisClient,
		configs,
	)
	routes.RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Host, configs.Server.Port,
		time.Duration(configs.Server.ShutdownTimeout)*time.Second)
	srv.OnShutdown(func(context.Context) error {
		registry.CloseAll()
		return nil
	})
	srv.OnShutdown(func(context.Context) error {
		if nsqConsumer != nil {
			nsqConsumer.Stop()
		}
		if nsqProducer != nil {
			nsqProducer.Stop()
		}
		if natsClient != nil {
			natsClient.Close()
		}
		return nil
	})
	srv.OnShutdown(func(context.Context) error {
		return postgresClient.Close()
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Starting dispatch service",
		logger.String("app", appName),
		logger.Int("port", configs.Server.Port),
		logger.String("broker", configs.Broker.Type),
		logger.Bool("identity_enforced", configs.Identity.Enforce))

	if err := srv.Run(ctx); err != nil {
		zapLogger.Fatal("Dispatch service stopped with error", logger.Err(err))
	}
}
