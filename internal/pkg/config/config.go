package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/joho/godotenv"
)

// InitConfig loads configPath into the environment when running locally and
// builds the service configuration from environment variables.
func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" && configPath != "" {
		if err := godotenv.Load(configPath); err != nil {
			log.Println("error loading config from file", err)
		}
	}
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "evgo-dispatch")
	configs.App.Environment = GetEnv("APP_ENV", "local")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", false)
	configs.App.Version = GetEnv("APP_VERSION", "development")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("PORT", GetEnvAsInt("SERVER_PORT", 3000))
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 15)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 15)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30)

	// API config
	configs.API.StatusAPIKey = GetEnv("STATUS_HOOK_API_KEY", "")
	configs.API.RateLimit = GetEnvAsInt("RATE_LIMIT_REQUESTS", 30)
	configs.API.RateLimitPeriod = GetEnvAsDuration("RATE_LIMIT_PERIOD", time.Minute)
	configs.API.CORSAllowOrigins = GetEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"*"})

	// Database config
	configs.Database.Driver = GetEnv("DB_DRIVER", "pgx")
	configs.Database.Host = GetEnv("DB_HOST", "localhost")
	configs.Database.Port = GetEnvAsInt("DB_PORT", 5432)
	configs.Database.Username = GetEnv("DB_USERNAME", "")
	configs.Database.Password = GetEnv("DB_PASSWORD", "")
	configs.Database.Database = GetEnv("DB_DATABASE", "evgo")
	configs.Database.SSLMode = GetEnv("DB_SSL_MODE", "disable")
	configs.Database.MaxConns = GetEnvAsInt("DB_MAX_CONNS", 10)
	configs.Database.IdleConns = GetEnvAsInt("DB_IDLE_CONNS", 2)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 10)

	// Broker config
	configs.Broker.Type = GetEnv("EVENT_BROKER", "nats")
	configs.NATS.URL = GetEnv("NATS_URL", "nats://localhost:4222")
	configs.NSQ.NSQDAddress = GetEnv("NSQD_ADDRESS", "localhost:4150")
	configs.NSQ.Channel = GetEnv("NSQ_CHANNEL", "dispatch")

	// JWT config
	configs.JWT.Secret = GetEnv("JWT_SECRET", "")
	configs.JWT.Expiration = GetEnvAsInt("JWT_EXPIRATION", 60)
	configs.JWT.Issuer = GetEnv("JWT_ISSUER", "evgo")

	// Identity config
	configs.Identity.Enforce = GetEnvAsBool("IDENTITY_ENFORCE", false)

	// Dispatch config
	configs.Dispatch.FanoutConcurrency = GetEnvAsInt("DISPATCH_FANOUT_CONCURRENCY", 32)
	configs.Dispatch.WriteTimeout = GetEnvAsDuration("DISPATCH_WRITE_TIMEOUT", 5*time.Second)
	configs.Dispatch.StoreTimeout = GetEnvAsDuration("DISPATCH_STORE_TIMEOUT", 5*time.Second)
	configs.Dispatch.ReplayEnabled = GetEnvAsBool("DISPATCH_REPLAY_ENABLED", true)
	configs.Dispatch.ReplayWindow = GetEnvAsDuration("DISPATCH_REPLAY_WINDOW", 2*time.Minute)
	configs.Dispatch.BreakerThreshold = uint32(GetEnvAsInt("DISPATCH_BREAKER_THRESHOLD", 5))
	configs.Dispatch.BreakerCooldown = GetEnvAsDuration("DISPATCH_BREAKER_COOLDOWN", 30*time.Second)
	configs.Dispatch.NotifyRetries = GetEnvAsInt("DISPATCH_NOTIFY_RETRIES", 2)

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "")

	// Metrics config
	configs.Metrics.Enabled = GetEnvAsBool("METRICS_ENABLED", true)
	configs.Metrics.Path = GetEnv("METRICS_PATH", "/metrics")

	return configs
}

// GetEnv returns the environment variable or defaultValue when unset
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

// GetEnvAsDuration parses a Go duration string such as "5s" or "2m"
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

// GetEnvAsSlice splits a comma separated value, dropping blank entries
func GetEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
