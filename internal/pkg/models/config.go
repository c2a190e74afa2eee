package models

import "time"

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	API      APIConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Broker   BrokerConfig
	NATS     NATSConfig
	NSQ      NSQConfig
	JWT      JWTConfig
	Identity IdentityConfig
	Dispatch DispatchConfig
	Logger   LoggerConfig
	Metrics  MetricsConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// APIConfig guards the HTTP entry points. An empty StatusAPIKey leaves the
// status hook open; a zero RateLimit disables rate limiting.
type APIConfig struct {
	StatusAPIKey     string
	RateLimit        int
	RateLimitPeriod  time.Duration
	CORSAllowOrigins []string
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration. An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// BrokerConfig selects the event broker used for dispatch events
type BrokerConfig struct {
	Type string // "nats", "nsq" or "none"
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// NSQConfig contains NSQ connection configuration
type NSQConfig struct {
	NSQDAddress string
	Channel     string
}

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// IdentityConfig controls whether role claims must carry a verified credential
type IdentityConfig struct {
	Enforce bool
}

// DispatchConfig contains realtime dispatch tuning
type DispatchConfig struct {
	FanoutConcurrency int
	WriteTimeout      time.Duration
	StoreTimeout      time.Duration
	ReplayEnabled     bool
	ReplayWindow      time.Duration
	BreakerThreshold  uint32
	BreakerCooldown   time.Duration
	NotifyRetries     int
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}

// MetricsConfig contains Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}
