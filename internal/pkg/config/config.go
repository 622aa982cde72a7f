package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, intervals, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Auth      AuthConfig
	Webhook   WebhookConfig
	StockSync StockSyncConfig
	Orders    OrdersConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Webhook-Signature"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type AuthConfig struct {
	// Token issuance happens in the back-office service; this service only verifies.
	Secret string `envconfig:"ADMIN_JWT_SECRET" required:"true"`
}

type WebhookConfig struct {
	// Empty secret disables signature verification (insecure fallback, logged at startup).
	Secret string `envconfig:"WEBHOOK_SECRET" default:""`
	// Bounded retry for order lookup: the order-creation write may not be
	// visible yet when the gateway notification arrives.
	LookupRetries int           `envconfig:"WEBHOOK_LOOKUP_RETRIES" default:"3"`
	LookupBackoff time.Duration `envconfig:"WEBHOOK_LOOKUP_BACKOFF" default:"300ms"`
	HandleTimeout time.Duration `envconfig:"WEBHOOK_HANDLE_TIMEOUT" default:"10s"`
}

type StockSyncConfig struct {
	Interval     time.Duration `envconfig:"STOCK_SYNC_INTERVAL" default:"5m"`
	RunOnStartup bool          `envconfig:"STOCK_SYNC_ON_STARTUP" default:"true"`
}

type OrdersConfig struct {
	PendingTTL    time.Duration `envconfig:"ORDER_PENDING_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"ORDER_SWEEP_INTERVAL" default:"5m"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:16380",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Auth: AuthConfig{
			Secret: "test-admin-secret",
		},
		Webhook: WebhookConfig{
			Secret:        "test-webhook-secret",
			LookupRetries: 2,
			LookupBackoff: 10 * time.Millisecond,
			HandleTimeout: 5 * time.Second,
		},
		StockSync: StockSyncConfig{
			Interval:     time.Minute,
			RunOnStartup: false,
		},
		Orders: OrdersConfig{
			PendingTTL:    30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}
