package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Upstream  UpstreamConfig
	SSO       SSOConfig
	Queue     QueueConfig
	Internal  InternalConfig
}

type AppConfig struct {
	Name        string        `envconfig:"APP_NAME" default:"customer-service"`
	Environment string        `envconfig:"APP_ENV" default:"development"`
	Port        string        `envconfig:"APP_PORT" default:"8080"`
	Debug       bool          `envconfig:"APP_DEBUG" default:"true"`
	Timeout     time.Duration `envconfig:"APP_TIMEOUT" default:"30s"`
	LogsPath    string        `envconfig:"LOGS_PATH" default:"./logs"`
}

type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	Name            string        `envconfig:"DB_NAME" default:"customer_db"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD" default:"postgres"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"50"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	Enabled      bool          `envconfig:"REDIS_ENABLED" default:"true"`
	Host         string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port         int           `envconfig:"REDIS_PORT" default:"6379"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	Database     int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret          string        `envconfig:"JWT_SECRET" default:"default_secret_key_change_in_production"`
	AdminSecret     string        `envconfig:"JWT_ADMIN_SECRET" default:"default_admin_secret_change_in_production"`
	AccessDuration  time.Duration `envconfig:"JWT_ACCESS_DURATION" default:"15m"`
	RefreshDuration time.Duration `envconfig:"JWT_REFRESH_DURATION" default:"168h"`
}

type RateLimitConfig struct {
	Request  int           `envconfig:"RATE_LIMIT_MAX_REQUEST" default:"60"`
	Duration time.Duration `envconfig:"RATE_LIMIT_DURATION" default:"1m"`
}

// UpstreamConfig points at the sibling services this one calls over HTTP.
type UpstreamConfig struct {
	AuthURL          string        `envconfig:"AUTH_SERVICE_URL" default:"http://localhost:8081"`
	AdminURL         string        `envconfig:"ADMIN_SERVICE_URL" default:"http://localhost:8082"`
	NotificationURL  string        `envconfig:"NOTIFICATION_SERVICE_URL" default:"http://localhost:8083"`
	APIKey           string        `envconfig:"UPSTREAM_API_KEY"`
	Timeout          time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	BreakerThreshold int           `envconfig:"UPSTREAM_BREAKER_THRESHOLD" default:"5"`
	BreakerTimeout   time.Duration `envconfig:"UPSTREAM_BREAKER_TIMEOUT" default:"30s"`
	CityCacheTTL     time.Duration `envconfig:"CITY_CACHE_TTL" default:"10m"`
}

type SSOConfig struct {
	SyncEnabled bool   `envconfig:"SSO_SYNC_ENABLED" default:"true"`
	TickSpec    string `envconfig:"SSO_TICK_SPEC" default:"@every 1s"`
}

type QueueConfig struct {
	Enabled     bool `envconfig:"QUEUE_ENABLED" default:"false"`
	Concurrency int  `envconfig:"QUEUE_CONCURRENCY" default:"5"`
}

type InternalConfig struct {
	APIKey string `envconfig:"INTERNAL_API_KEY" default:"change-me"`
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c != nil && c.App.Environment == "production"
}
