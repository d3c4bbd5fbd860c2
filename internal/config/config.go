package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port     string `env:"PORT, default=8080"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`

	Postgres   PostgresConfig
	Redis      RedisConfig
	Session    SessionConfig
	Completion CompletionConfig
	Mongo      MongoConfig
	Minio      MinioConfig
	RateLimit  RateLimitConfig
}

type PostgresConfig struct {
	DSN      string `env:"POSTGRES_DSN, required"`
	MaxConns int32  `env:"DB_MAX_CONNS, default=10"`
	MinConns int32  `env:"DB_MIN_CONNS, default=1"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET, required"`
	TTL          time.Duration `env:"SESSION_TTL, default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`
}

// CompletionConfig configures the chat-completion upstream.
type CompletionConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY, required"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Model   string        `env:"OPENAI_MODEL, default=gpt-3.5-turbo"`
	Timeout time.Duration `env:"COMPLETION_TIMEOUT, default=60s"`
}

// MongoConfig enables chat history when URI is set.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=content_coach"`
}

// MinioConfig enables transcript archiving when Endpoint is set.
type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET, default=transcripts"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
}

// RateLimitConfig caps requests per window; zero disables a limiter.
type RateLimitConfig struct {
	Login  int           `env:"RATE_LIMIT_LOGIN, default=10"`
	Chat   int           `env:"RATE_LIMIT_CHAT, default=30"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Development reports whether the service runs in the development env.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Env, "development")
}

// CORSOrigins returns the allowed origins as a slice.
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
