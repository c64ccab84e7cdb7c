package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	DatabaseURL     string
	DemoMode        bool
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
	Auth            AuthConfig
	Redis           RedisConfig
	RateLimit       RateLimitConfig
}

// AuthConfig holds bearer-token verification settings.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
}

// RedisConfig configures the shared Redis client. An empty URL means Redis is
// not used and in-memory stores are wired instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimitConfig bounds complaint submission per student.
type RateLimitConfig struct {
	ComplaintLimit  int
	ComplaintWindow time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// development default, must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:            envString("LODGEGUARD_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DemoMode:        os.Getenv("DEMO_MODE") == "true",
		LogLevel:        parseLevel(os.Getenv("LOG_LEVEL")),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Auth: AuthConfig{
			JWTSigningKey: jwtSigningKey,
			JWTIssuer:     envString("JWT_ISSUER", "lodgeguard"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RateLimit: RateLimitConfig{
			ComplaintLimit:  envInt("COMPLAINT_RATE_LIMIT", 5),
			ComplaintWindow: envDuration("COMPLAINT_RATE_WINDOW", 60*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
