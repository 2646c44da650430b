package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/LarisaDinulescu/quadball-live/brackets"
	"github.com/LarisaDinulescu/quadball-live/storage"
)

type Config struct {
	ServerPort int

	BackendURL       string
	BackendToken     string
	PushURL          string
	GlobalTopic      string
	MatchTopicPrefix string

	JWTSecretKey string
	ManagerRoles []string

	Location       *time.Location
	BracketNaming  brackets.Naming
	ReloadInterval time.Duration
	HTTPTimeout    time.Duration

	CORSAllowedOrigins []string
	LogLevel           slog.Level

	R2 storage.CloudflareR2Config
}

// Load reads the configuration from the environment.
// A .env file is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BackendURL:       strings.TrimRight(env("BACKEND_URL", ""), "/"),
		BackendToken:     env("BACKEND_TOKEN", ""),
		PushURL:          env("PUSH_URL", ""),
		GlobalTopic:      env("GLOBAL_TOPIC", "/topic/live-events"),
		MatchTopicPrefix: env("MATCH_TOPIC_PREFIX", "/topic/match/"),
		JWTSecretKey:     env("JWT_SECRET_KEY", ""),
		ManagerRoles:     splitList(env("MANAGER_ROLES", "manager,admin")),

		CORSAllowedOrigins: splitList(env("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           ParseLevel(env("LOG_LEVEL", "info")),

		R2: storage.CloudflareR2Config{
			AccountID:       env("R2_ACCOUNT_ID", ""),
			AccessKeyID:     env("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: env("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      env("R2_BUCKET_NAME", ""),
			PublicBaseURL:   env("R2_PUBLIC_BASE_URL", ""),
		},
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL environment variable is not set")
	}
	if cfg.PushURL == "" {
		return nil, fmt.Errorf("PUSH_URL environment variable is not set")
	}

	port, err := strconv.Atoi(env("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if cfg.Location, err = time.LoadLocation(env("TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE environment variable: %w", err)
	}
	if cfg.BracketNaming, err = brackets.ParseNaming(env("BRACKET_NAMING", "classic")); err != nil {
		return nil, fmt.Errorf("invalid BRACKET_NAMING environment variable: %w", err)
	}
	if cfg.ReloadInterval, err = parseDuration("RELOAD_INTERVAL", "0"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = parseDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout == 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	return cfg, nil
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level; unknown values are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(env(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, d)
	}
	return d, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
