package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Session SessionConfig
	Auth    AuthConfig
	Log     LogConfig
	Theme   ThemeConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// BackendConfig points at the remote REST API that owns all persistence.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// SessionConfig controls the durable per-visitor session store.
type SessionConfig struct {
	DBPath       string
	Lifetime     time.Duration
	CookieName   string
	CookieSecure bool
}

// AuthConfig throttles credential submissions.
type AuthConfig struct {
	RatePerSecond float64
	Burst         int
}

// LogConfig selects the minimum logging level.
type LogConfig struct {
	Level string
}

// ThemeConfig optionally overrides the embedded team catalogue.
type ThemeConfig struct {
	TeamsFile string
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
	}

	cfg.Backend = BackendConfig{
		URL:     strings.TrimSpace(os.Getenv("API_URL")),
		Timeout: parseDurationWithDefault(os.Getenv("API_TIMEOUT"), 15*time.Second),
	}

	cfg.Session = SessionConfig{
		DBPath:       firstNonEmpty(os.Getenv("SESSION_DB"), "boxboxd-sessions.db"),
		Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 30*24*time.Hour),
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE"), "boxboxd_session"),
		CookieSecure: parseBoolWithDefault(os.Getenv("COOKIE_SECURE"), false),
	}

	cfg.Auth = AuthConfig{
		RatePerSecond: parseFloatWithDefault(os.Getenv("AUTH_RATE"), 1),
		Burst:         parseIntWithDefault(os.Getenv("AUTH_BURST"), 5),
	}

	cfg.Log = LogConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Theme = ThemeConfig{
		TeamsFile: strings.TrimSpace(os.Getenv("TEAMS_FILE")),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}
	if cfg.Backend.URL == "" {
		return Config{}, fmt.Errorf("API_URL must be set to the backend base URL")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseIntWithDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseFloatWithDefault(value string, def float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}
