package infra

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	SettingsDriverFile   = "file"
	SettingsDriverSQLite = "sqlite"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	StoreDriver        string
	DatabaseURL        string
	DBMaxConns         int
	NotifyChannel      string
	AutoMigrate        bool
	JWTSecret          string
	CSRFKey            string
	SecureCookies      bool
	SettingsDriver     string
	SettingsPath       string
	DefaultLocale      string
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	cfg := &Config{
		AppEnv:             appEnv,
		Port:               getEnv("PORT", "8080"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 10),
		NotifyChannel:      getEnv("NOTIFY_CHANNEL", "supporters_changes"),
		AutoMigrate:        getEnvBool("AUTO_MIGRATE", appEnv == "development"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CSRFKey:            os.Getenv("CSRF_KEY"),
		SecureCookies:      getEnvBool("SECURE_COOKIES", appEnv == "production"),
		SettingsDriver:     strings.ToLower(getEnv("SETTINGS_DRIVER", SettingsDriverFile)),
		SettingsPath:       getEnv("SETTINGS_PATH", "./data"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "ar"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.SettingsDriver {
	case SettingsDriverFile, SettingsDriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported SETTINGS_DRIVER %q", cfg.SettingsDriver)
	}

	if cfg.CSRFKey != "" && len(cfg.CSRFKey) != 32 {
		return nil, fmt.Errorf("CSRF_KEY must be exactly 32 bytes")
	}

	return cfg, nil
}

// AuthEnabled reports whether admin routes require a signed token.
func (c *Config) AuthEnabled() bool {
	return c != nil && c.JWTSecret != ""
}

// CSRFSecret returns CSRF_KEY, or a random key when unset. A random key
// invalidates open admin forms on restart.
func (c *Config) CSRFSecret() ([]byte, error) {
	if c.CSRFKey != "" {
		return []byte(c.CSRFKey), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	return key, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
