package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "")
	t.Setenv("AUTO_MIGRATE", "")
	t.Setenv("SETTINGS_DRIVER", "")
	t.Setenv("DEFAULT_LOCALE", "")
	t.Setenv("CSRF_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("StoreDriver mismatch: got %q want %q", cfg.StoreDriver, StoreDriverPostgres)
	}
	if !cfg.AutoMigrate {
		t.Fatalf("AutoMigrate should default to true in development")
	}
	if cfg.SettingsDriver != SettingsDriverFile {
		t.Fatalf("SettingsDriver mismatch: got %q want %q", cfg.SettingsDriver, SettingsDriverFile)
	}
	if cfg.DefaultLocale != "ar" {
		t.Fatalf("DefaultLocale mismatch: got %q want %q", cfg.DefaultLocale, "ar")
	}
	if cfg.NotifyChannel != "supporters_changes" {
		t.Fatalf("NotifyChannel mismatch: got %q", cfg.NotifyChannel)
	}
	if cfg.HTTPWriteTimeout != 30*time.Second {
		t.Fatalf("HTTPWriteTimeout mismatch: got %s", cfg.HTTPWriteTimeout)
	}
	if cfg.AuthEnabled() {
		t.Fatalf("AuthEnabled should be false without JWT_SECRET")
	}
}

func TestLoadConfigRequiresDatabaseURLForPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig expected error without DATABASE_URL")
	}
}

func TestLoadConfigMemoryDriverSkipsDatabaseURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTO_MIGRATE", "")
	t.Setenv("SECURE_COOKIES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Fatalf("StoreDriver mismatch: got %q", cfg.StoreDriver)
	}
	if cfg.AutoMigrate {
		t.Fatalf("AutoMigrate should default to false outside development")
	}
	if !cfg.SecureCookies {
		t.Fatalf("SecureCookies should default to true in production")
	}
}

func TestLoadConfigRejectsUnknownDrivers(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "store", env: map[string]string{"STORE_DRIVER": "mongo"}},
		{name: "settings", env: map[string]string{"STORE_DRIVER": "memory", "SETTINGS_DRIVER": "redis"}},
		{name: "csrf key length", env: map[string]string{"STORE_DRIVER": "memory", "CSRF_KEY": "short"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SETTINGS_DRIVER", "")
			t.Setenv("CSRF_KEY", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("LoadConfig expected error for %v", tc.env)
			}
		})
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SETTINGS_DRIVER", "")
	t.Setenv("CSRF_KEY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://a.example", "https://b.example"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}
