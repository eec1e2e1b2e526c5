package database_test

import (
	"testing"
	"time"

	"github.com/ziggway/insight/pkg/database"
)

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := database.Config{Name: "insight", User: "insight"}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}

		tests := []struct {
			name     string
			got      any
			expected any
		}{
			{"host", cfg.Host, "localhost"},
			{"port", cfg.Port, 5432},
			{"ssl mode", cfg.SSLMode, "disable"},
			{"max open conns", cfg.MaxOpenConns, 25},
			{"max idle conns", cfg.MaxIdleConns, 5},
			{"conn max lifetime", cfg.ConnMaxLifetimeDuration(), 15 * time.Minute},
			{"conn timeout", cfg.ConnTimeoutDuration(), 5 * time.Second},
		}
		for _, tt := range tests {
			if tt.got != tt.expected {
				t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.expected)
			}
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "db.internal")
		t.Setenv("TEST_DB_PORT", "15432")

		cfg := database.Config{Name: "insight", User: "insight"}
		env := &database.Env{Host: "TEST_DB_HOST", Port: "TEST_DB_PORT"}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Host != "db.internal" || cfg.Port != 15432 {
			t.Errorf("got %s:%d, want db.internal:15432", cfg.Host, cfg.Port)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		cfg := database.Config{User: "insight"}
		if err := cfg.Finalize(nil); err == nil {
			t.Errorf("expected validation error")
		}
	})

	t.Run("missing user", func(t *testing.T) {
		cfg := database.Config{Name: "insight"}
		if err := cfg.Finalize(nil); err == nil {
			t.Errorf("expected validation error")
		}
	})

	t.Run("invalid duration", func(t *testing.T) {
		cfg := database.Config{Name: "insight", User: "insight", ConnTimeout: "soon"}
		if err := cfg.Finalize(nil); err == nil {
			t.Errorf("expected validation error")
		}
	})
}

func TestConfigDsn(t *testing.T) {
	cfg := database.Config{
		Host:     "localhost",
		Port:     5432,
		Name:     "insight",
		User:     "app",
		Password: "secret",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 dbname=insight user=app password=secret sslmode=disable"
	if got := cfg.Dsn(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := database.Config{Host: "localhost", Port: 5432, Name: "insight", User: "app"}
	cfg.Merge(&database.Config{Host: "db.internal", Password: "secret"})

	if cfg.Host != "db.internal" {
		t.Errorf("got host %q, want db.internal", cfg.Host)
	}
	if cfg.Password != "secret" {
		t.Errorf("got password %q, want secret", cfg.Password)
	}
	if cfg.Port != 5432 || cfg.Name != "insight" || cfg.User != "app" {
		t.Errorf("merge overwrote unset fields: %+v", cfg)
	}
}
