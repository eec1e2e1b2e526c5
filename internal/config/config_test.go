package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ziggway/insight/internal/config"
)

func TestServerConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg config.ServerConfig
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}

		tests := []struct {
			name     string
			got      any
			expected any
		}{
			{"addr", cfg.Addr(), "0.0.0.0:8080"},
			{"read timeout", cfg.ReadTimeoutDuration(), time.Minute},
			{"write timeout", cfg.WriteTimeoutDuration(), 15 * time.Minute},
			{"shutdown timeout", cfg.ShutdownTimeoutDuration(), 30 * time.Second},
		}
		for _, tt := range tests {
			if tt.got != tt.expected {
				t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.expected)
			}
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv(config.EnvServerHost, "127.0.0.1")
		t.Setenv(config.EnvServerPort, "9090")

		var cfg config.ServerConfig
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Addr() != "127.0.0.1:9090" {
			t.Errorf("got %q, want 127.0.0.1:9090", cfg.Addr())
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		cfg := config.ServerConfig{Port: 70000}
		if err := cfg.Finalize(); err == nil {
			t.Errorf("expected validation error")
		}
	})

	t.Run("invalid duration", func(t *testing.T) {
		cfg := config.ServerConfig{WriteTimeout: "fifteen minutes"}
		if err := cfg.Finalize(); err == nil {
			t.Errorf("expected validation error")
		}
	})
}

func TestServerConfigMerge(t *testing.T) {
	cfg := config.ServerConfig{Host: "0.0.0.0", Port: 8080, ReadTimeout: "1m"}
	cfg.Merge(&config.ServerConfig{Port: 9000})

	if cfg.Port != 9000 {
		t.Errorf("got port %d, want 9000", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" || cfg.ReadTimeout != "1m" {
		t.Errorf("merge overwrote unset fields: %+v", cfg)
	}
}

func TestPipelineConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg config.PipelineConfig
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.MaxBatchSize != 20 {
			t.Errorf("got batch size %d, want 20", cfg.MaxBatchSize)
		}
		if cfg.MaxBatchBytesSize() != 24*1024 {
			t.Errorf("got batch bytes %d, want 24KB", cfg.MaxBatchBytesSize())
		}
		if cfg.MaxConcurrency != 4 {
			t.Errorf("got concurrency %d, want 4", cfg.MaxConcurrency)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("INSIGHT_PIPELINE_MAX_BATCH_SIZE", "5")
		t.Setenv("INSIGHT_PIPELINE_MAX_BATCH_BYTES", "8KB")

		var cfg config.PipelineConfig
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.MaxBatchSize != 5 {
			t.Errorf("got batch size %d, want 5", cfg.MaxBatchSize)
		}
		if cfg.MaxBatchBytesSize() != 8*1024 {
			t.Errorf("got batch bytes %d, want 8KB", cfg.MaxBatchBytesSize())
		}
	})

	t.Run("invalid batch bytes", func(t *testing.T) {
		cfg := config.PipelineConfig{MaxBatchBytes: "lots"}
		if err := cfg.Finalize(); err == nil {
			t.Errorf("expected validation error")
		}
	})
}

// Load requires the storage connection string and a classifier
// credential even when every other value defaults.
func loadEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("INSIGHT_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	t.Setenv("INSIGHT_CLASSIFIER_MOCK", "true")
}

func TestLoadConfigFile(t *testing.T) {
	loadEnvironment(t)

	dir := t.TempDir()
	content := `
[server]
port = 9999

[pipeline]
max_batch_size = 10
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("got port %d, want 9999", cfg.Server.Port)
	}
	if cfg.Pipeline.MaxBatchSize != 10 {
		t.Errorf("got batch size %d, want 10", cfg.Pipeline.MaxBatchSize)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("got host %q, want default", cfg.Server.Host)
	}
}

func TestLoadOverlay(t *testing.T) {
	loadEnvironment(t)
	t.Setenv(config.EnvInsightEnv, "test")

	dir := t.TempDir()
	base := "[server]\nport = 9999\nread_timeout = \"2m\"\n"
	overlay := "[server]\nport = 7777\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(base), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.test.toml"), []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay failed: %v", err)
	}
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("got port %d, want overlay value 7777", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != "2m" {
		t.Errorf("got read timeout %q, want base value 2m", cfg.Server.ReadTimeout)
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	loadEnvironment(t)
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("got port %d, want default 8080", cfg.Server.Port)
	}
	if cfg.ShutdownTimeout != "30s" {
		t.Errorf("got shutdown timeout %q, want 30s", cfg.ShutdownTimeout)
	}
}
