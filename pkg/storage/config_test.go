package storage_test

import (
	"testing"

	"github.com/ziggway/insight/pkg/storage"
)

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.ContainerName != "datasets" {
			t.Errorf("got container %q, want datasets", cfg.ContainerName)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("TEST_STORAGE_CONTAINER", "uploads")
		t.Setenv("TEST_STORAGE_CONNECTION", "UseDevelopmentStorage=true")

		var cfg storage.Config
		env := &storage.Env{
			ContainerName:    "TEST_STORAGE_CONTAINER",
			ConnectionString: "TEST_STORAGE_CONNECTION",
		}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.ContainerName != "uploads" {
			t.Errorf("got container %q, want uploads", cfg.ContainerName)
		}
	})

	t.Run("missing connection string", func(t *testing.T) {
		var cfg storage.Config
		if err := cfg.Finalize(nil); err == nil {
			t.Errorf("expected validation error")
		}
	})
}

func TestConfigMerge(t *testing.T) {
	cfg := storage.Config{ContainerName: "datasets"}
	cfg.Merge(&storage.Config{ConnectionString: "UseDevelopmentStorage=true"})

	if cfg.ContainerName != "datasets" {
		t.Errorf("merge overwrote container name: %q", cfg.ContainerName)
	}
	if cfg.ConnectionString == "" {
		t.Errorf("merge did not apply connection string")
	}
}
