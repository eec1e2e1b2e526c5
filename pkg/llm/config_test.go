package llm_test

import (
	"testing"
	"time"

	"github.com/ziggway/insight/pkg/llm"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := llm.Config{APIKey: "test-key"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"base url", cfg.BaseURL, llm.DefaultBaseURL},
		{"model", cfg.Model, llm.DefaultModel},
		{"max attempts", cfg.MaxAttempts, 4},
		{"requests per minute", cfg.RequestsPerMinute, 30},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.expected)
		}
	}

	if d, err := cfg.GetRequestTimeout(); err != nil || d != time.Minute {
		t.Errorf("got request timeout %v (%v), want 1m", d, err)
	}
	if d, err := cfg.GetInitialBackoff(); err != nil || d != 500*time.Millisecond {
		t.Errorf("got initial backoff %v (%v), want 500ms", d, err)
	}
	if d, err := cfg.GetMaxBackoff(); err != nil || d != 30*time.Second {
		t.Errorf("got max backoff %v (%v), want 30s", d, err)
	}
}

func TestConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_LLM_MODEL", "mixtral-8x7b")
	t.Setenv("TEST_LLM_MAX_ATTEMPTS", "2")
	t.Setenv("TEST_LLM_MOCK", "true")

	var cfg llm.Config
	env := &llm.Env{
		Model:       "TEST_LLM_MODEL",
		MaxAttempts: "TEST_LLM_MAX_ATTEMPTS",
		Mock:        "TEST_LLM_MOCK",
	}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Model != "mixtral-8x7b" {
		t.Errorf("got model %q, want mixtral-8x7b", cfg.Model)
	}
	if cfg.MaxAttempts != 2 {
		t.Errorf("got max attempts %d, want 2", cfg.MaxAttempts)
	}
	if !cfg.Mock {
		t.Errorf("mock not set from environment")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  llm.Config
	}{
		{"missing api key", llm.Config{}},
		{"bad request timeout", llm.Config{APIKey: "k", RequestTimeout: "soon"}},
		{"bad initial backoff", llm.Config{APIKey: "k", InitialBackoff: "later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestConfigMockSkipsAPIKey(t *testing.T) {
	cfg := llm.Config{Mock: true}
	if err := cfg.Finalize(nil); err != nil {
		t.Errorf("finalize failed: %v", err)
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := llm.Config{APIKey: "base-key", Model: "base-model"}
	cfg.Merge(&llm.Config{Model: "overlay-model", Temperature: 0.3})

	if cfg.Model != "overlay-model" {
		t.Errorf("got model %q, want overlay-model", cfg.Model)
	}
	if cfg.APIKey != "base-key" {
		t.Errorf("merge overwrote unset api key: %q", cfg.APIKey)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("got temperature %v, want 0.3", cfg.Temperature)
	}
}
