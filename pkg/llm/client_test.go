package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ziggway/insight/pkg/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(baseURL string) llm.Config {
	return llm.Config{
		BaseURL:           baseURL,
		APIKey:            "test-key",
		Model:             "test-model",
		RequestTimeout:    "5s",
		MaxAttempts:       3,
		InitialBackoff:    "1ms",
		MaxBackoff:        "5ms",
		RequestsPerMinute: 60000,
	}
}

func newClient(t *testing.T, baseURL string) *llm.Client {
	t.Helper()
	client, err := llm.New(testConfig(baseURL), discardLogger())
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestCompleteSuccess(t *testing.T) {
	var captured struct {
		path  string
		auth  string
		model string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		captured.model = req.Model

		io.WriteString(w, completionBody(`[{"id": "r-1"}]`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	content, err := client.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if content != `[{"id": "r-1"}]` {
		t.Errorf("got content %q", content)
	}
	if captured.path != "/chat/completions" {
		t.Errorf("got path %q, want /chat/completions", captured.path)
	}
	if captured.auth != "Bearer test-key" {
		t.Errorf("got auth %q", captured.auth)
	}
	if captured.model != "test-model" {
		t.Errorf("got model %q, want test-model", captured.model)
	}
}

func TestCompleteRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, completionBody("ok"))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	content, err := client.Complete(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if content != "ok" {
		t.Errorf("got content %q, want ok", content)
	}
	if calls.Load() != 3 {
		t.Errorf("got %d calls, want 3", calls.Load())
	}
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Complete(context.Background(), "s", "u")

	if !errors.Is(err, llm.ErrExhausted) {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
	if calls.Load() != 3 {
		t.Errorf("got %d calls, want 3 (max attempts)", calls.Load())
	}
}

func TestCompleteFatalNoRetry(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "invalid api key"}}`)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Complete(context.Background(), "s", "u")

	if !llm.Fatal(err) {
		t.Fatalf("got %v, want fatal error", err)
	}
	if calls.Load() != 1 {
		t.Errorf("got %d calls, want 1 (no retries on fatal)", calls.Load())
	}
}

func TestCompleteRateLimitedRetries(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, completionBody("ok"))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	content, err := client.Complete(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if content != "ok" {
		t.Errorf("got content %q, want ok", content)
	}
}

func TestCompleteFinishesInFlightAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the caller gives up while this request is on the wire
		cancel()
		io.WriteString(w, completionBody("late but complete"))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	content, err := client.Complete(ctx, "s", "u")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if content != "late but complete" {
		t.Errorf("got content %q, want late but complete", content)
	}
}

func TestCompleteStopsRetriesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Complete(ctx, "s", "u")

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if calls.Load() != 1 {
		t.Errorf("got %d calls, want 1 (no retries after cancel)", calls.Load())
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices": []}`)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	if _, err := client.Complete(context.Background(), "s", "u"); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestBuildSelectsMock(t *testing.T) {
	cfg := llm.Config{Mock: true, Model: "base"}
	classifier, err := llm.Build(cfg, discardLogger())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, ok := classifier.(*llm.Mock); !ok {
		t.Errorf("got %T, want *llm.Mock", classifier)
	}
}
