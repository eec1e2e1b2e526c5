// Package llm provides a chat-completion client for OpenAI-compatible
// services, with rate limiting, per-attempt timeouts, and retry with
// exponential backoff for transient failures.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Classifier produces a completion from a system and user prompt.
type Classifier interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}

// Client calls the chat completions endpoint of an OpenAI-compatible
// service.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	retrier *retrier
	timeout time.Duration
	logger  *slog.Logger
}

// New builds a Client from a finalized Config.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid request_timeout: %w", err)
	}
	initial, err := cfg.GetInitialBackoff()
	if err != nil {
		return nil, fmt.Errorf("invalid initial_backoff: %w", err)
	}
	max, err := cfg.GetMaxBackoff()
	if err != nil {
		return nil, fmt.Errorf("invalid max_backoff: %w", err)
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		retrier: newRetrier(cfg.MaxAttempts, initial, max),
		timeout: timeout,
		logger:  logger.With("system", "llm"),
	}, nil
}

// Build returns the configured Classifier: the live client, or the
// lexicon mock when cfg.Mock is set.
func Build(cfg Config, logger *slog.Logger) (Classifier, error) {
	if cfg.Mock {
		return NewMock(cfg.Model), nil
	}
	return New(cfg, logger)
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt pair and returns the raw completion text.
// Transient upstream failures are retried per the client configuration;
// fatal rejections return immediately. Cancelling ctx stops further
// attempts but lets an attempt already in flight finish or time out.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", ErrFatal, err)
	}

	var content string
	err = c.retrier.do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var attemptErr error
		content, attemptErr = c.attempt(ctx, payload)
		if attemptErr != nil {
			c.logger.Warn("completion attempt failed", "error", attemptErr)
		}
		return attemptErr
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) attempt(ctx context.Context, payload []byte) (string, error) {
	// Detached from caller cancellation: an attempt already on the wire
	// runs to completion or hits the per-attempt timeout. The limiter
	// wait and retry sleeps still honor the caller's context, so
	// cancellation stops new attempts without losing in-flight ones.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrFatal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		statusErr := &StatusError{
			Status:     res.StatusCode,
			Detail:     errorDetail(body),
			RetryAfter: parseRetryAfter(res.Header.Get("Retry-After")),
		}
		if statusErr.Transient() {
			return "", statusErr
		}
		return "", fmt.Errorf("%w: %w", ErrFatal, statusErr)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return parsed.Choices[0].Message.Content, nil
}

// errorDetail pulls the service error message out of a failure body,
// falling back to the raw body truncated to a sane length.
func errorDetail(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > 256 {
		detail = detail[:256]
	}
	return detail
}

func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	if n, err := strconv.Atoi(header); err == nil && n > 0 {
		return n
	}
	return 0
}
