package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
)

// Config holds chat-completion client parameters.
type Config struct {
	BaseURL           string  `json:"base_url"`
	APIKey            string  `json:"api_key"`
	Model             string  `json:"model"`
	Temperature       float64 `json:"temperature"`
	RequestTimeout    string  `json:"request_timeout"`
	MaxAttempts       int     `json:"max_attempts"`
	InitialBackoff    string  `json:"initial_backoff"`
	MaxBackoff        string  `json:"max_backoff"`
	RequestsPerMinute int     `json:"requests_per_minute"`
	Mock              bool    `json:"mock"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       string
	RequestTimeout    string
	MaxAttempts       string
	InitialBackoff    string
	MaxBackoff        string
	RequestsPerMinute string
	Mock              string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.InitialBackoff != "" {
		c.InitialBackoff = overlay.InitialBackoff
	}
	if overlay.MaxBackoff != "" {
		c.MaxBackoff = overlay.MaxBackoff
	}
	if overlay.RequestsPerMinute != 0 {
		c.RequestsPerMinute = overlay.RequestsPerMinute
	}
	if overlay.Mock {
		c.Mock = overlay.Mock
	}
}

// GetRequestTimeout parses the per-attempt timeout duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.RequestTimeout)
}

// GetInitialBackoff parses the starting backoff delay.
func (c *Config) GetInitialBackoff() (time.Duration, error) {
	return time.ParseDuration(c.InitialBackoff)
}

// GetMaxBackoff parses the backoff delay cap.
func (c *Config) GetMaxBackoff() (time.Duration, error) {
	return time.ParseDuration(c.MaxBackoff)
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "60s"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 4
	}
	if c.InitialBackoff == "" {
		c.InitialBackoff = "500ms"
	}
	if c.MaxBackoff == "" {
		c.MaxBackoff = "30s"
	}
	if c.RequestsPerMinute == 0 {
		c.RequestsPerMinute = 30
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Temperature = f
			}
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
	if env.MaxAttempts != "" {
		if v := os.Getenv(env.MaxAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.MaxAttempts = n
			}
		}
	}
	if env.InitialBackoff != "" {
		if v := os.Getenv(env.InitialBackoff); v != "" {
			c.InitialBackoff = v
		}
	}
	if env.MaxBackoff != "" {
		if v := os.Getenv(env.MaxBackoff); v != "" {
			c.MaxBackoff = v
		}
	}
	if env.RequestsPerMinute != "" {
		if v := os.Getenv(env.RequestsPerMinute); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.RequestsPerMinute = n
			}
		}
	}
	if env.Mock != "" {
		if v := os.Getenv(env.Mock); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Mock = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if !c.Mock && c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if _, err := c.GetRequestTimeout(); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	if _, err := c.GetInitialBackoff(); err != nil {
		return fmt.Errorf("invalid initial_backoff: %w", err)
	}
	if _, err := c.GetMaxBackoff(); err != nil {
		return fmt.Errorf("invalid max_backoff: %w", err)
	}
	return nil
}
