package config

import (
	"fmt"

	"github.com/ziggway/insight/pkg/formatting"
	"github.com/ziggway/insight/pkg/llm"
)

var classifierEnv = &llm.Env{
	BaseURL:           "INSIGHT_CLASSIFIER_BASE_URL",
	APIKey:            "INSIGHT_CLASSIFIER_API_KEY",
	Model:             "INSIGHT_CLASSIFIER_MODEL",
	Temperature:       "INSIGHT_CLASSIFIER_TEMPERATURE",
	RequestTimeout:    "INSIGHT_CLASSIFIER_REQUEST_TIMEOUT",
	MaxAttempts:       "INSIGHT_CLASSIFIER_MAX_ATTEMPTS",
	InitialBackoff:    "INSIGHT_CLASSIFIER_INITIAL_BACKOFF",
	MaxBackoff:        "INSIGHT_CLASSIFIER_MAX_BACKOFF",
	RequestsPerMinute: "INSIGHT_CLASSIFIER_REQUESTS_PER_MINUTE",
	Mock:              "INSIGHT_CLASSIFIER_MOCK",
}

// PipelineConfig bounds classification batch construction and
// concurrent dispatch.
type PipelineConfig struct {
	MaxBatchSize   int    `toml:"max_batch_size"`
	MaxBatchBytes  string `toml:"max_batch_bytes"`
	MaxConcurrency int    `toml:"max_concurrency"`
}

// MaxBatchBytesSize parses MaxBatchBytes into a byte count.
func (c *PipelineConfig) MaxBatchBytesSize() int {
	size, err := formatting.ParseBytes(c.MaxBatchBytes)
	if err != nil {
		return 24 * 1024
	}
	return int(size)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	mergeInt(&c.MaxBatchSize, overlay.MaxBatchSize)
	mergeString(&c.MaxBatchBytes, overlay.MaxBatchBytes)
	mergeInt(&c.MaxConcurrency, overlay.MaxConcurrency)
}

func (c *PipelineConfig) loadDefaults() {
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 20
	}
	if c.MaxBatchBytes == "" {
		c.MaxBatchBytes = "24KB"
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 4
	}
}

func (c *PipelineConfig) loadEnv() {
	envInt(&c.MaxBatchSize, "INSIGHT_PIPELINE_MAX_BATCH_SIZE")
	envString(&c.MaxBatchBytes, "INSIGHT_PIPELINE_MAX_BATCH_BYTES")
	envInt(&c.MaxConcurrency, "INSIGHT_PIPELINE_MAX_CONCURRENCY")
}

func (c *PipelineConfig) validate() error {
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max_batch_size must be at least 1")
	}
	if _, err := formatting.ParseBytes(c.MaxBatchBytes); err != nil {
		return fmt.Errorf("invalid max_batch_bytes: %w", err)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1")
	}
	return nil
}
