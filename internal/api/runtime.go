package api

import (
	"github.com/ziggway/insight/internal/config"
	"github.com/ziggway/insight/internal/infrastructure"
	"github.com/ziggway/insight/internal/pipeline"
	"github.com/ziggway/insight/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   pipeline.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:  infra.Lifecycle,
			Logger:     infra.Logger.With("module", "api"),
			Database:   infra.Database,
			Storage:    infra.Storage,
			Classifier: infra.Classifier,
		},
		Pagination: cfg.API.Pagination,
		Pipeline: pipeline.Config{
			MaxBatchSize:   cfg.Pipeline.MaxBatchSize,
			MaxBatchBytes:  cfg.Pipeline.MaxBatchBytesSize(),
			MaxConcurrency: cfg.Pipeline.MaxConcurrency,
		},
	}
}
