package api

import (
	"github.com/ziggway/insight/internal/classifications"
	"github.com/ziggway/insight/internal/datasets"
	"github.com/ziggway/insight/internal/prompts"
	"github.com/ziggway/insight/internal/reviews"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Classifications classifications.System
	Datasets        datasets.System
	Reviews         reviews.System
	Prompts         prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	reviewsSystem := reviews.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	datasetsSystem := datasets.New(
		runtime.Database.Connection(),
		runtime.Storage,
		reviewsSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	classificationsSystem := classifications.New(
		runtime.Database.Connection(),
		runtime.Classifier,
		runtime.Pipeline,
		runtime.Logger,
		runtime.Pagination,
		reviewsSystem,
		promptsSystem,
	)

	return &Domain{
		Classifications: classificationsSystem,
		Datasets:        datasetsSystem,
		Reviews:         reviewsSystem,
		Prompts:         promptsSystem,
	}
}
