package api

import (
	"net/http"

	"github.com/ziggway/insight/internal/config"
	"github.com/ziggway/insight/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Datasets.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Reviews.Handler().Routes(),
		domain.Classifications.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
	)
}
