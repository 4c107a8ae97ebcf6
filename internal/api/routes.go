package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/waybill/internal/config"
	"github.com/JaimeStill/waybill/pkg/openapi"
	"github.com/JaimeStill/waybill/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Intake.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Drafts.Handler().Routes(),
		domain.Shipments.Handler().Routes(),
		newArchiveHandler(runtime.Storage, runtime.Logger).routes(),
	}

	routes.Register(mux, groups...)

	specBytes, err := buildSpec(cfg, groups)
	if err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	routes.Describe(spec, groups...)

	return openapi.MarshalJSON(spec)
}
