package main

import (
	"net/http"

	"github.com/JaimeStill/waybill/internal/api"
	"github.com/JaimeStill/waybill/internal/config"
	"github.com/JaimeStill/waybill/internal/infrastructure"
	"github.com/JaimeStill/waybill/pkg/handlers"
	"github.com/JaimeStill/waybill/pkg/lifecycle"
	"github.com/JaimeStill/waybill/pkg/module"
)

// Modules holds the prefixed HTTP modules mounted on the root router.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter creates the root router with the liveness and readiness probes.
// Readiness stays false until every lifecycle startup hook, including the
// database ping and storage container check, has succeeded.
func buildRouter(readiness lifecycle.ReadinessChecker, version string) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !readiness.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}
