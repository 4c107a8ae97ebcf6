// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/waybill/internal/config"
	"github.com/JaimeStill/waybill/internal/infrastructure"
	"github.com/JaimeStill/waybill/pkg/auth"
	"github.com/JaimeStill/waybill/pkg/middleware"
	"github.com/JaimeStill/waybill/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When auth is enabled every route requires a verified bearer token.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	if cfg.Auth.Enabled {
		verifier, err := auth.NewVerifier(infra.Lifecycle.Context(), &cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		m.Use(auth.Middleware(verifier, runtime.Logger))
	}

	return m, nil
}
