package api

import (
	"fmt"

	"github.com/JaimeStill/waybill/internal/config"
	"github.com/JaimeStill/waybill/internal/drafts"
	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/internal/intake"
	"github.com/JaimeStill/waybill/internal/reconcile"
	"github.com/JaimeStill/waybill/internal/recovery"
	"github.com/JaimeStill/waybill/internal/shipments"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Drafts    drafts.System
	Shipments shipments.System
	Intake    *intake.Pipeline
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	draftsSystem := drafts.New(
		drafts.NewStore(db, runtime.Pagination),
		runtime.Logger,
		runtime.Pagination,
	)

	shipmentsSystem := shipments.New(db, runtime.Logger, runtime.Pagination)

	extractor, err := extraction.New(cfg.Extraction)
	if err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}

	reconciler, err := reconcile.New(&cfg.Reconcile, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("reconciler: %w", err)
	}

	pipeline := intake.New(
		&cfg.Intake,
		recovery.New(&cfg.Recovery, runtime.Runner, runtime.Logger),
		extractor,
		reconciler,
		draftsSystem,
		intake.NewBlobCache(runtime.Storage),
		runtime.Logger,
	)

	return &Domain{
		Drafts:    draftsSystem,
		Shipments: shipmentsSystem,
		Intake:    pipeline,
	}, nil
}
