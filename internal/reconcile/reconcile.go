// Package reconcile refines a deterministic extraction with an external
// structured-extraction service. The deterministic record stays the base:
// returned values only fill or replace fields when they carry content.
package reconcile

import (
	"context"
	"errors"

	"github.com/JaimeStill/waybill/internal/extraction"
)

// ErrUnavailable indicates reconciliation is disabled or the service could
// not be reached. Callers keep the deterministic record.
var ErrUnavailable = errors.New("reconciliation unavailable")

// Request carries the winning text, the non-winning alternates and the
// deterministic record used as the seed.
type Request struct {
	Primary    string
	Alternates []string
	Seed       extraction.Record
}

// Reconciler requests a field patch for a document.
type Reconciler interface {
	Reconcile(ctx context.Context, req Request) (*Patch, error)
}

// Disabled is the Reconciler used when no service is configured.
type Disabled struct{}

func (Disabled) Reconcile(context.Context, Request) (*Patch, error) {
	return nil, ErrUnavailable
}
