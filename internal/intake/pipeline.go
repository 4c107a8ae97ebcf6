// Package intake runs an uploaded shipment PDF through text recovery,
// field extraction, confidence scoring and optional reconciliation, and
// stores the result as a review draft.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/waybill/internal/confidence"
	"github.com/JaimeStill/waybill/internal/drafts"
	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/internal/reconcile"
	"github.com/JaimeStill/waybill/internal/recovery"
)

// DraftStore opens or refreshes the draft of a document.
type DraftStore interface {
	Create(ctx context.Context, fingerprint string, rec extraction.Record) (*drafts.Draft, error)
}

// Result is the response to a processed upload. The record fields are
// flattened into the top level beside the draft metadata; confidence and
// warnings are the record's own.
type Result struct {
	extraction.Record

	DraftID     uuid.UUID       `json:"draft_id"`
	VersionNo   int             `json:"version_no"`
	Status      drafts.Status   `json:"status"`
	Fingerprint string          `json:"fingerprint"`
	Source      recovery.Source `json:"source"`
	PageCount   *int            `json:"page_count"`
	Cached      bool            `json:"cached"`
	Reconciled  bool            `json:"reconciled"`
}

// Pipeline processes uploaded documents.
type Pipeline struct {
	cfg        *Config
	recoverer  *recovery.Recoverer
	extractor  *extraction.Extractor
	reconciler reconcile.Reconciler
	drafts     DraftStore
	cache      Cache
	logger     *slog.Logger
}

// New creates a Pipeline. A nil cache disables caching and archiving.
func New(
	cfg *Config,
	recoverer *recovery.Recoverer,
	extractor *extraction.Extractor,
	reconciler reconcile.Reconciler,
	drafts DraftStore,
	cache Cache,
	logger *slog.Logger,
) *Pipeline {
	if cache == nil || cfg.DisableCache {
		cache = NoCache{}
	}
	if reconciler == nil {
		reconciler = reconcile.Disabled{}
	}
	return &Pipeline{
		cfg:        cfg,
		recoverer:  recoverer,
		extractor:  extractor,
		reconciler: reconciler,
		drafts:     drafts,
		cache:      cache,
		logger:     logger.With("system", "intake"),
	}
}

// Handler returns the upload HTTP handler.
func (p *Pipeline) Handler(maxUploadSize int64) *Handler {
	return NewHandler(p, p.logger, maxUploadSize)
}

func (p *Pipeline) reconciles() bool {
	_, disabled := p.reconciler.(reconcile.Disabled)
	return !disabled
}

// Execute processes one document end to end. The whole run is bounded by
// the configured timeout and all temporary files live in a workspace that
// is removed before Execute returns.
func (p *Pipeline) Execute(ctx context.Context, data []byte) (*Result, error) {
	if err := Check(data); err != nil {
		return nil, err
	}

	start := time.Now()
	fp := Fingerprint(data)
	logger := p.logger.With("fingerprint", fp)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.TimeoutDuration())
	defer cancel()

	workspace, err := os.MkdirTemp(p.cfg.WorkspaceDir, "waybill-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	doc := recovery.Document{
		Data:      data,
		Path:      filepath.Join(workspace, "document.pdf"),
		Workspace: workspace,
	}
	if err := os.WriteFile(doc.Path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write workspace document: %w", err)
	}

	if err := p.cache.Archive(ctx, fp, data); err != nil {
		logger.WarnContext(ctx, "document archive failed", "error", err)
	}

	result := &Result{Fingerprint: fp}

	var (
		winner     recovery.Candidate
		alternates []recovery.Candidate
		rec        extraction.Record
	)

	entry, err := p.cache.Get(ctx, fp)
	if err != nil {
		logger.WarnContext(ctx, "cache read failed", "error", err)
	}

	if entry != nil {
		logger.InfoContext(ctx, "cache hit", "source", entry.Source)
		winner = recovery.Candidate{Source: entry.Source, Text: entry.Text}
		rec = entry.Record
		result.PageCount = entry.PageCount
		result.Cached = true
	} else {
		pages, err := PageCount(data)
		if err != nil {
			logger.WarnContext(ctx, "page count unavailable", "error", err)
		}
		result.PageCount = pages

		candidates, err := p.recoverer.Recover(ctx, doc)
		if err != nil {
			return nil, p.deadline(ctx, err)
		}

		best, score, _ := recovery.Select(candidates)
		logger.InfoContext(ctx, "text source selected",
			"source", best.Source,
			"score", score,
			"candidates", len(candidates),
		)

		winner = best
		for _, c := range candidates {
			if c.Source != best.Source {
				alternates = append(alternates, c)
			}
		}

		rec = p.extractor.Extract(best.Text)
		confidence.Apply(&rec)

		if err := p.cache.Put(ctx, fp, &Entry{
			Source:    best.Source,
			Text:      best.Text,
			Record:    rec,
			PageCount: pages,
		}); err != nil {
			logger.WarnContext(ctx, "cache write failed", "error", err)
		}
	}

	if p.reconciles() {
		if result.Cached {
			alternates = p.recoverer.Alternates(ctx, doc, winner.Source)
		}
		rec, result.Reconciled = p.reconcile(ctx, logger, winner, alternates, rec)
	}

	if err := ctx.Err(); err != nil {
		return nil, p.deadline(ctx, err)
	}

	d, err := p.drafts.Create(ctx, fp, rec)
	if err != nil {
		return nil, p.deadline(ctx, err)
	}

	result.Record = d.Data
	result.DraftID = d.ID
	result.VersionNo = d.VersionNo
	result.Status = d.Status
	result.Source = winner.Source

	logger.InfoContext(ctx, "document processed",
		"draft_id", d.ID,
		"version_no", d.VersionNo,
		"confidence", result.Confidence,
		"cached", result.Cached,
		"reconciled", result.Reconciled,
		"duration", time.Since(start),
	)

	return result, nil
}

// reconcile asks the reconciler for a patch and merges it over rec. Every
// failure is logged and the deterministic record is kept.
func (p *Pipeline) reconcile(
	ctx context.Context,
	logger *slog.Logger,
	winner recovery.Candidate,
	alternates []recovery.Candidate,
	rec extraction.Record,
) (extraction.Record, bool) {
	texts := make([]string, len(alternates))
	for i, c := range alternates {
		texts[i] = c.Text
	}

	patch, err := p.reconciler.Reconcile(ctx, reconcile.Request{
		Primary:    winner.Text,
		Alternates: texts,
		Seed:       rec,
	})
	if err != nil {
		logger.WarnContext(ctx, "reconciliation skipped", "error", err)
		return rec, false
	}

	merged := reconcile.Merge(rec, patch)
	confidence.Apply(&merged)
	return merged, true
}

func (p *Pipeline) deadline(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
