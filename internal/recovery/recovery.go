package recovery

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Recoverer runs a fixed set of strategies over one document.
type Recoverer struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New returns a Recoverer with the strategies enabled by cfg, in source order.
func New(cfg *Config, runner Runner, logger *slog.Logger) *Recoverer {
	strategies := make([]Strategy, 0, len(Sources))
	if !cfg.DisableEmbedded {
		strategies = append(strategies, EmbeddedStrategy{})
	}
	if !cfg.DisableLayout {
		strategies = append(strategies, NewLayoutStrategy(runner, cfg))
	}
	if !cfg.DisableOCR {
		strategies = append(strategies, NewOCRStrategy(runner, cfg, logger))
	}
	return NewWithStrategies(logger, strategies...)
}

// NewWithStrategies returns a Recoverer over the given strategies. Their
// order is the candidate order.
func NewWithStrategies(logger *slog.Logger, strategies ...Strategy) *Recoverer {
	return &Recoverer{
		strategies: strategies,
		logger:     logger.With("system", "recovery"),
	}
}

// Recover runs every strategy concurrently and waits for all of them.
// A failing or empty strategy is logged and skipped; the rest still count.
// Candidates keep strategy order. Returns ErrExtractionFailed when no
// strategy produced text.
func (r *Recoverer) Recover(ctx context.Context, doc Document) ([]Candidate, error) {
	candidates := r.run(ctx, doc, r.strategies)
	if len(candidates) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrExtractionFailed
	}
	return candidates, nil
}

// Alternates runs every strategy except exclude and returns whatever text
// they produce. Used when the winning text came from cache.
func (r *Recoverer) Alternates(ctx context.Context, doc Document, exclude Source) []Candidate {
	others := slices.DeleteFunc(slices.Clone(r.strategies), func(s Strategy) bool {
		return s.Source() == exclude
	})
	return r.run(ctx, doc, others)
}

func (r *Recoverer) run(ctx context.Context, doc Document, strategies []Strategy) []Candidate {
	slots := make([]*Candidate, len(strategies))

	var g errgroup.Group
	for i, s := range strategies {
		g.Go(func() error {
			start := time.Now()
			text, err := s.Extract(ctx, doc)
			if err != nil {
				r.logger.WarnContext(ctx, "strategy failed",
					"source", s.Source(),
					"duration", time.Since(start),
					"error", err,
				)
				return nil
			}

			text = Normalize(text)
			if strings.TrimSpace(text) == "" {
				r.logger.InfoContext(ctx, "strategy produced no text", "source", s.Source())
				return nil
			}

			r.logger.InfoContext(ctx, "strategy complete",
				"source", s.Source(),
				"chars", len(text),
				"duration", time.Since(start),
			)
			slots[i] = &Candidate{Source: s.Source(), Text: text}
			return nil
		})
	}
	g.Wait()

	candidates := make([]Candidate, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}
	return candidates
}
