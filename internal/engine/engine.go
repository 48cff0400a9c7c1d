// Package engine wires the quantity pipeline: it loads element exports into
// aggregate snapshots and answers questions against them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/answer"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/ingest"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/query"
)

// Engine owns the stateless pipeline stages. It is safe for concurrent use.
type Engine struct {
	normalizer *quantity.Normalizer
	aggregator *aggregate.Aggregator
	resolver   *query.Resolver
	composer   *answer.Composer
	snapshots  *cache.SnapshotCache
	log        *observability.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSnapshotCache reuses snapshots of exports that were loaded before.
func WithSnapshotCache(c *cache.SnapshotCache) Option {
	return func(e *Engine) {
		e.snapshots = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an engine using the take-off conventions in cfg.
func New(cfg config.QuantitiesConfig, opts ...Option) *Engine {
	e := &Engine{
		normalizer: quantity.NewNormalizer(),
		aggregator: aggregate.NewAggregator(aggregate.WithPlasteringFaces(cfg.PlasteringFaces)),
		resolver:   query.NewResolver(),
		composer: answer.NewComposer(answer.Config{
			DefaultThicknessMM:      cfg.DefaultThicknessMM,
			DefaultPaintThicknessMM: cfg.DefaultPaintThicknessMM,
		}),
		log: observability.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load normalizes and aggregates doc. Elements that cannot be normalized are
// logged and listed in the snapshot's dropped elements. Cache failures only
// cost a rebuild.
func (e *Engine) Load(ctx context.Context, doc *ingest.Document) (*aggregate.Snapshot, error) {
	log := e.log.WithOperation("load")
	start := time.Now()

	fingerprint, err := doc.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint model: %w", err)
	}

	if e.snapshots != nil {
		snap, err := e.snapshots.Get(ctx, fingerprint, e.aggregator.Faces())
		switch {
		case err == nil:
			log.Debug().Str("fingerprint", fingerprint).Msg("snapshot cache hit")
			return snap, nil
		case errors.Is(err, cache.ErrCacheMiss):
			log.Debug().Str("fingerprint", fingerprint).Msg("snapshot cache miss")
		default:
			log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("snapshot cache read failed")
		}
	}

	quantities, failures := e.normalizer.NormalizeAll(doc.Elements)
	dropped := make([]aggregate.Dropped, 0, len(failures))
	for _, f := range failures {
		log.Warn().
			Str("element_id", f.ElementID).
			Str("type", f.Type).
			Msg("dropping element without usable quantities")
		dropped = append(dropped, aggregate.Dropped{ElementID: f.ElementID, Type: f.Type})
	}

	snap := e.aggregator.Build(doc.Info(), fingerprint, quantities, dropped)

	if e.snapshots != nil {
		if err := e.snapshots.Put(ctx, snap); err != nil {
			log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("snapshot cache write failed")
		}
	}

	log.Info().
		Str("snapshot_id", snap.ID().String()).
		Str("model", doc.Name).
		Int("elements", len(doc.Elements)).
		Int("dropped", len(dropped)).
		Dur("took", time.Since(start)).
		Msg("model loaded")

	return snap, nil
}

// Resolve classifies a question against snap.
func (e *Engine) Resolve(question string, snap *aggregate.Snapshot) query.ResolvedQuery {
	return e.resolver.Resolve(question, snap)
}

// Answer resolves question and composes its payload.
func (e *Engine) Answer(question string, snap *aggregate.Snapshot) (query.ResolvedQuery, answer.Payload) {
	q := e.resolver.Resolve(question, snap)
	p := e.composer.Compose(q, snap)
	e.log.Debug().
		Str("intent", string(q.Intent)).
		Str("rule", q.Rule).
		Bool("clarification_needed", p.ClarificationNeeded).
		Strs("defaulted", p.Defaulted).
		Msg("question answered")
	return q, p
}
