// Package service ties storage, caching, the engine and phrasing together
// for the CLI and the HTTP API.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/engine"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/ingest"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/phrasing"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/storage"
)

// ErrNoModels is returned when a model is requested before any was imported.
var ErrNoModels = errors.New("no models imported yet")

// Service answers questions about stored models.
type Service struct {
	Store   *storage.Store
	Engine  *engine.Engine
	Phraser phrasing.Phraser

	cache cache.Client
	log   *observability.Logger
}

// Answer is a composed payload plus its phrasing.
type Answer struct {
	engine.Exchange
	Text string `json:"text"`
}

// New assembles a service from already opened parts.
func New(store *storage.Store, eng *engine.Engine, phraser phrasing.Phraser, log *observability.Logger) *Service {
	if log == nil {
		log = observability.Nop()
	}
	if phraser == nil {
		phraser = phrasing.NewTemplatePhraser()
	}
	return &Service{Store: store, Engine: eng, Phraser: phraser, log: log}
}

// Open builds a service from cfg: it opens the store and the snapshot
// cache and selects the phrasing backend.
func Open(ctx context.Context, cfg *config.Config, log *observability.Logger) (*Service, error) {
	if log == nil {
		log = observability.Nop()
	}

	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client, err := cache.Open(cfg.Cache)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	phraser, err := phrasing.New(cfg.Phrasing, log.WithOperation("phrase"))
	if err != nil {
		client.Close()
		store.Close()
		return nil, fmt.Errorf("select phraser: %w", err)
	}

	eng := engine.New(cfg.Quantities,
		engine.WithLogger(log),
		engine.WithSnapshotCache(cache.NewSnapshotCache(client, cfg.Cache.TTL)),
	)

	s := New(store, eng, phraser, log)
	s.cache = client
	return s, nil
}

// Close releases the store and the cache.
func (s *Service) Close() error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if s.Store != nil {
		errs = append(errs, s.Store.Close())
	}
	return errors.Join(errs...)
}

// Import stores doc and builds its snapshot. An export imported before is
// not stored twice; existing reports whether that happened.
func (s *Service) Import(ctx context.Context, doc *ingest.Document, sourcePath string) (m *storage.Model, snap *aggregate.Snapshot, existing bool, err error) {
	fingerprint, err := doc.Fingerprint()
	if err != nil {
		return nil, nil, false, err
	}

	m, err = s.Store.Models.GetByFingerprint(ctx, fingerprint)
	switch {
	case err == nil:
		existing = true
	case errors.Is(err, storage.ErrNotFound):
		data, encErr := doc.Encode()
		if encErr != nil {
			return nil, nil, false, fmt.Errorf("encode document: %w", encErr)
		}
		m = &storage.Model{
			Name:         doc.Name,
			SourcePath:   sourcePath,
			Fingerprint:  fingerprint,
			Schema:       doc.Schema,
			ElementCount: len(doc.Elements),
			Document:     data,
		}
		if err := s.Store.Models.Create(ctx, m); err != nil {
			return nil, nil, false, fmt.Errorf("store model: %w", err)
		}
	default:
		return nil, nil, false, fmt.Errorf("look up model: %w", err)
	}

	snap, err = s.Engine.Load(ctx, doc)
	if err != nil {
		return nil, nil, false, err
	}

	s.log.WithModel(m.ID.String()).Info().
		Str("name", m.Name).
		Bool("existing", existing).
		Msg("model imported")

	return m, snap, existing, nil
}

// FindModel resolves ref as a model id, a fingerprint (or its prefix) or a
// name. An empty ref selects the most recent import.
func (s *Service) FindModel(ctx context.Context, ref string) (*storage.Model, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.Store.Models.GetByID(ctx, id)
	}

	models, err := s.Store.Models.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}

	var summary *storage.Model
	switch {
	case ref == "":
		summary = models[0]
	default:
		for _, m := range models {
			if m.Name == ref || (len(ref) >= 8 && strings.HasPrefix(m.Fingerprint, ref)) {
				summary = m
				break
			}
		}
	}
	if summary == nil {
		return nil, fmt.Errorf("model %q: %w", ref, storage.ErrNotFound)
	}

	// List omits the stored document.
	return s.Store.Models.GetByID(ctx, summary.ID)
}

// Snapshot rebuilds, or fetches from the cache, the snapshot of m.
func (s *Service) Snapshot(ctx context.Context, m *storage.Model) (*aggregate.Snapshot, error) {
	doc, err := ingest.Decode(bytes.NewReader(m.Document))
	if err != nil {
		return nil, fmt.Errorf("decode stored model %s: %w", m.ID, err)
	}
	return s.Engine.Load(ctx, doc)
}

// Ask answers question within sess, phrases the payload and records the
// exchange in the query log. Phrasing and logging failures never lose the
// payload.
func (s *Service) Ask(ctx context.Context, m *storage.Model, sess *engine.Session, question string) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	ex := sess.Ask(question)

	text, err := s.Phraser.Phrase(ctx, question, ex.Payload)
	if err != nil {
		s.log.Warn().Err(err).Msg("phrasing failed")
		text = phrasing.Render(ex.Payload)
	}

	entry := &storage.QueryLogEntry{
		ModelID:    m.ID,
		SessionID:  sess.ID(),
		Question:   question,
		Intent:     string(ex.Payload.Intent),
		Value:      ex.Payload.Value,
		Unit:       ex.Payload.Unit,
		Confidence: ex.Payload.Confidence.String(),
	}
	if err := s.Store.Queries.Create(ctx, entry); err != nil {
		s.log.WithModel(m.ID.String()).Warn().Err(err).Msg("query log write failed")
	}

	return Answer{Exchange: ex, Text: text}, nil
}

// History lists the latest answered questions about m.
func (s *Service) History(ctx context.Context, m *storage.Model, limit int) ([]*storage.QueryLogEntry, error) {
	return s.Store.Queries.ListByModel(ctx, m.ID, limit)
}
