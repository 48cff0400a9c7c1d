package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/answer"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/query"
)

// Exchange is one question and its answer.
type Exchange struct {
	Question string              `json:"question"`
	Query    query.ResolvedQuery `json:"query"`
	Payload  answer.Payload      `json:"payload"`
	AskedAt  time.Time           `json:"askedAt"`
}

// Session is a conversation about one loaded model. Questions are answered
// one at a time against the same snapshot.
type Session struct {
	id     string
	engine *Engine
	snap   *aggregate.Snapshot
	log    *observability.Logger

	mu      sync.Mutex
	history []Exchange
}

// NewSession starts a session over snap.
func (e *Engine) NewSession(snap *aggregate.Snapshot) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		engine: e,
		snap:   snap,
		log:    e.log.WithSession(id),
	}
}

// ID identifies the session.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the model the session answers about.
func (s *Session) Snapshot() *aggregate.Snapshot {
	return s.snap
}

// Ask answers one question and appends it to the history.
func (s *Session) Ask(question string) Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, p := s.engine.Answer(question, s.snap)
	ex := Exchange{
		Question: question,
		Query:    q,
		Payload:  p,
		AskedAt:  time.Now().UTC(),
	}
	s.history = append(s.history, ex)

	evt := s.log.Info().Str("intent", string(p.Intent)).Str("confidence", p.Confidence.String())
	if p.Value != nil {
		evt = evt.Float64("value", *p.Value).Str("unit", p.Unit)
	}
	evt.Msg("session question")

	return ex
}

// History returns the exchanges so far, oldest first.
func (s *Session) History() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exchange(nil), s.history...)
}
