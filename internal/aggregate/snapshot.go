package aggregate

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
)

// ModelInfo describes the building model a snapshot was built from.
type ModelInfo struct {
	Name     string `json:"name,omitempty"`
	Schema   string `json:"schema,omitempty"`
	Project  string `json:"project,omitempty"`
	Building string `json:"building,omitempty"`
	Site     string `json:"site,omitempty"`
}

// Dropped identifies an element left out because it could not be normalized.
type Dropped struct {
	ElementID string `json:"element_id"`
	Type      string `json:"type"`
}

// Snapshot is the read-only aggregate state of one loaded model. It is built
// once and never changes, so any number of goroutines may read it.
type Snapshot struct {
	id          uuid.UUID
	fingerprint string
	model       ModelInfo
	builtAt     time.Time
	groups      map[quantity.ElementType]Result
	plastering  Plastering
	dropped     []Dropped
}

// Build aggregates qs into a new snapshot.
func (a *Aggregator) Build(model ModelInfo, fingerprint string, qs []quantity.NormalizedQuantity, dropped []Dropped) *Snapshot {
	return &Snapshot{
		id:          uuid.New(),
		fingerprint: fingerprint,
		model:       model,
		builtAt:     time.Now().UTC(),
		groups:      a.Aggregate(qs),
		plastering:  a.Plastering(qs),
		dropped:     append([]Dropped(nil), dropped...),
	}
}

// ID identifies this build of the snapshot.
func (s *Snapshot) ID() uuid.UUID {
	return s.id
}

// Fingerprint is the digest of the element records the snapshot was built from.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

func (s *Snapshot) Model() ModelInfo {
	return s.model
}

func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Plastering returns the derived wall plaster aggregate.
func (s *Snapshot) Plastering() Plastering {
	return s.plastering
}

// Group returns a copy of the rollup for t. Absent types report false and
// an empty result with Unknown confidence.
func (s *Snapshot) Group(t quantity.ElementType) (Result, bool) {
	r, ok := s.groups[t]
	if !ok {
		return Result{Type: t, LowestConfidence: quantity.Unknown}, false
	}
	return r.clone(), true
}

// Count returns the number of elements of type t, zero when absent.
func (s *Snapshot) Count(t quantity.ElementType) int {
	return s.groups[t].Count
}

// Types lists the element types present, sorted by name.
func (s *Snapshot) Types() []quantity.ElementType {
	types := make([]quantity.ElementType, 0, len(s.groups))
	for t := range s.groups {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Groups returns a copy of every rollup.
func (s *Snapshot) Groups() map[quantity.ElementType]Result {
	out := make(map[quantity.ElementType]Result, len(s.groups))
	for t, r := range s.groups {
		out[t] = r.clone()
	}
	return out
}

// ElementCount is the number of aggregated elements across all types.
func (s *Snapshot) ElementCount() int {
	total := 0
	for _, r := range s.groups {
		total += r.Count
	}
	return total
}

// Dropped returns the elements excluded during normalization.
func (s *Snapshot) Dropped() []Dropped {
	return append([]Dropped(nil), s.dropped...)
}

// snapshotDTO is the serialized form used by the snapshot cache.
type snapshotDTO struct {
	ID          uuid.UUID                       `json:"id"`
	Fingerprint string                          `json:"fingerprint"`
	Model       ModelInfo                       `json:"model"`
	BuiltAt     time.Time                       `json:"built_at"`
	Groups      map[quantity.ElementType]Result `json:"groups"`
	Plastering  Plastering                      `json:"plastering"`
	Dropped     []Dropped                       `json:"dropped,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotDTO{
		ID:          s.id,
		Fingerprint: s.fingerprint,
		Model:       s.model,
		BuiltAt:     s.builtAt,
		Groups:      s.groups,
		Plastering:  s.plastering,
		Dropped:     s.dropped,
	})
}

// DecodeSnapshot restores a snapshot written by MarshalJSON.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var dto snapshotDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if dto.ID == uuid.Nil {
		return nil, fmt.Errorf("decode snapshot: missing id")
	}
	if dto.Groups == nil {
		dto.Groups = make(map[quantity.ElementType]Result)
	}
	return &Snapshot{
		id:          dto.ID,
		fingerprint: dto.Fingerprint,
		model:       dto.Model,
		builtAt:     dto.BuiltAt,
		groups:      dto.Groups,
		plastering:  dto.Plastering,
		dropped:     dto.Dropped,
	}, nil
}
