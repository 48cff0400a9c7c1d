// Package aggregate rolls normalized element quantities up per element
// type and derives the plastering quantity over walls.
package aggregate

import (
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
)

// DefaultPlasteringFaces counts both faces of every wall.
const DefaultPlasteringFaces = 2

// BreakdownEntry is one element's contribution to a group.
type BreakdownEntry struct {
	ElementID  string              `json:"element_id"`
	Label      string              `json:"label"`
	Area       *float64            `json:"area"`
	Volume     *float64            `json:"volume"`
	Confidence quantity.Confidence `json:"confidence"`
}

// Result is the rollup of one element type. Count includes every member;
// QuantifiedCount excludes members with no usable quantity, which add zero
// to the totals.
type Result struct {
	Type             quantity.ElementType `json:"type"`
	Count            int                  `json:"count"`
	QuantifiedCount  int                  `json:"quantified_count"`
	TotalArea        float64              `json:"total_area"`
	TotalVolume      float64              `json:"total_volume"`
	Breakdown        []BreakdownEntry     `json:"breakdown"`
	LowestConfidence quantity.Confidence  `json:"lowest_confidence"`
}

func (r Result) clone() Result {
	r.Breakdown = append([]BreakdownEntry(nil), r.Breakdown...)
	return r
}

// Plastering is the wall finish area derived from wall side areas.
type Plastering struct {
	WallCount        int                 `json:"wall_count"`
	QuantifiedWalls  int                 `json:"quantified_walls"`
	SingleFaceArea   float64             `json:"single_face_area"`
	Faces            int                 `json:"faces"`
	Area             float64             `json:"area"`
	LowestConfidence quantity.Confidence `json:"lowest_confidence"`
}

// Aggregator builds rollups. It is stateless apart from its options.
type Aggregator struct {
	faces int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPlasteringFaces sets how many wall faces receive plaster.
func WithPlasteringFaces(faces int) Option {
	return func(a *Aggregator) {
		if faces > 0 {
			a.faces = faces
		}
	}
}

// NewAggregator creates an aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{faces: DefaultPlasteringFaces}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Faces reports how many wall faces the plastering aggregate counts.
func (a *Aggregator) Faces() int {
	return a.faces
}

// Aggregate groups quantities by type. Breakdown entries keep input order.
// An empty input yields an empty map.
func (a *Aggregator) Aggregate(qs []quantity.NormalizedQuantity) map[quantity.ElementType]Result {
	groups := make(map[quantity.ElementType]Result)
	for _, q := range qs {
		r, ok := groups[q.Type]
		if !ok {
			r = Result{Type: q.Type, LowestConfidence: quantity.Authoritative}
		}
		r.Count++
		if q.Quantified() {
			r.QuantifiedCount++
		}
		if q.Area != nil {
			r.TotalArea += *q.Area
		}
		if q.Volume != nil {
			r.TotalVolume += *q.Volume
		}
		r.LowestConfidence = quantity.Weakest(r.LowestConfidence, q.Confidence)
		r.Breakdown = append(r.Breakdown, BreakdownEntry{
			ElementID:  q.ElementID,
			Label:      label(q),
			Area:       q.Area,
			Volume:     q.Volume,
			Confidence: q.Confidence,
		})
		groups[q.Type] = r
	}
	return groups
}

// Plastering derives the plaster area from every Wall quantity.
func (a *Aggregator) Plastering(qs []quantity.NormalizedQuantity) Plastering {
	p := Plastering{Faces: a.faces}
	var confidences []quantity.Confidence
	for _, q := range qs {
		if q.Type != quantity.Wall {
			continue
		}
		p.WallCount++
		confidences = append(confidences, q.Confidence)
		if q.Area == nil {
			continue
		}
		p.QuantifiedWalls++
		p.SingleFaceArea += *q.Area
	}
	p.Area = p.SingleFaceArea * float64(p.Faces)
	p.LowestConfidence = quantity.Weakest(confidences...)
	return p
}

func label(q quantity.NormalizedQuantity) string {
	if q.Name != "" {
		return q.Name
	}
	return q.ElementID
}
