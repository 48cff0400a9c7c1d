package quantity

import "errors"

// NormalizedQuantity is the canonical quantity record of one element.
// Area is in m² and volume in m³; both are nil when Confidence is Unknown.
type NormalizedQuantity struct {
	ElementID  string      `json:"element_id"`
	Name       string      `json:"name,omitempty"`
	Type       ElementType `json:"type"`
	Area       *float64    `json:"area"`
	Volume     *float64    `json:"volume"`
	CountUnit  int         `json:"count_unit"`
	Confidence Confidence  `json:"confidence"`
	Source     string      `json:"source,omitempty"`
}

// Quantified reports whether the element carries any usable quantity.
func (q NormalizedQuantity) Quantified() bool {
	return q.Area != nil || q.Volume != nil
}

// Strategy names recorded in NormalizedQuantity.Source.
const (
	SourceAuthoritative = "authoritative"
	SourceDimensions    = "dimensions"
	SourceGeometry      = "geometry"
	SourcePropertyScan  = "property-scan"
)

// estimate is what a strategy produced for one element.
type estimate struct {
	area   *float64
	volume *float64
}

// strategy is one step of the fallback chain.
type strategy struct {
	name       string
	confidence Confidence
	// generic strategies also apply to unrecognized type tags.
	generic bool
	resolve func(rec RawElementRecord, t ElementType) estimate
}

// Normalizer resolves element quantities through an ordered strategy chain.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	strategies []strategy
}

// NewNormalizer creates a normalizer with the default chain: quantity sets,
// type-specific dimensions, parser geometry, then a property-name scan.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		strategies: []strategy{
			{name: SourceAuthoritative, confidence: Authoritative, generic: true, resolve: fromQuantitySets},
			{name: SourceDimensions, confidence: Heuristic, resolve: fromDimensions},
			{name: SourceGeometry, confidence: Heuristic, generic: true, resolve: fromGeometry},
			{name: SourcePropertyScan, confidence: Heuristic, generic: true, resolve: fromPropertyScan},
		},
	}
}

// Normalize produces the quantity record for one element. Missing data is
// never an error; an unrecognized type tag is, unless a generic strategy
// still finds a value.
func (n *Normalizer) Normalize(rec RawElementRecord) (NormalizedQuantity, error) {
	t, known := ParseElementType(rec.Type)
	q := NormalizedQuantity{
		ElementID: rec.ID,
		Name:      rec.Name,
		Type:      t,
		CountUnit: 1,
	}

	// Each field takes the first strategy that supplies it. Confidence and
	// source follow the area when there is one, else the volume.
	var volumeFrom *strategy
	for i := range n.strategies {
		s := &n.strategies[i]
		if !known && !s.generic {
			continue
		}
		est := s.resolve(rec, t)
		if q.Area == nil && est.area != nil {
			q.Area = est.area
			q.Confidence, q.Source = s.confidence, s.name
		}
		if q.Volume == nil && est.volume != nil {
			q.Volume = est.volume
			volumeFrom = s
		}
		if q.Area != nil && q.Volume != nil {
			break
		}
	}
	if q.Area == nil && volumeFrom != nil {
		q.Confidence, q.Source = volumeFrom.confidence, volumeFrom.name
	}

	if !q.Quantified() && !known {
		return NormalizedQuantity{}, &NormalizationError{ElementID: rec.ID, Type: rec.Type}
	}
	return q, nil
}

// NormalizeAll normalizes records in order, returning the quantities and
// the per-element errors for records that had to be dropped.
func (n *Normalizer) NormalizeAll(records []RawElementRecord) ([]NormalizedQuantity, []*NormalizationError) {
	out := make([]NormalizedQuantity, 0, len(records))
	var errs []*NormalizationError
	for _, rec := range records {
		q, err := n.Normalize(rec)
		var nerr *NormalizationError
		if errors.As(err, &nerr) {
			errs = append(errs, nerr)
			continue
		}
		out = append(out, q)
	}
	return out, errs
}
