// Package answer combines a resolved question with the aggregate snapshot
// into a structured payload. It never produces prose.
package answer

import (
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/query"
)

// Units reported in payloads.
const (
	UnitSquareMeter = "m²"
	UnitCubicMeter  = "m³"
	UnitCount       = "count"
)

// Parameter keys reported in Payload.Parameters.
const (
	ParamThicknessMeters = "thickness_m"
	ParamCoats           = "coats"
	ParamPlasterArea     = "plaster_area_m2"
	ParamSingleFaceArea  = "single_face_area_m2"
	ParamFaces           = "faces"
	ParamVolumeLiters    = "volume_liters"
)

// Payload is the structured answer handed to the phrasing layer.
type Payload struct {
	Intent              query.Intent                 `json:"intent"`
	Value               *float64                     `json:"value"`
	Unit                string                       `json:"unit,omitempty"`
	Confidence          quantity.Confidence          `json:"confidence"`
	ElementType         quantity.ElementType         `json:"element_type,omitempty"`
	Count               *int                         `json:"count,omitempty"`
	Material            string                       `json:"material,omitempty"`
	Breakdown           []aggregate.BreakdownEntry   `json:"breakdown,omitempty"`
	Parameters          map[string]float64           `json:"parameters,omitempty"`
	Defaulted           []string                     `json:"defaulted,omitempty"`
	Counts              map[quantity.ElementType]int `json:"counts,omitempty"`
	Model               *aggregate.ModelInfo         `json:"model,omitempty"`
	ClarificationNeeded bool                         `json:"clarification_needed"`
}

// Config holds the defaults used when a question omits a parameter.
type Config struct {
	// DefaultThicknessMM is the plaster thickness per coat.
	DefaultThicknessMM float64
	// DefaultPaintThicknessMM is the paint film thickness per coat.
	DefaultPaintThicknessMM float64
}

// DefaultConfig returns the stock defaults: 12 mm plaster, 0.1 mm paint.
func DefaultConfig() Config {
	return Config{
		DefaultThicknessMM:      12,
		DefaultPaintThicknessMM: 0.1,
	}
}

// Composer builds payloads.
type Composer struct {
	cfg Config
}

// NewComposer creates a composer. Non-positive defaults fall back to
// DefaultConfig.
func NewComposer(cfg Config) *Composer {
	def := DefaultConfig()
	if cfg.DefaultThicknessMM <= 0 {
		cfg.DefaultThicknessMM = def.DefaultThicknessMM
	}
	if cfg.DefaultPaintThicknessMM <= 0 {
		cfg.DefaultPaintThicknessMM = def.DefaultPaintThicknessMM
	}
	return &Composer{cfg: cfg}
}

// Compose computes the answer for q against snap. A nil snapshot is treated
// as a model with no elements.
func (c *Composer) Compose(q query.ResolvedQuery, snap *aggregate.Snapshot) Payload {
	if snap == nil {
		snap = aggregate.NewAggregator().Build(aggregate.ModelInfo{}, "", nil, nil)
	}
	p := Payload{
		Intent:    q.Intent,
		Defaulted: append([]string(nil), q.Defaulted...),
	}

	switch q.Intent {
	case query.IntentPlasterVolume:
		c.plasterVolume(&p, q, snap)
	case query.IntentPlasterArea:
		c.plasterArea(&p, q, snap)
	case query.IntentElementCount:
		c.elementCount(&p, q, snap)
	case query.IntentElementList:
		c.elementList(&p, q, snap)
	case query.IntentRoomArea:
		c.roomArea(&p, snap)
	case query.IntentBuildingSummary:
		c.summary(&p, snap)
	default:
		p.Intent = query.IntentUnknown
		p.Confidence = quantity.Unknown
		p.ClarificationNeeded = true
	}
	return p
}

func (c *Composer) plasterArea(p *Payload, q query.ResolvedQuery, snap *aggregate.Snapshot) {
	plaster := snap.Plastering()
	walls, _ := snap.Group(quantity.Wall)

	p.ElementType = quantity.Wall
	p.Unit = UnitSquareMeter
	p.Material = q.Material()
	p.Confidence = walls.LowestConfidence
	p.Count = intPtr(plaster.WallCount)
	p.Breakdown = walls.Breakdown
	p.Parameters = map[string]float64{
		ParamSingleFaceArea: plaster.SingleFaceArea,
		ParamFaces:          float64(plaster.Faces),
	}
	if plaster.QuantifiedWalls > 0 {
		p.Value = floatPtr(plaster.Area)
	}
}

func (c *Composer) plasterVolume(p *Payload, q query.ResolvedQuery, snap *aggregate.Snapshot) {
	c.plasterArea(p, q, snap)
	p.Unit = UnitCubicMeter

	thickness, ok := c.thicknessMeters(q)
	if !ok {
		thickness = c.defaultThicknessMM(p.Material) / 1000
		p.Defaulted = append(p.Defaulted, query.ParamThickness)
	}
	coats := 1.0
	if e, ok := q.Expr(query.ParamCoats); ok && e.Value > 0 {
		coats = e.Value
	}

	plaster := snap.Plastering()
	p.Parameters[ParamThicknessMeters] = thickness
	p.Parameters[ParamCoats] = coats
	p.Parameters[ParamPlasterArea] = plaster.Area

	if plaster.QuantifiedWalls == 0 {
		p.Value = nil
		return
	}
	volume := plaster.Area * thickness * coats
	p.Value = floatPtr(volume)
	p.Parameters[ParamVolumeLiters] = volume * 1000
}

func (c *Composer) thicknessMeters(q query.ResolvedQuery) (float64, bool) {
	e, ok := q.Expr(query.ParamThickness)
	if !ok {
		return 0, false
	}
	m, ok := e.Meters()
	if !ok || m <= 0 {
		return 0, false
	}
	return m, true
}

func (c *Composer) defaultThicknessMM(material string) float64 {
	if material == query.MaterialPaint {
		return c.cfg.DefaultPaintThicknessMM
	}
	return c.cfg.DefaultThicknessMM
}

func (c *Composer) elementCount(p *Payload, q query.ResolvedQuery, snap *aggregate.Snapshot) {
	t, ok := q.ElementType()
	if !ok {
		p.ClarificationNeeded = true
		return
	}
	n := snap.Count(t)
	p.ElementType = t
	p.Unit = UnitCount
	p.Count = intPtr(n)
	p.Value = floatPtr(float64(n))
	p.Confidence = quantity.Authoritative
}

func (c *Composer) elementList(p *Payload, q query.ResolvedQuery, snap *aggregate.Snapshot) {
	c.elementCount(p, q, snap)
	if p.ClarificationNeeded {
		return
	}
	g, _ := snap.Group(p.ElementType)
	p.Breakdown = g.Breakdown
}

func (c *Composer) roomArea(p *Payload, snap *aggregate.Snapshot) {
	spaces, _ := snap.Group(quantity.Space)
	p.ElementType = quantity.Space
	p.Unit = UnitSquareMeter
	p.Count = intPtr(spaces.Count)
	p.Confidence = spaces.LowestConfidence
	p.Breakdown = spaces.Breakdown
	if spaces.QuantifiedCount > 0 {
		p.Value = floatPtr(spaces.TotalArea)
	}
}

func (c *Composer) summary(p *Payload, snap *aggregate.Snapshot) {
	p.Counts = make(map[quantity.ElementType]int)
	for _, t := range snap.Types() {
		p.Counts[t] = snap.Count(t)
	}
	model := snap.Model()
	p.Model = &model
	p.Unit = UnitCount
	p.Value = floatPtr(float64(snap.ElementCount()))
	p.Count = intPtr(snap.ElementCount())
	p.Confidence = quantity.Authoritative
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}
