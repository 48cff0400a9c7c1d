package query

import (
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/units"
)

// rule is one entry of the ordered dispatch table. It matches when every
// keyword group has at least one keyword in the utterance and the optional
// predicate holds. extract attaches the parameters the intent expects.
type rule struct {
	name    string
	intent  Intent
	groups  [][]keyword
	when    func(u *utterance, v *vocabulary) bool
	extract func(u *utterance, v *vocabulary, q *ResolvedQuery)
}

func (r rule) matches(u *utterance, v *vocabulary) bool {
	for _, group := range r.groups {
		if !u.hasAny(group) {
			return false
		}
	}
	return r.when == nil || r.when(u, v)
}

var (
	finishWords  = keywords("plaster", "plastering", "paint", "painting", "render", "rendering", "skim coat")
	paintWords   = keywords("paint", "painting", "painted", "emulsion")
	volumeWords  = keywords("volume", "m3", "m³", "cubic", "litre", "litres", "liter", "liters", "how much material", "quantity of material")
	wallArea     = keywords("wall area", "wall surface", "wall surfaces", "surface area of the walls")
	roomWords    = keywords("room", "rooms", "space", "spaces", "floor area", "floor")
	areaWords    = keywords("area", "m2", "m²", "sqm", "square", "size", "how big")
	countWords   = keywords("how many", "count", "number of", "total number", "quantity of")
	listWords    = keywords("list", "show", "names", "name", "which", "what are", "enumerate")
	summaryWords = keywords("summary", "summarize", "summarise", "statistics", "stats", "overview", "building info", "building information", "what is in the model", "describe the building")
)

// defaultRules returns the rule table in priority order. Multi-keyword
// rules come before the broader rules they refine.
func defaultRules() []rule {
	return []rule{
		{
			name:    "plaster-volume",
			intent:  IntentPlasterVolume,
			groups:  [][]keyword{finishWords, volumeWords},
			extract: finishParams,
		},
		{
			name:    "plaster-volume-by-thickness",
			intent:  IntentPlasterVolume,
			groups:  [][]keyword{finishWords},
			when:    func(u *utterance, _ *vocabulary) bool { _, ok := u.thicknessExpr(); return ok },
			extract: finishParams,
		},
		{
			name:    "plaster-area",
			intent:  IntentPlasterArea,
			groups:  [][]keyword{finishWords},
			extract: finishParams,
		},
		{
			name:    "wall-area",
			intent:  IntentPlasterArea,
			groups:  [][]keyword{wallArea},
			extract: finishParams,
		},
		{
			name:   "room-area",
			intent: IntentRoomArea,
			groups: [][]keyword{roomWords, areaWords},
			when: func(u *utterance, v *vocabulary) bool {
				t, ok := v.firstElement(u)
				return !ok || t == quantity.Space
			},
			extract: func(_ *utterance, _ *vocabulary, q *ResolvedQuery) {
				q.Params[ParamElementType] = elementParam(quantity.Space)
			},
		},
		{
			name:    "element-count",
			intent:  IntentElementCount,
			groups:  [][]keyword{countWords},
			when:    hasElement,
			extract: elementParams,
		},
		{
			name:    "element-list",
			intent:  IntentElementList,
			groups:  [][]keyword{listWords},
			when:    hasElement,
			extract: elementParams,
		},
		{
			name:   "building-summary",
			intent: IntentBuildingSummary,
			groups: [][]keyword{summaryWords},
		},
	}
}

func hasElement(u *utterance, v *vocabulary) bool {
	_, ok := v.firstElement(u)
	return ok
}

func elementParams(u *utterance, v *vocabulary, q *ResolvedQuery) {
	if t, ok := v.firstElement(u); ok {
		q.Params[ParamElementType] = elementParam(t)
	}
}

// finishParams extracts thickness, coat count and material. Coats default
// to one; a missing thickness is left for the composer to default.
func finishParams(u *utterance, _ *vocabulary, q *ResolvedQuery) {
	if e, ok := u.thicknessExpr(); ok {
		q.Params[ParamThickness] = exprParam(e)
	}
	if e, ok := u.firstExpr(isCoatCount); ok && e.Value > 0 {
		q.Params[ParamCoats] = exprParam(e)
	} else {
		q.Params[ParamCoats] = exprParam(units.ParsedExpression{Value: 1, Unit: units.CoatCount, Text: "1 coat"})
		q.Defaulted = append(q.Defaulted, ParamCoats)
	}

	material := MaterialPlaster
	if u.hasAny(paintWords) {
		material = MaterialPaint
	}
	q.Params[ParamMaterial] = textParam(material)
}
