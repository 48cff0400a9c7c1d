package query

import (
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
)

// elementWords maps surface forms to element types. Forms are matched
// exactly rather than by stem so that "cover" does not mean Covering.
var elementWords = map[string]quantity.ElementType{
	"wall":         quantity.Wall,
	"walls":        quantity.Wall,
	"door":         quantity.Door,
	"doors":        quantity.Door,
	"doorway":      quantity.Door,
	"doorways":     quantity.Door,
	"window":       quantity.Window,
	"windows":      quantity.Window,
	"slab":         quantity.Slab,
	"slabs":        quantity.Slab,
	"room":         quantity.Space,
	"rooms":        quantity.Space,
	"space":        quantity.Space,
	"spaces":       quantity.Space,
	"column":       quantity.Column,
	"columns":      quantity.Column,
	"beam":         quantity.Beam,
	"beams":        quantity.Beam,
	"roof":         quantity.Roof,
	"roofs":        quantity.Roof,
	"stair":        quantity.Stair,
	"stairs":       quantity.Stair,
	"staircase":    quantity.Stair,
	"staircases":   quantity.Stair,
	"railing":      quantity.Railing,
	"railings":     quantity.Railing,
	"covering":     quantity.Covering,
	"coverings":    quantity.Covering,
	"plate":        quantity.Plate,
	"plates":       quantity.Plate,
	"member":       quantity.Member,
	"members":      quantity.Member,
	"footing":      quantity.Footing,
	"footings":     quantity.Footing,
	"curtainwall":  quantity.CurtainWall,
	"curtainwalls": quantity.CurtainWall,
}

// vocabulary is the element vocabulary for one resolution: the fixed words
// plus the type names present in the snapshot.
type vocabulary struct {
	words map[string]quantity.ElementType
}

func newVocabulary(snap *aggregate.Snapshot) *vocabulary {
	if snap == nil {
		return &vocabulary{words: elementWords}
	}
	words := make(map[string]quantity.ElementType, len(elementWords))
	for w, t := range elementWords {
		words[w] = t
	}
	for _, t := range snap.Types() {
		name := quantity.Fold(string(t))
		if _, ok := words[name]; !ok && name != "" {
			words[name] = t
			words[name+"s"] = t
		}
	}
	return &vocabulary{words: words}
}

// firstElement returns the element type mentioned earliest. Two-token forms
// such as "curtain wall" are joined before lookup.
func (v *vocabulary) firstElement(u *utterance) (quantity.ElementType, bool) {
	for i, tok := range u.tokens {
		if i+1 < len(u.tokens) {
			if t, ok := v.words[tok+u.tokens[i+1]]; ok {
				return t, true
			}
		}
		if t, ok := v.words[tok]; ok {
			return t, true
		}
	}
	return "", false
}

// Resolver classifies utterances with an ordered rule table.
type Resolver struct {
	rules []rule
}

// NewResolver creates a resolver with the default rule table.
func NewResolver() *Resolver {
	return &Resolver{rules: defaultRules()}
}

// Resolve classifies the utterance. The first matching rule wins; when none
// matches the intent is IntentUnknown. The snapshot only widens the element
// vocabulary and is never modified. Resolve is safe for concurrent use.
func (r *Resolver) Resolve(text string, snap *aggregate.Snapshot) ResolvedQuery {
	u := analyze(text)
	v := newVocabulary(snap)

	q := ResolvedQuery{
		Utterance:   text,
		Intent:      IntentUnknown,
		Params:      make(map[string]Param),
		Expressions: u.exprs,
	}
	for _, rl := range r.rules {
		if !rl.matches(u, v) {
			continue
		}
		q.Intent = rl.intent
		q.Rule = rl.name
		if rl.extract != nil {
			rl.extract(u, v, &q)
		}
		break
	}
	return q
}
