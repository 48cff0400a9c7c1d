package query

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/units"
)

// utterance is a question broken into folded tokens and their stems.
type utterance struct {
	raw    string
	tokens []string
	stems  []string
	// phrase and stemPhrase are the token and stem lists joined by single
	// spaces and padded on both ends, for multi-word keyword matching.
	phrase     string
	stemPhrase string
	exprs      []units.ParsedExpression
}

func analyze(raw string) *utterance {
	tokens := strings.FieldsFunc(quantity.Fold(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = stem(tok)
	}
	return &utterance{
		raw:        raw,
		tokens:     tokens,
		stems:      stems,
		phrase:     " " + strings.Join(tokens, " ") + " ",
		stemPhrase: " " + strings.Join(stems, " ") + " ",
		exprs:      units.Parse(raw),
	}
}

// stem reduces an English word with the Snowball stemmer, returning the
// word unchanged when it cannot be stemmed.
func stem(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

// keyword is a pre-analyzed single word or phrase.
type keyword struct {
	text string
	stem string
	// multi marks phrases that must match as a run of whole tokens.
	multi bool
}

func newKeyword(text string) keyword {
	words := strings.Fields(quantity.Fold(text))
	stems := make([]string, len(words))
	for i, w := range words {
		stems[i] = stem(w)
	}
	return keyword{
		text:  strings.Join(words, " "),
		stem:  strings.Join(stems, " "),
		multi: len(words) > 1,
	}
}

func keywords(texts ...string) []keyword {
	out := make([]keyword, len(texts))
	for i, t := range texts {
		out[i] = newKeyword(t)
	}
	return out
}

// has reports whether the keyword occurs as a token or token run, comparing
// either surface forms or stems.
func (u *utterance) has(k keyword) bool {
	if k.multi {
		return strings.Contains(u.phrase, " "+k.text+" ") ||
			strings.Contains(u.stemPhrase, " "+k.stem+" ")
	}
	for i, tok := range u.tokens {
		if tok == k.text || u.stems[i] == k.stem {
			return true
		}
	}
	return false
}

func (u *utterance) hasAny(ks []keyword) bool {
	for _, k := range ks {
		if u.has(k) {
			return true
		}
	}
	return false
}

// firstExpr returns the first parsed expression accepted by keep.
func (u *utterance) firstExpr(keep func(units.ParsedExpression) bool) (units.ParsedExpression, bool) {
	for _, e := range u.exprs {
		if keep(e) {
			return e, true
		}
	}
	return units.ParsedExpression{}, false
}

// thicknessExpr returns the finish thickness: the first mm or cm length, or
// any length when a coat count is given as well.
func (u *utterance) thicknessExpr() (units.ParsedExpression, bool) {
	if e, ok := u.firstExpr(isLayerLength); ok {
		return e, true
	}
	if _, ok := u.firstExpr(isCoatCount); ok {
		return u.firstExpr(isLength)
	}
	return units.ParsedExpression{}, false
}

func isLength(e units.ParsedExpression) bool {
	return e.Unit.IsLength()
}

func isLayerLength(e units.ParsedExpression) bool {
	return e.Unit == units.Millimeter || e.Unit == units.Centimeter
}

func isCoatCount(e units.ParsedExpression) bool {
	return e.Unit == units.CoatCount
}
