package quantity

import "fmt"

// Confidence ranks how a quantity was obtained. The zero value is Unknown
// and the ordering is Unknown < Heuristic < Authoritative.
type Confidence int

const (
	Unknown Confidence = iota
	Heuristic
	Authoritative
)

func (c Confidence) String() string {
	switch c {
	case Authoritative:
		return "AUTHORITATIVE"
	case Heuristic:
		return "HEURISTIC"
	default:
		return "UNKNOWN"
	}
}

// ParseConfidence is the inverse of String.
func ParseConfidence(s string) (Confidence, error) {
	switch s {
	case "AUTHORITATIVE":
		return Authoritative, nil
	case "HEURISTIC":
		return Heuristic, nil
	case "UNKNOWN", "":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown confidence %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Confidence) UnmarshalText(text []byte) error {
	parsed, err := ParseConfidence(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Weakest returns the lowest of the given confidences, or Unknown when
// none are given.
func Weakest(cs ...Confidence) Confidence {
	if len(cs) == 0 {
		return Unknown
	}
	low := cs[0]
	for _, c := range cs[1:] {
		if c < low {
			low = c
		}
	}
	return low
}
