package quantity

import "fmt"

// NormalizationError reports an element whose type tag is not recognized
// and for which no generic quantity source exists.
type NormalizationError struct {
	ElementID string
	Type      string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("element %s: unrecognized type %q with no generic quantity source", e.ElementID, e.Type)
}
