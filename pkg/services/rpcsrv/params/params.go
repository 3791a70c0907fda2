package params

import (
	"fmt"
	"strings"
)

type (
	// Params represents the JSON-RPC params.
	Params []Param
)

// Value returns the param struct for the given
// index if it exists.
func (p Params) Value(index int) *Param {
	if len(p) > index {
		return &p[index]
	}

	return nil
}

func (p Params) String() string {
	parts := make([]string, len(p))
	for i := range p {
		parts[i] = string(p[i].RawMessage)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Canonical returns the textual form of the first n parameters joined with
// colons.
func (p Params) Canonical(n int) (string, error) {
	if n > len(p) {
		return "", errMissingParameter
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		s, err := p[i].Canonical()
		if err != nil {
			return "", fmt.Errorf("parameter %d: %w", i, err)
		}
		parts[i] = s
	}
	return strings.Join(parts, ":"), nil
}
