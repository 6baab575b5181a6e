package nsmigrate

import (
	"fmt"
	"strings"
)

// Rule maps one namespace prefix to another.
type Rule struct {
	From string
	To   string
}

// Mapping is an ordered list of rules in path-separator form
// (for example "javax/servlet" -> "jakarta/servlet").
//
// Order is significant: when several rules match at the same position,
// the earliest rule wins.
type Mapping []Rule

// Validate reports ErrInvalidMapping if any rule has an empty source.
func (m Mapping) Validate() error {
	for i, r := range m {
		if r.From == "" {
			return fmt.Errorf("%w: rule %d has an empty source", ErrInvalidMapping, i+1)
		}
	}
	return nil
}

// Dotted returns the mapping with path separators replaced by dots
// (for example "javax.servlet" -> "jakarta.servlet").
func (m Mapping) Dotted() Mapping {
	out := make(Mapping, len(m))
	for i, r := range m {
		out[i] = Rule{
			From: strings.ReplaceAll(r.From, "/", "."),
			To:   strings.ReplaceAll(r.To, "/", "."),
		}
	}
	return out
}

// Form selects which spelling of the mapping applies.
type Form uint8

const (
	// FormPath matches names written with '/' separators.
	FormPath Form = iota
	// FormDot matches names written with '.' separators.
	FormDot
)

// String returns the human-readable name of the form.
func (f Form) String() string {
	switch f {
	case FormPath:
		return "path"
	case FormDot:
		return "dot"
	default:
		return "unknown"
	}
}
