// Package normalize turns raw, inconsistently shaped business-API payloads
// into canonical display records. The business API changes field layout
// between endpoints, versions and partial-data states, so every canonical
// field is resolved through an ordered candidate chain: the first rule that
// yields a usable value wins, and an exhausted chain falls back to a
// caller-declared default. Nothing in this package returns an error for a
// shape problem and nothing panics on malformed input.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// StringCandidate is one extraction rule in a string chain. It returns the
// empty string when the rule does not apply to the record.
type StringCandidate func(record map[string]any) string

// StringChain is an ordered list of extraction rules with a terminal
// default. Order is significant and preserved exactly per field kind.
type StringChain struct {
	candidates []StringCandidate
	fallback   string
}

// NewStringChain builds a chain. The fallback is returned when every
// candidate comes up empty.
func NewStringChain(fallback string, candidates ...StringCandidate) StringChain {
	return StringChain{candidates: candidates, fallback: fallback}
}

// Resolve walks the chain in declaration order.
func (c StringChain) Resolve(record map[string]any) string {
	for _, candidate := range c.candidates {
		if v := strings.TrimSpace(candidate(record)); v != "" {
			return v
		}
	}
	return c.fallback
}

// NumberCandidate is one extraction rule in a numeric chain.
type NumberCandidate func(record map[string]any) (float64, bool)

// NumberChain resolves money and count fields. The result is always a usable
// number: an exhausted chain yields zero so downstream aggregation never
// needs null checks.
type NumberChain struct {
	candidates []NumberCandidate
}

func NewNumberChain(candidates ...NumberCandidate) NumberChain {
	return NumberChain{candidates: candidates}
}

func (c NumberChain) Resolve(record map[string]any) float64 {
	for _, candidate := range c.candidates {
		if v, ok := candidate(record); ok {
			return v
		}
	}
	return 0
}

// DateCandidate is one extraction rule in a date chain.
type DateCandidate func(record map[string]any) (time.Time, bool)

// DateChain resolves the first candidate that parses to a valid date.
type DateChain struct {
	candidates []DateCandidate
}

func NewDateChain(candidates ...DateCandidate) DateChain {
	return DateChain{candidates: candidates}
}

func (c DateChain) Resolve(record map[string]any) (time.Time, bool) {
	for _, candidate := range c.candidates {
		if t, ok := candidate(record); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// lookup walks a dotted access path through nested objects. Any non-object
// encountered mid-path ends the walk.
func lookup(record map[string]any, path ...string) (any, bool) {
	var current any = record
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Path yields the string value at the given access path. Non-string values
// do not match; numeric display fields go through number chains instead.
func Path(path ...string) StringCandidate {
	return func(record map[string]any) string {
		v, ok := lookup(record, path...)
		if !ok {
			return ""
		}
		s, _ := v.(string)
		return s
	}
}

// FirstPath tries several alternative access paths under one chain slot.
// Used for flat legacy spellings (cliente_nombre vs nombre_cliente) that
// rank equally.
func FirstPath(paths ...[]string) StringCandidate {
	return func(record map[string]any) string {
		for _, p := range paths {
			if v, ok := lookup(record, p...); ok {
				if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
					return s
				}
			}
		}
		return ""
	}
}

// Compose concatenates the string values at each path with a separator,
// applying only when every part is present and non-empty. This is the
// "nombre + apellido" composition rule.
func Compose(separator string, paths ...[]string) StringCandidate {
	return func(record map[string]any) string {
		parts := make([]string, 0, len(paths))
		for _, p := range paths {
			v, ok := lookup(record, p...)
			if !ok {
				return ""
			}
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return ""
			}
			parts = append(parts, strings.TrimSpace(s))
		}
		return strings.Join(parts, separator)
	}
}

// NumberPath yields the numeric value at the given access path, coercing the
// shapes JSON decoding and sloppy backends produce. NaN never matches.
func NumberPath(path ...string) NumberCandidate {
	return func(record map[string]any) (float64, bool) {
		v, ok := lookup(record, path...)
		if !ok {
			return 0, false
		}
		return coerceNumber(v)
	}
}

// DatePath yields the parsed date at the given access path.
func DatePath(path ...string) DateCandidate {
	return func(record map[string]any) (time.Time, bool) {
		v, ok := lookup(record, path...)
		if !ok {
			return time.Time{}, false
		}
		return coerceDate(v)
	}
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		// Money fields sometimes arrive formatted ("$ 1.200,50" is not
		// seen, but "$1200.50" and "1200,50" are).
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// dateLayouts are tried in order against string date fields. The API mixes
// RFC 3339 timestamps with bare dates and one legacy dd/mm/yyyy endpoint.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

func coerceDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// DaysUntil derives a days-remaining count from a target date, rounding up
// so a renewal due later today still counts as one day out.
func DaysUntil(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}
