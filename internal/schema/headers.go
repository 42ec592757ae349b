package schema

import (
	"fmt"
	"strings"

	"github.com/skedplan/intake/internal/entity"
)

// HeaderMatch maps one raw upload header onto a canonical field.
type HeaderMatch struct {
	Field      string  `json:"field"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// MapHeaders resolves arbitrary raw headers to canonical fields for the given
// entity kind. Match tiers, in priority order: exact canonical match (1.0),
// alias match (0.9), substring containment either direction (0.7). Headers
// with no match are absent from the result and left for manual mapping.
// The function is pure and never fails.
func MapHeaders(headers []string, kind entity.Kind) map[string]HeaderMatch {
	fields := Fields(kind)
	result := make(map[string]HeaderMatch, len(headers))

	for _, header := range headers {
		norm := normalizeHeader(header)
		if norm == "" {
			continue
		}

		match, ok := matchHeader(norm, fields)
		if ok {
			result[header] = match
		}
	}
	return result
}

func matchHeader(norm string, fields []FieldSpec) (HeaderMatch, bool) {
	// Tier 1: exact canonical name.
	for _, f := range fields {
		if norm == normalizeHeader(f.Name) {
			return HeaderMatch{
				Field:      f.Name,
				Confidence: 1.0,
				Reason:     fmt.Sprintf("exact match for %q", f.Name),
			}, true
		}
	}

	// Tier 2: known alias.
	for _, f := range fields {
		for _, alias := range f.Aliases {
			if norm == normalizeHeader(alias) {
				return HeaderMatch{
					Field:      f.Name,
					Confidence: 0.9,
					Reason:     fmt.Sprintf("alias %q for %q", alias, f.Name),
				}, true
			}
		}
	}

	// Tier 3: substring containment, either direction.
	for _, f := range fields {
		fn := normalizeHeader(f.Name)
		if strings.Contains(norm, fn) || strings.Contains(fn, norm) {
			return HeaderMatch{
				Field:      f.Name,
				Confidence: 0.7,
				Reason:     fmt.Sprintf("partial match for %q", f.Name),
			}, true
		}
	}

	return HeaderMatch{}, false
}
