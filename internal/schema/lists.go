package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// stripBrackets removes one optional pair of surrounding [ ] from a raw list
// value.
func stripBrackets(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// ParseStringList splits a raw comma-separated value into trimmed tokens.
// Surrounding brackets are stripped, empty tokens dropped. Also strips
// per-token quotes so `["a","b"]` round-trips cleanly.
func ParseStringList(raw string) []string {
	raw = stripBrackets(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.Trim(strings.TrimSpace(tok), `"'`)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ParseIntList is the lenient numeric-list coercion: comma tokens parsed as
// integers with non-numeric tokens dropped silently. Strict syntax checking
// over the raw value is a separate validation pass (CheckPhaseList) so the
// original text can be reported.
func ParseIntList(raw string) []int {
	var out []int
	for _, tok := range ParseStringList(raw) {
		if n, err := strconv.Atoi(tok); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// ParsePhaseList coerces a phase-list value, accepting single values, comma
// lists and inclusive "start-end" range syntax. A range only applies when
// both halves parse and start <= end; anything else falls through to
// comma-list handling. Order is preserved, never sorted.
func ParsePhaseList(raw string) []int {
	body := stripBrackets(raw)
	if body == "" {
		return nil
	}

	if idx := strings.Index(body, "-"); idx > 0 {
		start, errS := strconv.Atoi(strings.TrimSpace(body[:idx]))
		end, errE := strconv.Atoi(strings.TrimSpace(body[idx+1:]))
		if errS == nil && errE == nil && start <= end {
			phases := make([]int, 0, end-start+1)
			for p := start; p <= end; p++ {
				phases = append(phases, p)
			}
			return phases
		}
	}

	return ParseIntList(body)
}

// CheckPhaseList is the strict raw-syntax check for phase-list fields: after
// bracket stripping the value must split on "-" or "," into tokens that all
// parse as integers >= 1. The lenient coercion above intentionally swallows
// what this pass reports.
func CheckPhaseList(raw string) error {
	body := stripBrackets(raw)
	if body == "" {
		return nil
	}

	tokens := strings.FieldsFunc(body, func(r rune) bool {
		return r == '-' || r == ','
	})
	if len(tokens) == 0 {
		return fmt.Errorf("no phase values in %q", raw)
	}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return fmt.Errorf("%q is not a valid phase number", tok)
		}
		if n < 1 {
			return fmt.Errorf("phase %d is out of range, phases start at 1", n)
		}
	}
	return nil
}
