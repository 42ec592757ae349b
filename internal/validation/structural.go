package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/schema"
)

// MissingColumns checks that every required canonical column for the kind is
// present under some recognisable header. One file-level error per missing
// column; the value carries the full header list for diagnostics.
func MissingColumns(kind entity.Kind, rows []entity.RawRow) []ValidationError {
	headers := collectHeaders(rows)

	var errs []ValidationError
	for _, col := range schema.RequiredColumns(kind) {
		if columnPresent(col, headers, kind) {
			continue
		}
		errs = append(errs, ValidationError{
			Row:     0,
			Field:   col,
			Message: fmt.Sprintf("missing required column %q", col),
			Value:   strings.Join(headers, ", "),
		})
	}
	return errs
}

// DuplicateIDs reports every row whose id also appears elsewhere in the
// upload. Each occurrence gets its own error listing all rows sharing the id.
func DuplicateIDs(kind entity.Kind, rows []entity.RawRow) []ValidationError {
	occurrences := make(map[string][]int)
	ids := make([]string, len(rows))

	for i, row := range rows {
		id, _, _ := schema.RawValue(row, kind, schema.FieldID)
		ids[i] = id
		if id != "" {
			occurrences[id] = append(occurrences[id], i+1)
		}
	}

	var errs []ValidationError
	for i := range rows {
		id := ids[i]
		if id == "" || len(occurrences[id]) < 2 {
			continue
		}
		errs = append(errs, ValidationError{
			Row:     i + 1,
			Field:   schema.FieldID,
			Message: fmt.Sprintf("duplicate id %q also found in rows %s", id, joinRows(occurrences[id])),
			Value:   id,
		})
	}
	return errs
}

func collectHeaders(rows []entity.RawRow) []string {
	seen := make(map[string]struct{})
	var headers []string
	for _, row := range rows {
		for h := range row {
			if _, ok := seen[h]; !ok {
				seen[h] = struct{}{}
				headers = append(headers, h)
			}
		}
	}
	sort.Strings(headers)
	return headers
}

// columnPresent accepts a header as satisfying a canonical column when it
// matches the canonical name or any of its aliases ignoring case, whitespace
// and punctuation, so "Client_ID" satisfies "id".
func columnPresent(canonical string, headers []string, kind entity.Kind) bool {
	for _, m := range schema.MapHeaders(headers, kind) {
		// Substring matches (0.7) are too loose to satisfy a required column.
		if m.Field == canonical && m.Confidence >= 0.9 {
			return true
		}
	}
	return false
}

func joinRows(rows []int) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprintf("%d", r)
	}
	return strings.Join(parts, ", ")
}
