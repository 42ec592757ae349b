package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, raw := range []string{"clients", "Clients", " WORKERS ", "tasks"} {
		_, err := ParseKind(raw)
		assert.NoError(t, err, "kind %q", raw)
	}

	_, err := ParseKind("projects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projects")
}

func TestRawRowString(t *testing.T) {
	row := RawRow{
		"name":    "  Acme  ",
		"count":   float64(3),
		"rate":    float64(2.5),
		"flag":    true,
		"missing": nil,
	}

	assert.Equal(t, "Acme", row.String("name"))
	assert.Equal(t, "3", row.String("count"), "spreadsheet integers come back as float64")
	assert.Equal(t, "2.5", row.String("rate"))
	assert.Equal(t, "true", row.String("flag"))
	assert.Equal(t, "", row.String("missing"))
	assert.Equal(t, "", row.String("absent"))
}
