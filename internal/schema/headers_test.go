package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skedplan/intake/internal/entity"
)

func TestMapHeaders(t *testing.T) {
	t.Run("ExactMatch", func(t *testing.T) {
		mappings := MapHeaders([]string{"duration", "maxConcurrent"}, entity.KindTask)

		assert.Len(t, mappings, 2)
		assert.Equal(t, FieldDuration, mappings["duration"].Field)
		assert.Equal(t, 1.0, mappings["duration"].Confidence)
		assert.Equal(t, FieldMaxConcurrent, mappings["maxConcurrent"].Field)
	})

	t.Run("AliasMatch", func(t *testing.T) {
		mappings := MapHeaders([]string{"Client_ID", "AttributesJSON"}, entity.KindClient)

		assert.Equal(t, FieldID, mappings["Client_ID"].Field)
		assert.Equal(t, 0.9, mappings["Client_ID"].Confidence)
		assert.Equal(t, FieldAttributes, mappings["AttributesJSON"].Field)
	})

	t.Run("CaseAndSpacingInsensitive", func(t *testing.T) {
		mappings := MapHeaders([]string{"worker id", "MAX LOAD PER PHASE"}, entity.KindWorker)

		assert.Equal(t, FieldID, mappings["worker id"].Field)
		assert.Equal(t, FieldMaxLoadPerPhase, mappings["MAX LOAD PER PHASE"].Field)
	})

	t.Run("SubstringMatch", func(t *testing.T) {
		mappings := MapHeaders([]string{"the_duration_col"}, entity.KindTask)

		assert.Equal(t, FieldDuration, mappings["the_duration_col"].Field)
		assert.Equal(t, 0.7, mappings["the_duration_col"].Confidence)
	})

	t.Run("NoMatchOmitted", func(t *testing.T) {
		mappings := MapHeaders([]string{"zzz_unrelated", ""}, entity.KindClient)

		assert.Empty(t, mappings)
	})

	t.Run("ExactBeatsAlias", func(t *testing.T) {
		mappings := MapHeaders([]string{"id"}, entity.KindClient)

		assert.Equal(t, FieldID, mappings["id"].Field)
		assert.Equal(t, 1.0, mappings["id"].Confidence)
	})
}
