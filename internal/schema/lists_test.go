package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStringList(t *testing.T) {
	assert.Equal(t, []string{"T1", "T2"}, ParseStringList("T1,T2"))
	assert.Equal(t, []string{"T1", "T2"}, ParseStringList("[T1, T2]"))
	assert.Equal(t, []string{"a", "b"}, ParseStringList(`["a","b"]`))
	assert.Equal(t, []string{"x"}, ParseStringList(" x ,, "))
	assert.Nil(t, ParseStringList(""))
	assert.Nil(t, ParseStringList("[]"))
}

func TestParseIntList(t *testing.T) {
	assert.Equal(t, []int{1, 3, 5}, ParseIntList("1,3,5"))
	assert.Equal(t, []int{1, 5}, ParseIntList("[1, x, 5]"), "non-numeric tokens dropped silently")
	assert.Nil(t, ParseIntList(""))
}

func TestParsePhaseList(t *testing.T) {
	t.Run("RangeExpandsInclusively", func(t *testing.T) {
		assert.Equal(t, []int{2, 3, 4}, ParsePhaseList("2-4"))
		assert.Equal(t, []int{1, 2, 3}, ParsePhaseList("[1-3]"))
		assert.Equal(t, []int{5}, ParsePhaseList("5-5"))
	})

	t.Run("CommaListKeepsOrder", func(t *testing.T) {
		assert.Equal(t, []int{5, 1, 3}, ParsePhaseList("5,1,3"))
	})

	t.Run("InvertedRangeFallsThrough", func(t *testing.T) {
		// "4-2" is not a valid range and contains no commas, so the lenient
		// comma-list path drops the unparseable token.
		assert.Empty(t, ParsePhaseList("4-2"))
	})

	t.Run("SingleValue", func(t *testing.T) {
		assert.Equal(t, []int{3}, ParsePhaseList("3"))
	})
}

func TestCheckPhaseList(t *testing.T) {
	assert.NoError(t, CheckPhaseList("1-3"))
	assert.NoError(t, CheckPhaseList("[1,2,5]"))
	assert.NoError(t, CheckPhaseList(""))

	assert.Error(t, CheckPhaseList("1,two,3"))
	assert.Error(t, CheckPhaseList("0,1"))
	assert.Error(t, CheckPhaseList("abc"))
}
