package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterValidation(t *testing.T) {
	t.Run("CoRunNeedsTwoTasks", func(t *testing.T) {
		assert.Error(t, CoRunParams{TaskIDs: []string{"T1"}}.Validate())
		assert.Error(t, CoRunParams{TaskIDs: []string{"T1", ""}}.Validate())
		assert.NoError(t, CoRunParams{TaskIDs: []string{"T1", "T2"}}.Validate())
	})

	t.Run("SlotRestrictionGroupType", func(t *testing.T) {
		p := SlotRestrictionParams{GroupType: "client", GroupTag: "vip", MinCommonSlots: 2}
		assert.NoError(t, p.Validate())

		p.GroupType = "team"
		assert.Error(t, p.Validate())

		p.GroupType = "worker"
		p.MinCommonSlots = 0
		assert.Error(t, p.Validate())
	})

	t.Run("LoadLimit", func(t *testing.T) {
		assert.NoError(t, LoadLimitParams{WorkerGroup: "backend", MaxSlotsPerPhase: 3}.Validate())
		assert.Error(t, LoadLimitParams{MaxSlotsPerPhase: 3}.Validate())
		assert.Error(t, LoadLimitParams{WorkerGroup: "backend"}.Validate())
	})

	t.Run("PhaseWindowNeedsPhases", func(t *testing.T) {
		assert.Error(t, PhaseWindowParams{TaskID: "T1"}.Validate())
		assert.Error(t, PhaseWindowParams{TaskID: "T1", AllowedPhases: PhaseList{0}}.Validate())
		assert.NoError(t, PhaseWindowParams{TaskID: "T1", AllowedPhases: PhaseList{1, 2}}.Validate())
	})

	t.Run("PatternMatchRegexMustCompile", func(t *testing.T) {
		assert.Error(t, PatternMatchParams{Pattern: "[unclosed", Action: "allow"}.Validate())
		assert.Error(t, PatternMatchParams{Pattern: "^T\\d+$", Action: "explode"}.Validate())
		assert.NoError(t, PatternMatchParams{Pattern: "^T\\d+$", Action: "prioritize"}.Validate())
	})

	t.Run("PrecedenceOverride", func(t *testing.T) {
		assert.Error(t, PrecedenceOverrideParams{}.Validate())
		assert.NoError(t, PrecedenceOverrideParams{Condition: "priorityLevel >= 4", Override: true}.Validate())
	})
}

func TestRuleJSONRoundTrip(t *testing.T) {
	t.Run("TypedParametersSurviveEncoding", func(t *testing.T) {
		in := Rule{
			ID:       "r-1",
			Type:     TypeCoRun,
			Name:     "bundle deploys",
			Priority: 2,
			IsActive: true,
			Parameters: &CoRunParams{
				TaskIDs: []string{"T1", "T2"},
			},
		}

		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out Rule
		require.NoError(t, json.Unmarshal(data, &out))

		assert.Equal(t, in.Type, out.Type)
		params, ok := out.Parameters.(*CoRunParams)
		require.True(t, ok)
		assert.Equal(t, []string{"T1", "T2"}, params.TaskIDs)
	})

	t.Run("UnknownTypeRejected", func(t *testing.T) {
		var out Rule
		err := json.Unmarshal([]byte(`{"type":"mystery","name":"x","parameters":{}}`), &out)
		assert.Error(t, err)
	})

	t.Run("MissingParametersRejected", func(t *testing.T) {
		var out Rule
		err := json.Unmarshal([]byte(`{"type":"co-run","name":"x"}`), &out)
		assert.Error(t, err)
	})
}

func TestPhaseListUnmarshal(t *testing.T) {
	t.Run("IntegerArray", func(t *testing.T) {
		var p PhaseList
		require.NoError(t, json.Unmarshal([]byte(`[1,3,5]`), &p))
		assert.Equal(t, PhaseList{1, 3, 5}, p)
	})

	t.Run("RangeString", func(t *testing.T) {
		var p PhaseList
		require.NoError(t, json.Unmarshal([]byte(`"2-4"`), &p))
		assert.Equal(t, PhaseList{2, 3, 4}, p)
	})

	t.Run("CommaString", func(t *testing.T) {
		var p PhaseList
		require.NoError(t, json.Unmarshal([]byte(`"1,4"`), &p))
		assert.Equal(t, PhaseList{1, 4}, p)
	})

	t.Run("OtherShapesRejected", func(t *testing.T) {
		var p PhaseList
		assert.Error(t, json.Unmarshal([]byte(`{"from":1}`), &p))
	})
}

func TestParseType(t *testing.T) {
	got, err := ParseType(" Co-Run ")
	require.NoError(t, err)
	assert.Equal(t, TypeCoRun, got)

	_, err = ParseType("corun")
	assert.Error(t, err)
}
