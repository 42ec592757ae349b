package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/schema"
)

func TestCrossReferences(t *testing.T) {
	clients := []entity.Client{{ID: "C1"}}
	workers := []entity.Worker{{ID: "W1"}}

	t.Run("UnknownAssignedWorker", func(t *testing.T) {
		tasks := []entity.Task{{ID: "T1", AssignedTo: "W9"}}

		errs := CrossReferences(clients, workers, tasks)

		require.Len(t, errs, 1)
		assert.Equal(t, 1, errs[0].Row)
		assert.Equal(t, schema.FieldAssignedTo, errs[0].Field)
		assert.Contains(t, errs[0].Message, `"W9"`)
	})

	t.Run("UnknownClient", func(t *testing.T) {
		tasks := []entity.Task{{ID: "T1", ClientID: "C9"}}

		errs := CrossReferences(clients, workers, tasks)

		require.Len(t, errs, 1)
		assert.Equal(t, schema.FieldClientID, errs[0].Field)
	})

	t.Run("UnknownDependency", func(t *testing.T) {
		tasks := []entity.Task{
			{ID: "T1", Dependencies: []string{"T2", "T9"}},
			{ID: "T2"},
		}

		errs := CrossReferences(clients, workers, tasks)

		require.Len(t, errs, 1)
		assert.Equal(t, schema.FieldDependencies, errs[0].Field)
		assert.Equal(t, "T9", errs[0].Value)
	})

	t.Run("ValidReferencesPass", func(t *testing.T) {
		tasks := []entity.Task{
			{ID: "T1", AssignedTo: "W1", ClientID: "C1", Dependencies: []string{"T2"}},
			{ID: "T2"},
		}

		assert.Empty(t, CrossReferences(clients, workers, tasks))
	})
}

func TestCircularDependencies(t *testing.T) {
	t.Run("ThreeTaskCycleReportedOncePerTask", func(t *testing.T) {
		tasks := []entity.Task{
			{ID: "T1", Dependencies: []string{"T2"}},
			{ID: "T2", Dependencies: []string{"T3"}},
			{ID: "T3", Dependencies: []string{"T1"}},
		}

		errs := CrossReferences(nil, nil, tasks)

		require.Len(t, errs, 3)
		rows := make([]int, 0, 3)
		for _, e := range errs {
			assert.Equal(t, schema.FieldDependencies, e.Field)
			assert.Contains(t, e.Message, "T1 -> T2 -> T3 -> T1")
			rows = append(rows, e.Row)
		}
		assert.ElementsMatch(t, []int{1, 2, 3}, rows)
	})

	t.Run("SelfDependency", func(t *testing.T) {
		tasks := []entity.Task{{ID: "T1", Dependencies: []string{"T1"}}}

		errs := CrossReferences(nil, nil, tasks)

		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "T1 -> T1")
	})

	t.Run("DiamondIsNotACycle", func(t *testing.T) {
		tasks := []entity.Task{
			{ID: "T1", Dependencies: []string{"T2", "T3"}},
			{ID: "T2", Dependencies: []string{"T4"}},
			{ID: "T3", Dependencies: []string{"T4"}},
			{ID: "T4"},
		}

		assert.Empty(t, CrossReferences(nil, nil, tasks))
	})

	t.Run("UnknownDependencyDoesNotJoinTheGraph", func(t *testing.T) {
		tasks := []entity.Task{{ID: "T1", Dependencies: []string{"T9"}}}

		errs := CrossReferences(nil, nil, tasks)

		// One existence error, no cycle error.
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "does not exist")
	})
}
