package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skedplan/intake/internal/config"
	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/schema"
	"github.com/skedplan/intake/internal/validation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	engine := validation.NewEngine(config.DefaultValidation(), zap.NewNop())
	return New(engine, zap.NewNop())
}

func clientRows() []entity.RawRow {
	return []entity.RawRow{
		{"ClientID": "C1", "ClientName": "Acme", "PriorityLevel": "3"},
	}
}

func workerRows() []entity.RawRow {
	return []entity.RawRow{
		{"WorkerID": "W1", "WorkerName": "Ada", "Skills": "go", "AvailableSlots": "[1,2]", "MaxLoadPerPhase": "8"},
	}
}

func taskRows() []entity.RawRow {
	return []entity.RawRow{
		{"TaskID": "T1", "TaskName": "build", "Duration": "1", "RequiredSkills": "go",
			"PreferredPhases": "1", "AssignedTo": "W1", "ClientID": "C1"},
	}
}

func TestUploadFlow(t *testing.T) {
	s := newTestStore(t)

	t.Run("PerCollectionReportsImmediately", func(t *testing.T) {
		result := s.UploadClients(clientRows())

		assert.True(t, result.IsValid)
		assert.False(t, s.Complete())
	})

	t.Run("CrossChecksWaitForAllThree", func(t *testing.T) {
		s.UploadWorkers(workerRows())
		tasks := s.UploadTasks(taskRows())

		assert.True(t, tasks.IsValid)
		assert.True(t, s.Complete())
		assert.True(t, s.TaskReport().IsValid, "all references resolve")
	})
}

func TestCrossCheckMergeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	s.UploadClients(clientRows())
	s.UploadWorkers(workerRows())

	// Unknown worker reference surfaces only through the cross pass.
	s.UploadTasks([]entity.RawRow{
		{"TaskID": "T1", "TaskName": "build", "Duration": "1", "RequiredSkills": "go", "AssignedTo": "W9"},
	})

	first := s.TaskReport()
	require.False(t, first.IsValid)
	require.Len(t, first.Errors, 1)
	assert.Equal(t, schema.FieldAssignedTo, first.Errors[0].Field)

	s.RunCrossChecks()
	s.RunCrossChecks()
	again := s.TaskReport()

	assert.Equal(t, first.Errors, again.Errors, "re-running never stacks duplicates")
	assert.Equal(t, first.Summary, again.Summary)
}

func TestUpdateRow(t *testing.T) {
	s := newTestStore(t)
	s.UploadClients(clientRows())
	s.UploadWorkers(workerRows())
	s.UploadTasks([]entity.RawRow{
		{"TaskID": "T1", "TaskName": "build", "Duration": "0", "RequiredSkills": "go"},
	})

	t.Run("EditRevalidatesCollection", func(t *testing.T) {
		require.False(t, s.TaskReport().IsValid)

		require.NoError(t, s.UpdateRow(entity.KindTask, 0, map[string]interface{}{"Duration": "2"}))

		assert.True(t, s.TaskReport().IsValid)
	})

	t.Run("EditCanIntroduceCrossErrors", func(t *testing.T) {
		require.NoError(t, s.UpdateRow(entity.KindTask, 0, map[string]interface{}{"AssignedTo": "W9"}))

		report := s.TaskReport()
		require.Len(t, report.Errors, 1)
		assert.Equal(t, schema.FieldAssignedTo, report.Errors[0].Field)
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		err := s.UpdateRow(entity.KindTask, 5, map[string]interface{}{"Duration": "2"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("UnknownKind", func(t *testing.T) {
		err := s.UpdateRow(entity.Kind("projects"), 0, nil)

		assert.Error(t, err)
	})
}

func TestSnapshot(t *testing.T) {
	s := newTestStore(t)
	s.UploadClients(clientRows())
	s.UploadWorkers(workerRows())
	s.UploadTasks(taskRows())

	clients, workers, tasks := s.Snapshot()

	require.Len(t, clients, 1)
	require.Len(t, workers, 1)
	require.Len(t, tasks, 1)
	assert.Equal(t, "C1", clients[0].ID)
	assert.Equal(t, []int{1, 2}, workers[0].AvailableSlots)
	assert.Equal(t, "T1", tasks[0].ID)

	// Mutating the snapshot never leaks back into the store.
	tasks[0].ID = "mutated"
	_, _, fresh := s.Snapshot()
	assert.Equal(t, "T1", fresh[0].ID)
}
