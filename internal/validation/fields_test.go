package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skedplan/intake/internal/config"
	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/schema"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(config.DefaultValidation(), zap.NewNop())
	e.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func TestClientRangeErrors(t *testing.T) {
	e := testEngine(t)

	t.Run("OutOfRangePriorityReported", func(t *testing.T) {
		rows := []entity.RawRow{
			{"ClientID": "C1", "PriorityLevel": "9"},
			{"ClientID": "C2", "PriorityLevel": "3"},
		}

		errs := e.clientRangeErrors(rows)

		require.Len(t, errs, 1)
		assert.Equal(t, 1, errs[0].Row)
		assert.Equal(t, schema.FieldPriorityLevel, errs[0].Field)
		assert.Equal(t, "9", errs[0].Value)
	})

	t.Run("NonNumericPriorityReported", func(t *testing.T) {
		errs := e.clientRangeErrors([]entity.RawRow{{"ClientID": "C1", "PriorityLevel": "urgent"}})

		require.Len(t, errs, 1)
		assert.Equal(t, "urgent", errs[0].Value)
	})

	t.Run("BlankPrioritySkipped", func(t *testing.T) {
		errs := e.clientRangeErrors([]entity.RawRow{{"ClientID": "C1", "PriorityLevel": ""}})

		assert.Empty(t, errs)
	})
}

func TestWorkerRangeErrors(t *testing.T) {
	e := testEngine(t)

	t.Run("NegativeRate", func(t *testing.T) {
		errs := e.workerRangeErrors([]entity.RawRow{{"WorkerID": "W1", "HourlyRate": "-5"}})

		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "cannot be negative")
	})

	t.Run("RateAboveCap", func(t *testing.T) {
		errs := e.workerRangeErrors([]entity.RawRow{{"WorkerID": "W1", "HourlyRate": "1500"}})

		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "unreasonable value")
	})

	t.Run("WeeklyHoursAboveCap", func(t *testing.T) {
		errs := e.workerRangeErrors([]entity.RawRow{{"WorkerID": "W1", "WeeklyHours": "200"}})

		require.Len(t, errs, 1)
		assert.Equal(t, schema.FieldWeeklyHours, errs[0].Field)
		assert.Contains(t, errs[0].Message, "168")
	})

	t.Run("NonNumericRate", func(t *testing.T) {
		errs := e.workerRangeErrors([]entity.RawRow{{"WorkerID": "W1", "HourlyRate": "lots"}})

		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "must be a number")
	})
}

func TestTaskRangeErrors(t *testing.T) {
	e := testEngine(t)
	now := e.now()

	t.Run("DurationBelowOne", func(t *testing.T) {
		errs := e.taskRangeErrors([]entity.RawRow{{"TaskID": "T1", "Duration": "0"}}, now)

		require.Len(t, errs, 1)
		assert.Equal(t, schema.FieldDuration, errs[0].Field)
	})

	t.Run("UnrecognisedDueDate", func(t *testing.T) {
		errs := e.taskRangeErrors([]entity.RawRow{{"TaskID": "T1", "DueDate": "next tuesday"}}, now)

		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "not a recognised date")
	})

	t.Run("DueDateBeforeFloor", func(t *testing.T) {
		errs := e.taskRangeErrors([]entity.RawRow{{"TaskID": "T1", "DueDate": "1999-12-31"}}, now)

		require.Len(t, errs, 1)
		assert.Equal(t, schema.FieldDueDate, errs[0].Field)
	})

	t.Run("DueDateBeyondHorizon", func(t *testing.T) {
		errs := e.taskRangeErrors([]entity.RawRow{{"TaskID": "T1", "DueDate": "2040-01-01"}}, now)

		require.Len(t, errs, 1)
	})

	t.Run("AcceptedDateFormats", func(t *testing.T) {
		for _, raw := range []string{"2025-03-01", "2025-03-01 10:00:00", "03/01/2025", "2025-03-01T10:00:00Z"} {
			errs := e.taskRangeErrors([]entity.RawRow{{"TaskID": "T1", "DueDate": raw}}, now)
			assert.Empty(t, errs, "format %q should parse", raw)
		}
	})

	t.Run("HoursOutOfRange", func(t *testing.T) {
		errs := e.taskRangeErrors([]entity.RawRow{{"TaskID": "T1", "EstimatedHours": "20000"}}, now)

		require.Len(t, errs, 1)
		assert.Equal(t, schema.FieldEstimatedHours, errs[0].Field)
	})
}

func TestTaskRefinementErrors(t *testing.T) {
	e := testEngine(t)

	t.Run("ActualExceedsEstimated", func(t *testing.T) {
		errs := e.taskRefinementErrors([]entity.RawRow{
			{"TaskID": "T1", "EstimatedHours": "10", "ActualHours": "12.5"},
		})

		require.Len(t, errs, 1)
		assert.Equal(t, schema.FieldActualHours, errs[0].Field)
		assert.Contains(t, errs[0].Message, "exceed estimated")
	})

	t.Run("EqualHoursPass", func(t *testing.T) {
		errs := e.taskRefinementErrors([]entity.RawRow{
			{"TaskID": "T1", "EstimatedHours": "10", "ActualHours": "10"},
		})

		assert.Empty(t, errs)
	})

	t.Run("MissingSideSkipsCheck", func(t *testing.T) {
		errs := e.taskRefinementErrors([]entity.RawRow{
			{"TaskID": "T1", "ActualHours": "99"},
		})

		assert.Empty(t, errs)
	})
}

func TestListErrors(t *testing.T) {
	t.Run("MalformedPhaseListReported", func(t *testing.T) {
		errs := listErrors(entity.KindTask, schema.FieldPreferredPhases, []entity.RawRow{
			{"TaskID": "T1", "PreferredPhases": "1,zwei,3"},
		})

		require.Len(t, errs, 1)
		assert.Equal(t, 1, errs[0].Row)
		assert.Contains(t, errs[0].Message, "malformed list")
		assert.Equal(t, "1,zwei,3", errs[0].Value)
	})

	t.Run("RangeSyntaxPasses", func(t *testing.T) {
		errs := listErrors(entity.KindTask, schema.FieldPreferredPhases, []entity.RawRow{
			{"TaskID": "T1", "PreferredPhases": "2-4"},
		})

		assert.Empty(t, errs)
	})

	t.Run("ZeroPhaseRejected", func(t *testing.T) {
		errs := listErrors(entity.KindWorker, schema.FieldAvailableSlots, []entity.RawRow{
			{"WorkerID": "W1", "AvailableSlots": "0,1"},
		})

		require.Len(t, errs, 1)
	})
}
