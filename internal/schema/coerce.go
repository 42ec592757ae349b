package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/skedplan/intake/internal/entity"
)

// Issue is a field-level coercion problem. It carries no row number; the
// caller attaches one when folding issues into a validation report.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Bounds and defaults applied during coercion. Out-of-bounds numeric values
// are clamped silently here; the field validators re-inspect the raw value
// and raise the error, so the two passes read different inputs on purpose.
const (
	DefaultPriorityLevel   = 3
	MinPriorityLevel       = 1
	MaxPriorityLevel       = 5
	DefaultMaxLoadPerPhase = 8
	MinQualification       = 1
	MaxQualification       = 10
	DefaultDuration        = 1
	DefaultMaxConcurrent   = 1
	DefaultCategory        = "general"
)

// TaskCategories is the fixed value set for the task category enum.
var TaskCategories = []string{"general", "development", "design", "analysis", "operations"}

// CoerceClient converts one raw row into a typed client. The result is always
// usable: parse failures fall back to documented defaults; only malformed JSON
// fields surface as issues. A missing id is stamped with a synthesized
// temporary one so the row stays addressable.
func CoerceClient(row entity.RawRow) (entity.Client, []Issue) {
	var issues []Issue

	c := entity.Client{
		ID:               coerceID(row, entity.KindClient),
		Name:             rawString(row, entity.KindClient, FieldName),
		PriorityLevel:    coerceInt(row, entity.KindClient, FieldPriorityLevel, DefaultPriorityLevel, MinPriorityLevel, MaxPriorityLevel),
		RequestedTaskIDs: ParseStringList(rawString(row, entity.KindClient, FieldRequestedTaskIDs)),
		GroupTag:         rawString(row, entity.KindClient, FieldGroupTag),
		Attributes:       map[string]interface{}{},
	}

	if raw := rawString(row, entity.KindClient, FieldAttributes); raw != "" {
		var attrs map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			issues = append(issues, Issue{
				Field:   FieldAttributes,
				Message: "invalid JSON in attributes",
				Value:   raw,
			})
		} else {
			c.Attributes = attrs
		}
	}

	return c, issues
}

// CoerceWorker converts one raw row into a typed worker.
func CoerceWorker(row entity.RawRow) (entity.Worker, []Issue) {
	w := entity.Worker{
		ID:                 coerceID(row, entity.KindWorker),
		Name:               rawString(row, entity.KindWorker, FieldName),
		Skills:             ParseStringList(rawString(row, entity.KindWorker, FieldSkills)),
		AvailableSlots:     ParseIntList(rawString(row, entity.KindWorker, FieldAvailableSlots)),
		MaxLoadPerPhase:    coerceInt(row, entity.KindWorker, FieldMaxLoadPerPhase, DefaultMaxLoadPerPhase, 1, 0),
		WorkerGroup:        rawString(row, entity.KindWorker, FieldWorkerGroup),
		QualificationLevel: coerceInt(row, entity.KindWorker, FieldQualificationLevel, MinQualification, MinQualification, MaxQualification),
		HourlyRate:         coerceFloat(row, entity.KindWorker, FieldHourlyRate),
		WeeklyHours:        coerceFloat(row, entity.KindWorker, FieldWeeklyHours),
	}
	return w, nil
}

// CoerceTask converts one raw row into a typed task.
func CoerceTask(row entity.RawRow) (entity.Task, []Issue) {
	t := entity.Task{
		ID:              coerceID(row, entity.KindTask),
		Name:            rawString(row, entity.KindTask, FieldName),
		Category:        coerceCategory(rawString(row, entity.KindTask, FieldCategory)),
		Duration:        coerceInt(row, entity.KindTask, FieldDuration, DefaultDuration, 1, 0),
		RequiredSkills:  ParseStringList(rawString(row, entity.KindTask, FieldRequiredSkills)),
		PreferredPhases: ParsePhaseList(rawString(row, entity.KindTask, FieldPreferredPhases)),
		MaxConcurrent:   coerceInt(row, entity.KindTask, FieldMaxConcurrent, DefaultMaxConcurrent, 1, 0),
		Dependencies:    ParseStringList(rawString(row, entity.KindTask, FieldDependencies)),
		AssignedTo:      rawString(row, entity.KindTask, FieldAssignedTo),
		ClientID:        rawString(row, entity.KindTask, FieldClientID),
		DueDate:         rawString(row, entity.KindTask, FieldDueDate),
		EstimatedHours:  coerceFloat(row, entity.KindTask, FieldEstimatedHours),
		ActualHours:     coerceFloat(row, entity.KindTask, FieldActualHours),
	}
	return t, nil
}

func rawString(row entity.RawRow, kind entity.Kind, field string) string {
	v, _, _ := RawValue(row, kind, field)
	return v
}

func coerceID(row entity.RawRow, kind entity.Kind) string {
	if v := rawString(row, kind, FieldID); v != "" {
		return v
	}
	return fmt.Sprintf("tmp-%s", uuid.New().String()[:8])
}

// coerceInt parses an integer field with a default for unparseable input and
// silent clamping. max <= 0 means unbounded above.
func coerceInt(row entity.RawRow, kind entity.Kind, field string, def, min, max int) int {
	raw := rawString(row, kind, field)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Spreadsheets often hand back "3.0" for integer cells.
		if f, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			n = int(f)
		} else {
			return def
		}
	}
	if n < min {
		n = min
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

func coerceFloat(row entity.RawRow, kind entity.Kind, field string) float64 {
	raw := rawString(row, kind, field)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func coerceCategory(raw string) string {
	if raw == "" {
		return DefaultCategory
	}
	for _, c := range TaskCategories {
		if strings.EqualFold(raw, c) {
			return c
		}
	}
	return DefaultCategory
}
