package validation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/schema"
)

// The field validators inspect the ORIGINAL raw values, independent of
// coercion outcome. Coercion clamps silently; this pass is the one that
// reports what the clamp hid.

var dueDateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func (e *Engine) clientRangeErrors(rows []entity.RawRow) []ValidationError {
	var errs []ValidationError
	for i, row := range rows {
		raw, _, present := schema.RawValue(row, entity.KindClient, schema.FieldPriorityLevel)
		if !present || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < schema.MinPriorityLevel || n > schema.MaxPriorityLevel {
			errs = append(errs, ValidationError{
				Row:     i + 1,
				Field:   schema.FieldPriorityLevel,
				Message: fmt.Sprintf("priority level must be an integer between %d and %d", schema.MinPriorityLevel, schema.MaxPriorityLevel),
				Value:   raw,
			})
		}
	}
	return errs
}

func (e *Engine) workerRangeErrors(rows []entity.RawRow) []ValidationError {
	var errs []ValidationError
	for i, row := range rows {
		num := i + 1

		if raw, _, _ := schema.RawValue(row, entity.KindWorker, schema.FieldHourlyRate); raw != "" {
			if rate, err := strconv.ParseFloat(raw, 64); err != nil {
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldHourlyRate,
					Message: "hourly rate must be a number", Value: raw})
			} else if rate < 0 {
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldHourlyRate,
					Message: "hourly rate cannot be negative", Value: raw})
			} else if rate > e.cfg.HourlyRateCap {
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldHourlyRate,
					Message: fmt.Sprintf("unreasonable value: hourly rate above %.0f", e.cfg.HourlyRateCap), Value: raw})
			}
		}

		if raw, _, _ := schema.RawValue(row, entity.KindWorker, schema.FieldWeeklyHours); raw != "" {
			if hours, err := strconv.ParseFloat(raw, 64); err != nil {
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldWeeklyHours,
					Message: "weekly hours must be a number", Value: raw})
			} else if hours < 0 {
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldWeeklyHours,
					Message: "weekly hours cannot be negative", Value: raw})
			} else if hours > e.cfg.WeeklyHoursCap {
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldWeeklyHours,
					Message: fmt.Sprintf("unreasonable value: more than %.0f hours per week", e.cfg.WeeklyHoursCap), Value: raw})
			}
		}
	}
	return errs
}

func (e *Engine) taskRangeErrors(rows []entity.RawRow, now time.Time) []ValidationError {
	var errs []ValidationError
	minDue := time.Date(e.cfg.MinDueDateYear, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDue := now.AddDate(e.cfg.DueDateHorizonYears, 0, 0)

	for i, row := range rows {
		num := i + 1

		if raw, _, _ := schema.RawValue(row, entity.KindTask, schema.FieldDuration); raw != "" {
			if n, err := strconv.Atoi(raw); err != nil || n < 1 {
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldDuration,
					Message: "duration must be an integer of at least 1 phase", Value: raw})
			}
		}

		if raw, _, _ := schema.RawValue(row, entity.KindTask, schema.FieldDueDate); raw != "" {
			due, ok := parseDueDate(raw)
			switch {
			case !ok:
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldDueDate,
					Message: "due date is not a recognised date", Value: raw})
			case due.Before(minDue) || due.After(maxDue):
				errs = append(errs, ValidationError{Row: num, Field: schema.FieldDueDate,
					Message: fmt.Sprintf("due date must fall between year %d and %d years from now", e.cfg.MinDueDateYear, e.cfg.DueDateHorizonYears),
					Value:   raw})
			}
		}

		errs = append(errs, e.hoursRangeErrors(row, num, schema.FieldEstimatedHours)...)
		errs = append(errs, e.hoursRangeErrors(row, num, schema.FieldActualHours)...)
	}
	return errs
}

func (e *Engine) hoursRangeErrors(row entity.RawRow, num int, field string) []ValidationError {
	raw, _, _ := schema.RawValue(row, entity.KindTask, field)
	if raw == "" {
		return nil
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return []ValidationError{{Row: num, Field: field, Message: "hours must be a number", Value: raw}}
	}
	if hours < 0 || hours > e.cfg.MaxTaskHours {
		return []ValidationError{{Row: num, Field: field,
			Message: fmt.Sprintf("hours must be between 0 and %.0f", e.cfg.MaxTaskHours), Value: raw}}
	}
	return nil
}

// taskRefinementErrors applies the cross-field rule that actual hours cannot
// exceed estimated hours, once per row after the per-field checks.
func (e *Engine) taskRefinementErrors(rows []entity.RawRow) []ValidationError {
	var errs []ValidationError
	for i, row := range rows {
		rawEst, _, _ := schema.RawValue(row, entity.KindTask, schema.FieldEstimatedHours)
		rawAct, _, _ := schema.RawValue(row, entity.KindTask, schema.FieldActualHours)
		if rawEst == "" || rawAct == "" {
			continue
		}
		est, errE := strconv.ParseFloat(rawEst, 64)
		act, errA := strconv.ParseFloat(rawAct, 64)
		if errE != nil || errA != nil {
			continue
		}
		if act > est {
			errs = append(errs, ValidationError{
				Row:     i + 1,
				Field:   schema.FieldActualHours,
				Message: fmt.Sprintf("actual hours (%v) exceed estimated hours (%v)", rawAct, rawEst),
				Value:   rawAct,
			})
		}
	}
	return errs
}

// listErrors runs the strict phase-list syntax check over the raw value of a
// phase-list field. The lenient coercion drops bad tokens; this is where they
// get reported, referencing the original string.
func listErrors(kind entity.Kind, field string, rows []entity.RawRow) []ValidationError {
	var errs []ValidationError
	for i, row := range rows {
		raw, _, _ := schema.RawValue(row, kind, field)
		if raw == "" {
			continue
		}
		if err := schema.CheckPhaseList(raw); err != nil {
			errs = append(errs, ValidationError{
				Row:     i + 1,
				Field:   field,
				Message: fmt.Sprintf("malformed list: %v", err),
				Value:   raw,
			})
		}
	}
	return errs
}

func parseDueDate(raw string) (time.Time, bool) {
	for _, format := range dueDateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
