package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/schema"
)

// SkillCoverage checks that the union of all worker skills covers every
// task's required skills. Skill comparison is case-insensitive over trimmed
// values; one error per uncovered skill per task.
func SkillCoverage(tasks []entity.Task, workers []entity.Worker) []ValidationError {
	available := make(map[string]struct{})
	for _, w := range workers {
		for _, skill := range w.Skills {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key != "" {
				available[key] = struct{}{}
			}
		}
	}

	var errs []ValidationError
	for i, task := range tasks {
		for _, skill := range task.RequiredSkills {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" {
				continue
			}
			if _, ok := available[key]; !ok {
				errs = append(errs, ValidationError{
					Row:     i + 1,
					Field:   schema.FieldRequiredSkills,
					Message: fmt.Sprintf("no worker has skill %q", skill),
					Value:   skill,
				})
			}
		}
	}
	return errs
}

// PhaseSaturation aggregates required capacity (duration x maxConcurrent per
// preferred phase) against available capacity (maxLoadPerPhase per available
// slot) and reports every saturated phase as a file-level error: the shortfall
// is a property of the dataset, not of any one row.
func PhaseSaturation(tasks []entity.Task, workers []entity.Worker) []ValidationError {
	required := make(map[int]int)
	for _, task := range tasks {
		for _, phase := range task.PreferredPhases {
			required[phase] += task.Duration * task.MaxConcurrent
		}
	}

	available := make(map[int]int)
	for _, w := range workers {
		for _, phase := range w.AvailableSlots {
			available[phase] += w.MaxLoadPerPhase
		}
	}

	phases := make([]int, 0, len(required))
	for phase := range required {
		phases = append(phases, phase)
	}
	sort.Ints(phases)

	var errs []ValidationError
	for _, phase := range phases {
		if required[phase] > available[phase] {
			errs = append(errs, ValidationError{
				Row:     0,
				Field:   schema.FieldPreferredPhases,
				Message: fmt.Sprintf("phase %d is saturated: %d capacity required but only %d available", phase, required[phase], available[phase]),
				Value:   fmt.Sprintf("phase %d", phase),
			})
		}
	}
	return errs
}
