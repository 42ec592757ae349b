package validation

import (
	"time"

	"go.uber.org/zap"

	"github.com/skedplan/intake/internal/config"
	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/schema"
)

// Engine runs the per-collection validation passes in their documented order:
// missing columns, duplicate ids, schema/refinement errors, range errors,
// malformed lists. Cross-collection passes live in CrossCollection and are
// merged onto a prior result by the caller.
type Engine struct {
	cfg    config.ValidationConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates a validation engine
func NewEngine(cfg config.ValidationConfig, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// ValidateClients validates an uploaded client collection.
func (e *Engine) ValidateClients(rows []entity.RawRow) Result[entity.Client] {
	errs := MissingColumns(entity.KindClient, rows)
	errs = append(errs, DuplicateIDs(entity.KindClient, rows)...)

	data := make([]entity.Client, len(rows))
	for i, row := range rows {
		client, issues := schema.CoerceClient(row)
		data[i] = client
		errs = append(errs, issueErrors(i+1, issues)...)
	}

	errs = append(errs, e.clientRangeErrors(rows)...)

	result := BuildResult(data, errs)
	e.logResult(entity.KindClient, result.Summary, len(errs))
	return result
}

// ValidateWorkers validates an uploaded worker collection.
func (e *Engine) ValidateWorkers(rows []entity.RawRow) Result[entity.Worker] {
	errs := MissingColumns(entity.KindWorker, rows)
	errs = append(errs, DuplicateIDs(entity.KindWorker, rows)...)

	data := make([]entity.Worker, len(rows))
	for i, row := range rows {
		worker, issues := schema.CoerceWorker(row)
		data[i] = worker
		errs = append(errs, issueErrors(i+1, issues)...)
	}

	errs = append(errs, e.workerRangeErrors(rows)...)
	errs = append(errs, listErrors(entity.KindWorker, schema.FieldAvailableSlots, rows)...)

	result := BuildResult(data, errs)
	e.logResult(entity.KindWorker, result.Summary, len(errs))
	return result
}

// ValidateTasks validates an uploaded task collection.
func (e *Engine) ValidateTasks(rows []entity.RawRow) Result[entity.Task] {
	errs := MissingColumns(entity.KindTask, rows)
	errs = append(errs, DuplicateIDs(entity.KindTask, rows)...)

	data := make([]entity.Task, len(rows))
	for i, row := range rows {
		task, issues := schema.CoerceTask(row)
		data[i] = task
		errs = append(errs, issueErrors(i+1, issues)...)
	}

	errs = append(errs, e.taskRefinementErrors(rows)...)
	errs = append(errs, e.taskRangeErrors(rows, e.now())...)
	errs = append(errs, listErrors(entity.KindTask, schema.FieldPreferredPhases, rows)...)

	result := BuildResult(data, errs)
	e.logResult(entity.KindTask, result.Summary, len(errs))
	return result
}

// CrossCollection runs the passes that need all three coerced collections,
// returning the batches in merge order: cross-references (including circular
// dependencies), skill coverage, phase saturation.
func (e *Engine) CrossCollection(clients []entity.Client, workers []entity.Worker, tasks []entity.Task) [][]ValidationError {
	batches := [][]ValidationError{
		CrossReferences(clients, workers, tasks),
		SkillCoverage(tasks, workers),
		PhaseSaturation(tasks, workers),
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	e.logger.Info("Cross-collection validation completed",
		zap.Int("clients", len(clients)),
		zap.Int("workers", len(workers)),
		zap.Int("tasks", len(tasks)),
		zap.Int("errors", total))
	return batches
}

func (e *Engine) logResult(kind entity.Kind, summary Summary, errCount int) {
	e.logger.Info("Collection validated",
		zap.String("kind", string(kind)),
		zap.Int("total_rows", summary.TotalRows),
		zap.Int("valid_rows", summary.ValidRows),
		zap.Int("invalid_rows", summary.InvalidRows),
		zap.Int("errors", errCount))
}

func issueErrors(row int, issues []schema.Issue) []ValidationError {
	if len(issues) == 0 {
		return nil
	}
	errs := make([]ValidationError, len(issues))
	for i, issue := range issues {
		errs[i] = ValidationError{
			Row:     row,
			Field:   issue.Field,
			Message: issue.Message,
			Value:   issue.Value,
		}
	}
	return errs
}
