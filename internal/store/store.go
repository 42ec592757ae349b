package store

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/validation"
)

// Store holds the three uploaded collections and their validation reports.
// Each collection keeps its baseline report (per-collection passes only);
// cross-collection error batches are kept separately and merged on read, so
// re-running the cross checks replaces the batch instead of stacking
// duplicates onto a previously merged result.
type Store struct {
	mu     sync.RWMutex
	engine *validation.Engine
	logger *zap.Logger

	clientRows []entity.RawRow
	workerRows []entity.RawRow
	taskRows   []entity.RawRow

	clients validation.Result[entity.Client]
	workers validation.Result[entity.Worker]
	tasks   validation.Result[entity.Task]

	uploaded map[entity.Kind]bool

	crossBatches [][]validation.ValidationError
}

// New creates an empty dataset store
func New(engine *validation.Engine, logger *zap.Logger) *Store {
	return &Store{
		engine:   engine,
		logger:   logger,
		uploaded: make(map[entity.Kind]bool),
	}
}

// UploadClients replaces the client collection and revalidates.
func (s *Store) UploadClients(rows []entity.RawRow) validation.Result[entity.Client] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clientRows = rows
	s.clients = s.engine.ValidateClients(rows)
	s.uploaded[entity.KindClient] = true
	s.refreshCrossChecksLocked()
	return s.clients
}

// UploadWorkers replaces the worker collection and revalidates.
func (s *Store) UploadWorkers(rows []entity.RawRow) validation.Result[entity.Worker] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workerRows = rows
	s.workers = s.engine.ValidateWorkers(rows)
	s.uploaded[entity.KindWorker] = true
	s.refreshCrossChecksLocked()
	return s.workers
}

// UploadTasks replaces the task collection and revalidates.
func (s *Store) UploadTasks(rows []entity.RawRow) validation.Result[entity.Task] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskRows = rows
	s.tasks = s.engine.ValidateTasks(rows)
	s.uploaded[entity.KindTask] = true
	s.refreshCrossChecksLocked()
	return s.tasks
}

// UpdateRow applies in-place field edits to one raw row of a collection and
// revalidates the whole collection plus the cross checks. The row index is
// 0-based; headers are raw column names as uploaded.
func (s *Store) UpdateRow(kind entity.Kind, index int, changes map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.rowsLocked(kind)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("row index %d out of range for %s", index, kind)
	}
	for header, value := range changes {
		rows[index][header] = value
	}

	switch kind {
	case entity.KindClient:
		s.clients = s.engine.ValidateClients(s.clientRows)
	case entity.KindWorker:
		s.workers = s.engine.ValidateWorkers(s.workerRows)
	case entity.KindTask:
		s.tasks = s.engine.ValidateTasks(s.taskRows)
	}
	s.refreshCrossChecksLocked()

	s.logger.Info("Row updated",
		zap.String("kind", string(kind)),
		zap.Int("row", index+1),
		zap.Int("fields", len(changes)))
	return nil
}

// RunCrossChecks recomputes the cross-collection batches. Running it twice on
// unchanged data yields the same merged report, never duplicated errors.
func (s *Store) RunCrossChecks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCrossChecksLocked()
}

// ClientReport returns the current client report.
func (s *Store) ClientReport() validation.Result[entity.Client] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients
}

// WorkerReport returns the current worker report.
func (s *Store) WorkerReport() validation.Result[entity.Worker] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workers
}

// TaskReport returns the task report with any cross-collection batches merged
// on top of the baseline.
func (s *Store) TaskReport() validation.Result[entity.Task] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validation.Merge(s.tasks, s.crossBatches...)
}

// Snapshot returns the coerced collections for downstream consumers such as
// rule suggestions.
func (s *Store) Snapshot() ([]entity.Client, []entity.Worker, []entity.Task) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]entity.Client, len(s.clients.Data))
	copy(clients, s.clients.Data)
	workers := make([]entity.Worker, len(s.workers.Data))
	copy(workers, s.workers.Data)
	tasks := make([]entity.Task, len(s.tasks.Data))
	copy(tasks, s.tasks.Data)
	return clients, workers, tasks
}

// Complete reports whether all three collections have been uploaded.
func (s *Store) Complete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completeLocked()
}

func (s *Store) completeLocked() bool {
	return s.uploaded[entity.KindClient] && s.uploaded[entity.KindWorker] && s.uploaded[entity.KindTask]
}

// refreshCrossChecksLocked recomputes the cross-collection batches once all
// three collections are present; until then the batch list stays empty.
func (s *Store) refreshCrossChecksLocked() {
	if !s.completeLocked() {
		s.crossBatches = nil
		return
	}
	s.crossBatches = s.engine.CrossCollection(s.clients.Data, s.workers.Data, s.tasks.Data)
}

func (s *Store) rowsLocked(kind entity.Kind) ([]entity.RawRow, error) {
	switch kind {
	case entity.KindClient:
		return s.clientRows, nil
	case entity.KindWorker:
		return s.workerRows, nil
	case entity.KindTask:
		return s.taskRows, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}
