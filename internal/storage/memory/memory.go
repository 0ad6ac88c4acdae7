package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.StateRepository.
type Repository struct {
	runs         map[string]model.Run
	realisations map[string][]model.RealisationRecord
	tasks        map[string][]model.Task
	comparisons  map[string][]model.Comparison
	mu           sync.RWMutex
	logger       log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		runs:         make(map[string]model.Run),
		realisations: make(map[string][]model.RealisationRecord),
		tasks:        make(map[string][]model.Task),
		comparisons:  make(map[string][]model.Comparison),
		logger:       cfg.Logger,
	}, nil
}

// CreateRun creates a new run in the repository.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("run with id %s: %w", run.ID, model.ErrAlreadyExists)
	}

	// The working directory identifies the run.
	for _, existing := range r.runs {
		if existing.WorkDir == run.WorkDir {
			return fmt.Errorf("run for work dir %s: %w", run.WorkDir, model.ErrAlreadyExists)
		}
	}

	r.runs[run.ID] = run
	r.logger.Debugf("Created run in repository: %s", run.ID)

	return nil
}

// GetRunByWorkDir retrieves the run of a working directory.
func (r *Repository) GetRunByWorkDir(ctx context.Context, workDir string) (*model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, run := range r.runs {
		if run.WorkDir == workDir {
			// Return a copy
			runCopy := run
			return &runCopy, nil
		}
	}

	return nil, fmt.Errorf("run for work dir %s: %w", workDir, model.ErrNotFound)
}

// UpdateRun updates an existing run.
func (r *Repository) UpdateRun(ctx context.Context, run model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}

	r.runs[run.ID] = run
	r.logger.Debugf("Updated run in repository: %s", run.ID)

	return nil
}

// DeleteRun deletes a run and all its dependent state.
func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, model.ErrNotFound)
	}

	delete(r.runs, id)
	delete(r.realisations, id)
	delete(r.tasks, id)
	delete(r.comparisons, id)
	r.logger.Debugf("Deleted run from repository: %s", id)

	return nil
}

// ReplaceRealisations replaces the recorded realisation checkouts of a run.
func (r *Repository) ReplaceRealisations(ctx context.Context, runID string, records []model.RealisationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.realisations[runID] = append([]model.RealisationRecord{}, records...)
	r.logger.Debugf("Replaced %d realisation records for run %s", len(records), runID)

	return nil
}

// ListRealisations returns the recorded realisations of a run.
func (r *Repository) ListRealisations(ctx context.Context, runID string) ([]model.RealisationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.RealisationRecord{}, r.realisations[runID]...), nil
}

// ReplaceTasks replaces the tasks of a run for one benchmark mode.
func (r *Repository) ReplaceTasks(ctx context.Context, runID string, mode model.TaskMode, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]model.Task, 0, len(r.tasks[runID])+len(tasks))
	for _, task := range r.tasks[runID] {
		if task.Mode != mode {
			kept = append(kept, task)
		}
	}
	kept = append(kept, tasks...)
	r.tasks[runID] = kept
	r.logger.Debugf("Replaced %d %s tasks for run %s", len(tasks), mode, runID)

	return nil
}

// ListTasks returns the tasks of a run for one mode.
func (r *Repository) ListTasks(ctx context.Context, runID string, mode model.TaskMode) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []model.Task
	for _, task := range r.tasks[runID] {
		if task.Mode == mode {
			tasks = append(tasks, task)
		}
	}

	return tasks, nil
}

// SetTaskStatus transitions a task identified by run and name.
func (r *Repository) SetTaskStatus(ctx context.Context, runID, name string, status model.TaskStatus, taskErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.tasks[runID]
	for i := range tasks {
		if tasks[i].Name != name {
			continue
		}

		now := time.Now().UTC()
		tasks[i].Status = status
		switch status {
		case model.TaskStatusRunning:
			tasks[i].Error = ""
			tasks[i].StartedAt = &now
			tasks[i].FinishedAt = nil
		case model.TaskStatusCompleted:
			tasks[i].Error = ""
			tasks[i].FinishedAt = &now
		case model.TaskStatusFailed:
			tasks[i].Error = taskErr
			tasks[i].FinishedAt = &now
		default:
			tasks[i].Error = ""
			tasks[i].StartedAt = nil
			tasks[i].FinishedAt = nil
		}

		return nil
	}

	return fmt.Errorf("task %s: %w", name, model.ErrNotFound)
}

// ReplaceComparisons replaces the bitwise comparisons of a run.
func (r *Repository) ReplaceComparisons(ctx context.Context, runID string, comparisons []model.Comparison) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.comparisons[runID] = append([]model.Comparison{}, comparisons...)
	r.logger.Debugf("Replaced %d comparisons for run %s", len(comparisons), runID)

	return nil
}

// ListComparisons returns the comparisons of a run.
func (r *Repository) ListComparisons(ctx context.Context, runID string) ([]model.Comparison, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Comparison{}, r.comparisons[runID]...), nil
}

// SetComparisonOutcome records the outcome of a comparison.
func (r *Repository) SetComparisonOutcome(ctx context.Context, runID, name string, outcome model.ComparisonOutcome, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comparisons := r.comparisons[runID]
	for i := range comparisons {
		if comparisons[i].Name != name {
			continue
		}

		comparisons[i].Outcome = outcome
		comparisons[i].Detail = detail

		return nil
	}

	return fmt.Errorf("comparison %s: %w", name, model.ErrNotFound)
}
