package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cable-lsm/benchcab/internal/model"
)

// ConfigRepository loads benchmark run configurations.
type ConfigRepository interface {
	GetConfig(ctx context.Context, path string) (model.Config, error)
}

// StateRepository is the interface for benchmark run state persistence.
// State is keyed by working directory, a working directory holds at most
// one run.
type StateRepository interface {
	CreateRun(ctx context.Context, run model.Run) error
	GetRunByWorkDir(ctx context.Context, workDir string) (*model.Run, error)
	UpdateRun(ctx context.Context, run model.Run) error
	DeleteRun(ctx context.Context, id string) error

	ReplaceRealisations(ctx context.Context, runID string, records []model.RealisationRecord) error
	ListRealisations(ctx context.Context, runID string) ([]model.RealisationRecord, error)

	// ReplaceTasks replaces the stored tasks of one mode, state of the
	// other mode is left untouched.
	ReplaceTasks(ctx context.Context, runID string, mode model.TaskMode, tasks []model.Task) error
	ListTasks(ctx context.Context, runID string, mode model.TaskMode) ([]model.Task, error)
	// SetTaskStatus transitions a task identified by run and name. Moving
	// to running stamps the start time, completed and failed stamp the
	// finish time.
	SetTaskStatus(ctx context.Context, runID, name string, status model.TaskStatus, taskErr string) error

	ReplaceComparisons(ctx context.Context, runID string, comparisons []model.Comparison) error
	ListComparisons(ctx context.Context, runID string) ([]model.Comparison, error)
	SetComparisonOutcome(ctx context.Context, runID, name string, outcome model.ComparisonOutcome, detail string) error
}

// EnsureRun returns the run recorded for a working directory, creating one
// when none exists yet. Benchmark phases can run standalone (the run task
// phase executes inside the PBS job), so every phase resolves its run
// through this helper.
func EnsureRun(ctx context.Context, repo StateRepository, workDir, configPath string) (*model.Run, error) {
	run, err := repo.GetRunByWorkDir(ctx, workDir)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	now := time.Now().UTC()
	newRun := model.Run{
		ID:         ulid.Make().String(),
		WorkDir:    workDir,
		ConfigPath: configPath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.CreateRun(ctx, newRun); err != nil {
		return nil, fmt.Errorf("could not create run: %w", err)
	}

	return &newRun, nil
}
