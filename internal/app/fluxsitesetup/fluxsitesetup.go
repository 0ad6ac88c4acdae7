package fluxsitesetup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/fluxsite"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/storage"
)

// ServiceConfig is the configuration for the fluxsite setup service.
type ServiceConfig struct {
	Repository storage.StateRepository
	// MetDir overrides the met forcing directory.
	MetDir string
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.FluxsiteSetup"})
	return nil
}

// Service materialises the fluxsite run directory tree and task
// directories, and seeds the run state with the generated tasks and
// comparisons.
type Service struct {
	repo   storage.StateRepository
	metDir string
	logger log.Logger
}

// NewService creates a new fluxsite setup service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		metDir: cfg.MetDir,
		logger: cfg.Logger,
	}, nil
}

// Request represents the fluxsite setup request parameters.
type Request struct {
	Config     model.Config
	ConfigPath string
	WorkDir    string
}

// Run builds the run directory tree and one directory per task.
func (s *Service) Run(ctx context.Context, req Request) ([]fluxsite.Task, error) {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve work directory: %w", err)
	}

	tasks, err := fluxsite.TasksFromConfig(req.Config, s.metDir)
	if err != nil {
		return nil, err
	}

	setup, err := fluxsite.NewSetup(fluxsite.SetupConfig{
		WorkDir: workDir,
		MetDir:  s.metDir,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create setup: %w", err)
	}

	s.logger.Infof("Setting up run directory tree for fluxsite tests...")
	if err := setup.CreateDirectoryTree(); err != nil {
		return nil, fmt.Errorf("could not create run directory tree: %w", err)
	}

	s.logger.Infof("Setting up tasks...")
	for _, t := range tasks {
		if err := setup.SetupTask(t); err != nil {
			return nil, fmt.Errorf("could not set up task %q: %w", t.Name(), err)
		}
	}

	if err := s.seedState(ctx, workDir, req.ConfigPath, tasks); err != nil {
		return nil, err
	}

	s.logger.Infof("Successfully setup fluxsite tasks")
	return tasks, nil
}

func (s *Service) seedState(ctx context.Context, workDir, configPath string, tasks []fluxsite.Task) error {
	run, err := storage.EnsureRun(ctx, s.repo, workDir, configPath)
	if err != nil {
		return fmt.Errorf("could not resolve run state: %w", err)
	}

	modelTasks := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		modelTasks = append(modelTasks, model.Task{
			ID:     ulid.Make().String(),
			RunID:  run.ID,
			Name:   t.Name(),
			Mode:   model.TaskModeFluxsite,
			Status: model.TaskStatusPending,
		})
	}
	if err := s.repo.ReplaceTasks(ctx, run.ID, model.TaskModeFluxsite, modelTasks); err != nil {
		return fmt.Errorf("could not record tasks: %w", err)
	}

	outputsDir := conventions.FluxsiteOutputsDir(workDir)
	pairs := fluxsite.GenerateComparisons(tasks)
	comparisons := make([]model.Comparison, 0, len(pairs))
	for _, p := range pairs {
		comparisons = append(comparisons, model.Comparison{
			ID:      ulid.Make().String(),
			RunID:   run.ID,
			Name:    p.Name(),
			FileA:   filepath.Join(outputsDir, p.TaskA.OutputFilename()),
			FileB:   filepath.Join(outputsDir, p.TaskB.OutputFilename()),
			TaskA:   p.TaskA.Name(),
			TaskB:   p.TaskB.Name(),
			Outcome: model.ComparisonOutcomePending,
		})
	}
	if err := s.repo.ReplaceComparisons(ctx, run.ID, comparisons); err != nil {
		return fmt.Errorf("could not record comparisons: %w", err)
	}

	return nil
}
