package spatialsetup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/spatial"
	"github.com/cable-lsm/benchcab/internal/storage"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// ServiceConfig is the configuration for the spatial setup service.
type ServiceConfig struct {
	Repository storage.StateRepository
	Runner     syscmd.Runner
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.SpatialSetup"})
	return nil
}

// Service materialises the spatial run directory tree and clones one
// payu experiment per task, and seeds the run state with the generated
// tasks.
type Service struct {
	repo   storage.StateRepository
	runner syscmd.Runner
	logger log.Logger
}

// NewService creates a new spatial setup service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		runner: cfg.Runner,
		logger: cfg.Logger,
	}, nil
}

// Request represents the spatial setup request parameters.
type Request struct {
	Config     model.Config
	ConfigPath string
	WorkDir    string
}

// Run builds the spatial run directory tree and one payu experiment per
// task.
func (s *Service) Run(ctx context.Context, req Request) ([]spatial.Task, error) {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve work directory: %w", err)
	}

	tasks := spatial.GenerateTasks(req.Config.Realisations, req.Config.Spatial.MetForcings, req.Config.ScienceConfigurations)

	setup, err := spatial.NewSetup(spatial.SetupConfig{
		WorkDir: workDir,
		Runner:  s.runner,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create setup: %w", err)
	}

	s.logger.Infof("Setting up run directory tree for spatial tests...")
	if err := setup.CreateDirectoryTree(); err != nil {
		return nil, fmt.Errorf("could not create run directory tree: %w", err)
	}

	s.logger.Infof("Setting up tasks...")
	for _, t := range tasks {
		if err := setup.SetupTask(ctx, t, req.Config.Spatial.Payu.Config); err != nil {
			return nil, fmt.Errorf("could not set up task %q: %w", t.Name(), err)
		}
	}

	if err := s.seedState(ctx, workDir, req.ConfigPath, tasks); err != nil {
		return nil, err
	}

	s.logger.Infof("Successfully setup spatial tasks")
	return tasks, nil
}

func (s *Service) seedState(ctx context.Context, workDir, configPath string, tasks []spatial.Task) error {
	run, err := storage.EnsureRun(ctx, s.repo, workDir, configPath)
	if err != nil {
		return fmt.Errorf("could not resolve run state: %w", err)
	}

	records := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, model.Task{
			ID:     ulid.Make().String(),
			RunID:  run.ID,
			Name:   t.Name(),
			Mode:   model.TaskModeSpatial,
			Status: model.TaskStatusPending,
		})
	}
	if err := s.repo.ReplaceTasks(ctx, run.ID, model.TaskModeSpatial, records); err != nil {
		return fmt.Errorf("could not record tasks: %w", err)
	}

	return nil
}
