package spatialrun

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

// ServiceConfig is the configuration for the spatial run service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.SpatialRun"})
	return nil
}

// Service dispatches the spatial tasks to payu. Payu queues the actual
// model runs itself, benchcab only records the dispatch outcomes.
type Service struct {
	repo   storage.StateRepository
	runner syscmd.Runner
	logger log.Logger
}

// NewService creates a new spatial run service.
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

// Request represents the spatial run request parameters.
type Request struct {
	Config     model.Config
	ConfigPath string
	WorkDir    string
}

// Run dispatches every spatial task. A failing dispatch aborts the
// remaining tasks.
func (s *Service) Run(ctx context.Context, req Request) error {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return fmt.Errorf("could not resolve work directory: %w", err)
	}

	tasks := spatial.GenerateTasks(req.Config.Realisations, req.Config.Spatial.MetForcings, req.Config.ScienceConfigurations)

	engine, err := spatial.NewRunner(spatial.RunnerConfig{
		WorkDir: workDir,
		Runner:  s.runner,
		Logger:  s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	run, err := storage.EnsureRun(ctx, s.repo, workDir, req.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not resolve run state: %w", err)
	}
	if err := s.ensureTasks(ctx, run.ID, tasks); err != nil {
		return err
	}

	observe := func(t spatial.Task, status model.TaskStatus, taskErr error) {
		msg := ""
		if taskErr != nil {
			msg = taskErr.Error()
		}
		if err := s.repo.SetTaskStatus(ctx, run.ID, t.Name(), status, msg); err != nil {
			s.logger.Warningf("Could not record status of task %s: %v", t.Name(), err)
		}
	}

	s.logger.Infof("Running spatial tasks...")
	if err := engine.RunTasks(ctx, tasks, req.Config.Spatial.Payu.Args, observe); err != nil {
		return fmt.Errorf("could not run spatial tasks: %w", err)
	}
	s.logger.Infof("Successfully dispatched payu jobs")

	return nil
}

// ensureTasks seeds the task records when this phase runs without a prior
// `benchcab spatial-setup-work-dir` on the same state database.
func (s *Service) ensureTasks(ctx context.Context, runID string, tasks []spatial.Task) error {
	existing, err := s.repo.ListTasks(ctx, runID, model.TaskModeSpatial)
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	records := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, model.Task{
			ID:     ulid.Make().String(),
			RunID:  runID,
			Name:   t.Name(),
			Mode:   model.TaskModeSpatial,
			Status: model.TaskStatusPending,
		})
	}
	if err := s.repo.ReplaceTasks(ctx, runID, model.TaskModeSpatial, records); err != nil {
		return fmt.Errorf("could not record tasks: %w", err)
	}

	return nil
}
