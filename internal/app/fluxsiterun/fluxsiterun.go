package fluxsiterun

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/cable-lsm/benchcab/internal/fluxsite"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/storage"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// ServiceConfig is the configuration for the fluxsite run service.
type ServiceConfig struct {
	Repository storage.StateRepository
	Runner     syscmd.Runner
	// MetDir overrides the met forcing directory.
	MetDir string
	Logger log.Logger
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.FluxsiteRun"})
	return nil
}

// Service runs the fluxsite tasks on the current node, recording task
// transitions in the run state as they happen. Inside a PBS job this is
// the phase the job script executes.
type Service struct {
	repo   storage.StateRepository
	runner syscmd.Runner
	metDir string
	logger log.Logger
}

// NewService creates a new fluxsite run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		runner: cfg.Runner,
		metDir: cfg.MetDir,
		logger: cfg.Logger,
	}, nil
}

// Request represents the fluxsite run request parameters.
type Request struct {
	Config     model.Config
	ConfigPath string
	WorkDir    string
}

// Run executes every fluxsite task. Model failures are recorded per task
// and do not abort the remaining tasks.
func (s *Service) Run(ctx context.Context, req Request) error {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return fmt.Errorf("could not resolve work directory: %w", err)
	}

	tasks, err := fluxsite.TasksFromConfig(req.Config, s.metDir)
	if err != nil {
		return err
	}

	engine, err := fluxsite.NewRunner(fluxsite.RunnerConfig{
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

	concurrency := 1
	if req.Config.Fluxsite.Multiprocess {
		concurrency = req.Config.Fluxsite.PBS.NCPUs
	}

	observe := func(t fluxsite.Task, status model.TaskStatus, taskErr error) {
		msg := ""
		if taskErr != nil {
			msg = taskErr.Error()
		}
		if err := s.repo.SetTaskStatus(ctx, run.ID, t.Name(), status, msg); err != nil {
			s.logger.Warningf("Could not record status of task %s: %v", t.Name(), err)
		}
	}

	s.logger.Infof("Running fluxsite tasks...")
	if err := engine.RunTasks(ctx, tasks, concurrency, observe); err != nil {
		return fmt.Errorf("could not run fluxsite tasks: %w", err)
	}
	s.logger.Infof("Successfully ran fluxsite tasks")

	return nil
}

// ensureTasks seeds the task records when this phase runs without a prior
// `benchcab fluxsite-setup-work-dir` on the same state database, as
// happens on a compute node with a node local database path.
func (s *Service) ensureTasks(ctx context.Context, runID string, tasks []fluxsite.Task) error {
	existing, err := s.repo.ListTasks(ctx, runID, model.TaskModeFluxsite)
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
			Mode:   model.TaskModeFluxsite,
			Status: model.TaskStatusPending,
		})
	}
	if err := s.repo.ReplaceTasks(ctx, runID, model.TaskModeFluxsite, records); err != nil {
		return fmt.Errorf("could not record tasks: %w", err)
	}

	return nil
}
