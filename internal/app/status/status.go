package status

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/pbs"
	"github.com/cable-lsm/benchcab/internal/storage"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// ServiceConfig is the configuration for the status service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Status"})
	return nil
}

// Service reports the recorded state of the benchmark run in the working
// directory.
type Service struct {
	repo   storage.StateRepository
	runner syscmd.Runner
	logger log.Logger
}

// NewService creates a new status service.
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

// Request represents the status request parameters.
type Request struct {
	WorkDir string
}

// Run aggregates the stored run state. When a PBS job has been submitted
// the live scheduler state is included best effort, a failing qstat does
// not fail the report.
func (s *Service) Run(ctx context.Context, req Request) (*model.RunReport, error) {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve work directory: %w", err)
	}

	run, err := s.repo.GetRunByWorkDir(ctx, workDir)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("no benchmark run recorded for %s: %w", workDir, err)
		}
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	report := model.RunReport{Run: *run}

	report.Realisations, err = s.repo.ListRealisations(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list realisations: %w", err)
	}

	fluxsiteTasks, err := s.repo.ListTasks(ctx, run.ID, model.TaskModeFluxsite)
	if err != nil {
		return nil, fmt.Errorf("could not list fluxsite tasks: %w", err)
	}
	spatialTasks, err := s.repo.ListTasks(ctx, run.ID, model.TaskModeSpatial)
	if err != nil {
		return nil, fmt.Errorf("could not list spatial tasks: %w", err)
	}
	report.Tasks = append(fluxsiteTasks, spatialTasks...)

	report.Comparisons, err = s.repo.ListComparisons(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list comparisons: %w", err)
	}

	if run.PBSJobID != "" {
		report.PBSJobState = s.jobState(ctx, run.PBSJobID)
	}

	return &report, nil
}

// jobState polls the scheduler for the submitted job. The state database
// outlives the job, so an unknown job is not an error.
func (s *Service) jobState(ctx context.Context, jobID string) string {
	client, err := pbs.NewClient(pbs.ClientConfig{Runner: s.runner, Logger: s.logger})
	if err != nil {
		s.logger.Warningf("Could not create PBS client: %v", err)
		return ""
	}

	state, err := client.JobState(ctx, jobID)
	if err != nil {
		s.logger.Debugf("Could not query job %s: %v", jobID, err)
		return ""
	}

	return state
}
