package clean

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/storage"
	"github.com/cable-lsm/benchcab/internal/workdir"
)

// Target selects what to clean from the working directory.
type Target string

const (
	// TargetAll removes realisations, submissions and the recorded run
	// state.
	TargetAll = Target("all")
	// TargetRealisations removes the checked out CABLE source trees.
	TargetRealisations = Target("realisations")
	// TargetSubmissions removes the run directories and the PBS job
	// script and its scheduler output files.
	TargetSubmissions = Target("submissions")
)

// ServiceConfig is the configuration for the clean service.
type ServiceConfig struct {
	Repository storage.StateRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Clean"})
	return nil
}

// Service removes benchmark artefacts from the working directory.
// Revision logs are kept, they record what past runs tested.
type Service struct {
	repo   storage.StateRepository
	logger log.Logger
}

// NewService creates a new clean service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the clean request parameters.
type Request struct {
	WorkDir string
	Target  Target
}

// Run removes the artefacts the target selects.
func (s *Service) Run(ctx context.Context, req Request) error {
	switch req.Target {
	case TargetAll, TargetRealisations, TargetSubmissions:
	default:
		return fmt.Errorf("unknown clean target %q: %w", req.Target, model.ErrNotValid)
	}

	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return fmt.Errorf("could not resolve work directory: %w", err)
	}

	cleaner, err := workdir.NewCleaner(workdir.CleanerConfig{
		WorkDir: workDir,
		Logger:  s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create cleaner: %w", err)
	}

	if req.Target == TargetAll || req.Target == TargetRealisations {
		s.logger.Infof("Cleaning realisation files...")
		if err := cleaner.CleanRealisations(); err != nil {
			return fmt.Errorf("could not clean realisations: %w", err)
		}
	}

	if req.Target == TargetAll || req.Target == TargetSubmissions {
		s.logger.Infof("Cleaning submission files...")
		if err := cleaner.CleanSubmissions(); err != nil {
			return fmt.Errorf("could not clean submissions: %w", err)
		}
	}

	if req.Target == TargetAll {
		if err := s.dropRunState(ctx, workDir); err != nil {
			return err
		}
	}

	return nil
}

// dropRunState forgets the run recorded for the working directory, if
// any.
func (s *Service) dropRunState(ctx context.Context, workDir string) error {
	run, err := s.repo.GetRunByWorkDir(ctx, workDir)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not get run: %w", err)
	}

	if err := s.repo.DeleteRun(ctx, run.ID); err != nil {
		return fmt.Errorf("could not delete run state: %w", err)
	}
	s.logger.Debugf("Dropped run state for %s", workDir)

	return nil
}
