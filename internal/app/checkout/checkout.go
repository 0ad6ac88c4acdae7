package checkout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/fsutil"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/storage"
	"github.com/cable-lsm/benchcab/internal/syscmd"
	"github.com/cable-lsm/benchcab/internal/vcs"
)

// ServiceConfig is the configuration for the checkout service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Checkout"})
	return nil
}

// Service checks out the configured realisations into the working
// directory and records the resolved revisions.
type Service struct {
	repo   storage.StateRepository
	runner syscmd.Runner
	logger log.Logger
}

// NewService creates a new checkout service.
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

// Request represents the checkout request parameters.
type Request struct {
	Config     model.Config
	ConfigPath string
	WorkDir    string
}

// Run checks out every configured realisation under src/ and returns the
// recorded revisions.
func (s *Service) Run(ctx context.Context, req Request) ([]model.RealisationRecord, error) {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve work directory: %w", err)
	}

	srcDir := filepath.Join(workDir, conventions.SrcDir)
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create source directory: %w", err)
	}

	s.logger.Infof("Checking out repositories...")

	records := make([]model.RealisationRecord, 0, len(req.Config.Realisations))
	for i, r := range req.Config.Realisations {
		name := r.ResolvedName()
		path := conventions.RealisationPath(workDir, name)

		if _, err := os.Lstat(path); err == nil {
			return nil, fmt.Errorf("realisation %q is already checked out, try `benchcab clean realisations` first: %w", name, model.ErrAlreadyExists)
		}

		repo, err := vcs.New(r.Repo, path, s.runner, s.logger)
		if err != nil {
			return nil, fmt.Errorf("invalid repository spec for realisation %q: %w", name, err)
		}

		if err := repo.Checkout(ctx); err != nil {
			return nil, fmt.Errorf("could not check out realisation %q: %w", name, err)
		}

		revision, err := repo.Revision(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not resolve revision of realisation %q: %w", name, err)
		}

		records = append(records, model.RealisationRecord{
			Index:    i,
			Name:     name,
			Revision: revision,
		})
	}

	if err := s.writeRevisionLog(workDir, records); err != nil {
		return nil, err
	}

	run, err := storage.EnsureRun(ctx, s.repo, workDir, req.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("could not resolve run state: %w", err)
	}
	for i := range records {
		records[i].RunID = run.ID
	}
	if err := s.repo.ReplaceRealisations(ctx, run.ID, records); err != nil {
		return nil, fmt.Errorf("could not record realisations: %w", err)
	}

	return records, nil
}

func (s *Service) writeRevisionLog(workDir string, records []model.RealisationRecord) error {
	name, err := fsutil.NextPath(workDir, conventions.RevisionLogPattern)
	if err != nil {
		return fmt.Errorf("could not allocate revision log: %w", err)
	}
	path := filepath.Join(workDir, name)

	contents := ""
	for _, rec := range records {
		contents += fmt.Sprintf("%s: %s\n", rec.Name, rec.Revision)
	}

	s.logger.Infof("Writing revision number info to %s", name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return fmt.Errorf("could not write revision log: %w", err)
	}

	return nil
}
