package fluxsitecompare

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/cable-lsm/benchcab/internal/comparison"
	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/fluxsite"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/storage"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// ServiceConfig is the configuration for the fluxsite comparison service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.FluxsiteCompare"})
	return nil
}

// Service compares fluxsite outputs of different realisations bitwise.
// Differing pairs are recorded as such, they do not fail the service.
type Service struct {
	repo   storage.StateRepository
	runner syscmd.Runner
	metDir string
	logger log.Logger
}

// NewService creates a new fluxsite comparison service.
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

// Request represents the fluxsite comparison request parameters.
type Request struct {
	Config     model.Config
	ConfigPath string
	WorkDir    string
}

// Run compares the output file of every comparable task pair.
func (s *Service) Run(ctx context.Context, req Request) error {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return fmt.Errorf("could not resolve work directory: %w", err)
	}

	tasks, err := fluxsite.TasksFromConfig(req.Config, s.metDir)
	if err != nil {
		return err
	}
	pairs := fluxsite.GenerateComparisons(tasks)

	outputsDir := conventions.FluxsiteOutputsDir(workDir)
	jobs := make([]comparison.Job, 0, len(pairs))
	records := make([]model.Comparison, 0, len(pairs))
	for _, p := range pairs {
		job := comparison.Job{
			Name:  p.Name(),
			FileA: filepath.Join(outputsDir, p.TaskA.OutputFilename()),
			FileB: filepath.Join(outputsDir, p.TaskB.OutputFilename()),
		}
		jobs = append(jobs, job)
		records = append(records, model.Comparison{
			ID:      ulid.Make().String(),
			Name:    job.Name,
			FileA:   job.FileA,
			FileB:   job.FileB,
			TaskA:   p.TaskA.Name(),
			TaskB:   p.TaskB.Name(),
			Outcome: model.ComparisonOutcomePending,
		})
	}

	engine, err := comparison.NewEngine(comparison.EngineConfig{
		OutputDir: conventions.FluxsiteBitwiseCmpDir(workDir),
		Runner:    s.runner,
		Logger:    s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create comparison engine: %w", err)
	}

	run, err := storage.EnsureRun(ctx, s.repo, workDir, req.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not resolve run state: %w", err)
	}
	if err := s.ensureComparisons(ctx, run.ID, records); err != nil {
		return err
	}

	concurrency := 1
	if req.Config.Fluxsite.Multiprocess {
		concurrency = req.Config.Fluxsite.PBS.NCPUs
	}

	observe := func(job comparison.Job, outcome model.ComparisonOutcome, detail string) {
		if err := s.repo.SetComparisonOutcome(ctx, run.ID, job.Name, outcome, detail); err != nil {
			s.logger.Warningf("Could not record outcome of comparison %s: %v", job.Name, err)
		}
	}

	s.logger.Infof("Running comparison tasks...")
	if err := engine.Compare(ctx, jobs, concurrency, observe); err != nil {
		return fmt.Errorf("could not run comparisons: %w", err)
	}
	s.logger.Infof("Successfully ran comparison tasks")

	return nil
}

// ensureComparisons seeds the comparison records when the phase runs on a
// state database the setup phase never touched.
func (s *Service) ensureComparisons(ctx context.Context, runID string, records []model.Comparison) error {
	existing, err := s.repo.ListComparisons(ctx, runID)
	if err != nil {
		return fmt.Errorf("could not list comparisons: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for i := range records {
		records[i].RunID = runID
	}
	if err := s.repo.ReplaceComparisons(ctx, runID, records); err != nil {
		return fmt.Errorf("could not record comparisons: %w", err)
	}

	return nil
}
