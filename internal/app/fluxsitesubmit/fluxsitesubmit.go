package fluxsitesubmit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/pbs"
	"github.com/cable-lsm/benchcab/internal/storage"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// ServiceConfig is the configuration for the fluxsite submit service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.FluxsiteSubmit"})
	return nil
}

// Service renders the PBS job script that runs the fluxsite tasks on the
// compute nodes and submits it to the scheduler.
type Service struct {
	repo   storage.StateRepository
	runner syscmd.Runner
	logger log.Logger
}

// NewService creates a new fluxsite submit service.
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

// Request represents the fluxsite submit request parameters.
type Request struct {
	Config     model.Config
	ConfigPath string
	WorkDir    string
	// BenchcabPath is the benchcab executable the job script invokes.
	// Empty selects the running executable.
	BenchcabPath string
	Verbose      bool
	// SkipBitwiseCmp leaves the bitwise comparison step out of the job.
	SkipBitwiseCmp bool
}

// Run writes the job script into the working directory, submits it and
// records the job id. It returns the id reported by the scheduler.
func (s *Service) Run(ctx context.Context, req Request) (string, error) {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return "", fmt.Errorf("could not resolve work directory: %w", err)
	}

	benchcabPath := req.BenchcabPath
	if benchcabPath == "" {
		benchcabPath, err = os.Executable()
		if err != nil {
			return "", fmt.Errorf("could not resolve the benchcab executable path: %w", err)
		}
	}

	s.logger.Infof("Creating PBS job script to run fluxsite tasks on compute nodes")
	script, err := pbs.RenderJobScript(pbs.ScriptParams{
		Project:        req.Config.Project,
		ConfigPath:     req.ConfigPath,
		Modules:        req.Config.Modules,
		BenchcabPath:   benchcabPath,
		PBS:            req.Config.Fluxsite.PBS,
		Verbose:        req.Verbose,
		SkipBitwiseCmp: req.SkipBitwiseCmp,
	})
	if err != nil {
		return "", fmt.Errorf("could not render job script: %w", err)
	}

	scriptPath := filepath.Join(workDir, conventions.QsubFile)
	s.logger.Infof("Job script path: %s", scriptPath)
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("could not write job script: %w", err)
	}

	client, err := pbs.NewClient(pbs.ClientConfig{Runner: s.runner, Logger: s.logger})
	if err != nil {
		return "", fmt.Errorf("could not create PBS client: %w", err)
	}

	jobID, err := client.Submit(ctx, scriptPath)
	if err != nil {
		return "", fmt.Errorf("could not submit job to the NCI queue: %w", err)
	}

	if err := s.recordJob(ctx, workDir, req.ConfigPath, jobID); err != nil {
		return "", err
	}

	s.logger.Infof("PBS job submitted: %s", jobID)
	s.logger.Infof("CABLE log file for each task is written to %s/<task_name>_log.txt", conventions.FluxsiteLogsDir(workDir))
	s.logger.Infof("The CABLE standard output for each task is written to %s/<task_name>/%s", conventions.FluxsiteTasksDir(workDir), conventions.CableStdout)
	s.logger.Infof("The NetCDF output for each task is written to %s/<task_name>_out.nc", conventions.FluxsiteOutputsDir(workDir))

	return jobID, nil
}

func (s *Service) recordJob(ctx context.Context, workDir, configPath, jobID string) error {
	run, err := storage.EnsureRun(ctx, s.repo, workDir, configPath)
	if err != nil {
		return fmt.Errorf("could not resolve run state: %w", err)
	}

	run.PBSJobID = jobID
	run.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateRun(ctx, *run); err != nil {
		return fmt.Errorf("could not record job id: %w", err)
	}

	return nil
}
