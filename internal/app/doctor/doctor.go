package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/envmodules"
	"github.com/cable-lsm/benchcab/internal/fluxsite"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// ServiceConfig is the configuration for the doctor service.
type ServiceConfig struct {
	Runner syscmd.Runner
	// LookPath resolves an executable on PATH, defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// MetDir overrides the met forcing directory.
	MetDir string
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}
	if c.MetDir == "" {
		c.MetDir = conventions.MetDir
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Doctor"})
	return nil
}

// Service runs preflight checks against the user environment: the tools
// benchcab shells out to, the working directory layout, the environment
// modules and the met forcing data.
type Service struct {
	runner   syscmd.Runner
	lookPath func(file string) (string, error)
	metDir   string
	logger   log.Logger
}

// NewService creates a new doctor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		runner:   cfg.Runner,
		lookPath: cfg.LookPath,
		metDir:   cfg.MetDir,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the doctor request parameters.
type Request struct {
	Config  model.Config
	WorkDir string
}

// requiredTools are always needed, benchcab cannot run without them.
var requiredTools = []string{"git"}

// optionalTools are only needed by parts of the workflow: svn for legacy
// realisations, qsub for job submission, nccmp for bitwise comparisons
// and payu for spatial runs.
var optionalTools = []string{"svn", "qsub", "nccmp", "payu"}

// Run returns the check results. Failing checks are reported through the
// results, not through the returned error.
func (s *Service) Run(ctx context.Context, req Request) ([]model.CheckResult, error) {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve work directory: %w", err)
	}

	var results []model.CheckResult
	results = append(results, s.checkTools()...)
	results = append(results, s.checkWorkDir(workDir))
	results = append(results, s.checkProject(req.Config))
	results = append(results, s.checkModules(ctx, req.Config.Modules)...)
	results = append(results, s.checkMetForcing(req.Config))

	return results, nil
}

func (s *Service) checkTools() []model.CheckResult {
	var results []model.CheckResult

	for _, tool := range requiredTools {
		if _, err := s.lookPath(tool); err != nil {
			results = append(results, model.CheckResult{
				ID:      tool + "_available",
				Status:  model.CheckStatusError,
				Message: fmt.Sprintf("%s not found on PATH", tool),
			})
			continue
		}
		results = append(results, model.CheckResult{
			ID:      tool + "_available",
			Status:  model.CheckStatusOK,
			Message: tool + " found on PATH",
		})
	}

	for _, tool := range optionalTools {
		if _, err := s.lookPath(tool); err != nil {
			results = append(results, model.CheckResult{
				ID:      tool + "_available",
				Status:  model.CheckStatusWarning,
				Message: fmt.Sprintf("%s not found on PATH, parts of the workflow will fail", tool),
			})
			continue
		}
		results = append(results, model.CheckResult{
			ID:      tool + "_available",
			Status:  model.CheckStatusOK,
			Message: tool + " found on PATH",
		})
	}

	return results
}

func (s *Service) checkWorkDir(workDir string) model.CheckResult {
	namelistDir := filepath.Join(workDir, conventions.NamelistDir)
	info, err := os.Stat(namelistDir)
	if err != nil || !info.IsDir() {
		return model.CheckResult{
			ID:      "namelist_dir",
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("cannot find %q directory in the work directory", conventions.NamelistDir),
		}
	}

	return model.CheckResult{
		ID:      "namelist_dir",
		Status:  model.CheckStatusOK,
		Message: "namelist directory present",
	}
}

func (s *Service) checkProject(cfg model.Config) model.CheckResult {
	if cfg.Project == "" {
		return model.CheckResult{
			ID:      "project",
			Status:  model.CheckStatusError,
			Message: "project is not set, set it in the config file or via $PROJECT",
		}
	}

	return model.CheckResult{
		ID:      "project",
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("PBS jobs are accounted against project %s", cfg.Project),
	}
}

func (s *Service) checkModules(ctx context.Context, modules []string) []model.CheckResult {
	checker := envmodules.NewChecker(s.runner)

	results := make([]model.CheckResult, 0, len(modules))
	for _, name := range modules {
		avail, err := checker.IsAvail(ctx, name)
		switch {
		case err != nil:
			results = append(results, model.CheckResult{
				ID:      "modules",
				Status:  model.CheckStatusWarning,
				Message: fmt.Sprintf("could not query module %s: %v", name, err),
			})
		case !avail:
			results = append(results, model.CheckResult{
				ID:      "modules",
				Status:  model.CheckStatusError,
				Message: fmt.Sprintf("module %s is not available", name),
			})
		default:
			results = append(results, model.CheckResult{
				ID:      "modules",
				Status:  model.CheckStatusOK,
				Message: fmt.Sprintf("module %s is available", name),
			})
		}
	}

	return results
}

func (s *Service) checkMetForcing(cfg model.Config) model.CheckResult {
	experiment := cfg.Fluxsite.Experiment
	if experiment == "" {
		return model.CheckResult{
			ID:      "met_forcing",
			Status:  model.CheckStatusWarning,
			Message: "no fluxsite experiment configured",
		}
	}

	if _, err := fluxsite.MetForcingFileNames(s.metDir, experiment); err != nil {
		return model.CheckResult{
			ID:      "met_forcing",
			Status:  model.CheckStatusError,
			Message: err.Error(),
		}
	}

	return model.CheckResult{
		ID:      "met_forcing",
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("met forcing files resolve for experiment %q", experiment),
	}
}
