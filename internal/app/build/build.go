package build

import (
	"context"
	"fmt"
	"path/filepath"

	cablebuild "github.com/cable-lsm/benchcab/internal/build"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// ServiceConfig is the configuration for the build service.
type ServiceConfig struct {
	Runner syscmd.Runner
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Build"})
	return nil
}

// Service compiles the CABLE executables of every realisation.
type Service struct {
	runner syscmd.Runner
	logger log.Logger
}

// NewService creates a new build service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		runner: cfg.Runner,
		logger: cfg.Logger,
	}, nil
}

// Request represents the build request parameters.
type Request struct {
	Config  model.Config
	WorkDir string
	// MPI selects the MPI executable variant.
	MPI bool
}

// Run builds every realisation in order. The first failure aborts the
// phase.
func (s *Service) Run(ctx context.Context, req Request) error {
	workDir, err := filepath.Abs(req.WorkDir)
	if err != nil {
		return fmt.Errorf("could not resolve work directory: %w", err)
	}

	builder, err := cablebuild.NewBuilder(cablebuild.BuilderConfig{
		Runner: s.runner,
		Logger: s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create builder: %w", err)
	}

	for _, r := range req.Config.Realisations {
		name := r.ResolvedName()

		if err := builder.Build(ctx, workDir, r, req.Config.Modules, req.MPI); err != nil {
			return fmt.Errorf("could not build realisation %q: %w", name, err)
		}

		s.logger.Infof("Successfully compiled CABLE for realisation %s", name)
	}

	return nil
}
