package lib

import (
	"context"
	"fmt"

	"github.com/cable-lsm/benchcab/internal/app/build"
	"github.com/cable-lsm/benchcab/internal/app/checkout"
	"github.com/cable-lsm/benchcab/internal/app/fluxsitecompare"
	"github.com/cable-lsm/benchcab/internal/app/fluxsiterun"
	"github.com/cable-lsm/benchcab/internal/app/fluxsitesetup"
	"github.com/cable-lsm/benchcab/internal/app/fluxsitesubmit"
	"github.com/cable-lsm/benchcab/internal/app/spatialrun"
	"github.com/cable-lsm/benchcab/internal/app/spatialsetup"
)

// Checkout checks out all configured CABLE realisations under src/ in the
// work directory and records their revisions.
//
// Returns an error matching [ErrAlreadyExists] when a realisation is
// already checked out. Use [Client.Clean] with [CleanRealisations] first to
// retry a checkout.
func (c *Client) Checkout(ctx context.Context, cfg *BenchConfig) ([]Realisation, error) {
	svc, err := checkout.NewService(checkout.ServiceConfig{
		Repository: c.repo,
		Runner:     c.runner,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	records, err := svc.Run(ctx, checkout.Request{
		Config:     cfg.cfg,
		ConfigPath: cfg.path,
		WorkDir:    c.workDir,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalRealisations(records), nil
}

// Build compiles CABLE for every checked out realisation using the
// configured environment modules. Set mpi to produce the MPI executable
// used by the spatial tests instead of the serial one.
func (c *Client) Build(ctx context.Context, cfg *BenchConfig, mpi bool) error {
	svc, err := build.NewService(build.ServiceConfig{
		Runner: c.runner,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Run(ctx, build.Request{
		Config:  cfg.cfg,
		WorkDir: c.workDir,
		MPI:     mpi,
	})
	if err != nil {
		return mapError(err)
	}

	return nil
}

// FluxsiteSetup materialises the fluxsite run directory tree, one task
// directory per realisation, science configuration and met forcing, and
// records the pending tasks and comparisons.
//
// Returns the generated task names.
func (c *Client) FluxsiteSetup(ctx context.Context, cfg *BenchConfig) ([]string, error) {
	svc, err := fluxsitesetup.NewService(fluxsitesetup.ServiceConfig{
		Repository: c.repo,
		MetDir:     c.metDir,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, fluxsitesetup.Request{
		Config:     cfg.cfg,
		ConfigPath: cfg.path,
		WorkDir:    c.workDir,
	})
	if err != nil {
		return nil, mapError(err)
	}

	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name()
	}
	return names, nil
}

// FluxsiteRunTasks executes the fluxsite tasks on the current node and
// records their outcomes. Task failures are recorded in the run state
// rather than returned as an error, inspect them with [Client.Status].
func (c *Client) FluxsiteRunTasks(ctx context.Context, cfg *BenchConfig) error {
	svc, err := fluxsiterun.NewService(fluxsiterun.ServiceConfig{
		Repository: c.repo,
		Runner:     c.runner,
		MetDir:     c.metDir,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Run(ctx, fluxsiterun.Request{
		Config:     cfg.cfg,
		ConfigPath: cfg.path,
		WorkDir:    c.workDir,
	})
	if err != nil {
		return mapError(err)
	}

	return nil
}

// FluxsiteBitwiseCmp compares the outputs of task pairs that share a met
// forcing and science configuration with nccmp and records the outcomes.
// Differences are recorded in the run state rather than returned as an
// error, inspect them with [Client.Status].
func (c *Client) FluxsiteBitwiseCmp(ctx context.Context, cfg *BenchConfig) error {
	svc, err := fluxsitecompare.NewService(fluxsitecompare.ServiceConfig{
		Repository: c.repo,
		Runner:     c.runner,
		MetDir:     c.metDir,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Run(ctx, fluxsitecompare.Request{
		Config:     cfg.cfg,
		ConfigPath: cfg.path,
		WorkDir:    c.workDir,
	})
	if err != nil {
		return mapError(err)
	}

	return nil
}

// FluxsiteSubmitJob generates the fluxsite PBS job script and submits it
// with qsub. Pass nil opts for defaults.
//
// Returns the PBS job identifier.
func (c *Client) FluxsiteSubmitJob(ctx context.Context, cfg *BenchConfig, opts *SubmitOpts) (string, error) {
	if opts == nil {
		opts = &SubmitOpts{}
	}

	svc, err := fluxsitesubmit.NewService(fluxsitesubmit.ServiceConfig{
		Repository: c.repo,
		Runner:     c.runner,
		Logger:     c.logger,
	})
	if err != nil {
		return "", fmt.Errorf("could not create service: %w", err)
	}

	jobID, err := svc.Run(ctx, fluxsitesubmit.Request{
		Config:         cfg.cfg,
		ConfigPath:     cfg.path,
		WorkDir:        c.workDir,
		BenchcabPath:   opts.BenchcabPath,
		Verbose:        opts.Verbose,
		SkipBitwiseCmp: opts.SkipBitwiseCmp,
	})
	if err != nil {
		return "", mapError(err)
	}

	return jobID, nil
}

// SpatialSetup materialises the payu control directories for the spatial
// tasks and records the pending tasks.
//
// Returns the generated task names.
func (c *Client) SpatialSetup(ctx context.Context, cfg *BenchConfig) ([]string, error) {
	svc, err := spatialsetup.NewService(spatialsetup.ServiceConfig{
		Repository: c.repo,
		Runner:     c.runner,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, spatialsetup.Request{
		Config:     cfg.cfg,
		ConfigPath: cfg.path,
		WorkDir:    c.workDir,
	})
	if err != nil {
		return nil, mapError(err)
	}

	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name()
	}
	return names, nil
}

// SpatialRunTasks dispatches the spatial tasks through payu. The runs
// continue on the scheduler after dispatch, payu owns them from there.
func (c *Client) SpatialRunTasks(ctx context.Context, cfg *BenchConfig) error {
	svc, err := spatialrun.NewService(spatialrun.ServiceConfig{
		Repository: c.repo,
		Runner:     c.runner,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Run(ctx, spatialrun.Request{
		Config:     cfg.cfg,
		ConfigPath: cfg.path,
		WorkDir:    c.workDir,
	})
	if err != nil {
		return mapError(err)
	}

	return nil
}
