package lib

import (
	"context"
	"fmt"

	"github.com/cable-lsm/benchcab/internal/app/clean"
	"github.com/cable-lsm/benchcab/internal/app/doctor"
	"github.com/cable-lsm/benchcab/internal/app/status"
)

// Status returns the recorded benchmark state for the work directory,
// realisations, tasks and comparisons, refreshed with the live PBS job
// state when a job was submitted and qstat is available.
//
// Returns an error matching [ErrNotFound] when no benchmark run has been
// recorded for the work directory.
func (c *Client) Status(ctx context.Context) (*RunReport, error) {
	svc, err := status.NewService(status.ServiceConfig{
		Repository: c.repo,
		Runner:     c.runner,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	report, err := svc.Run(ctx, status.Request{
		WorkDir: c.workDir,
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalReport(*report)
	return &out, nil
}

// Clean removes benchmark files created under the work directory. See the
// [CleanTarget] constants for what each target removes.
func (c *Client) Clean(ctx context.Context, target CleanTarget) error {
	svc, err := clean.NewService(clean.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Run(ctx, clean.Request{
		WorkDir: c.workDir,
		Target:  clean.Target(target),
	})
	if err != nil {
		return mapError(err)
	}

	return nil
}

// Doctor runs preflight checks against the configuration and the
// environment: required commands, environment modules, the met forcing
// directory and work directory permissions.
//
// Check failures are reported in the results, not as an error.
func (c *Client) Doctor(ctx context.Context, cfg *BenchConfig) ([]CheckResult, error) {
	svc, err := doctor.NewService(doctor.ServiceConfig{
		Runner: c.runner,
		MetDir: c.metDir,
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	results, err := svc.Run(ctx, doctor.Request{
		Config:  cfg.cfg,
		WorkDir: c.workDir,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalCheckResults(results), nil
}
