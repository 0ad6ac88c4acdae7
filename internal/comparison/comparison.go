// Package comparison checks pairs of NetCDF model outputs for bitwise
// equality using nccmp.
package comparison

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// Job is a single bitwise comparison between two NetCDF files.
type Job struct {
	Name  string
	FileA string
	FileB string
}

// Observer is notified with the outcome of each finished job. For jobs
// that differ, detail holds the path of the file with the nccmp output.
type Observer func(job Job, outcome model.ComparisonOutcome, detail string)

// EngineConfig is the configuration for an Engine.
type EngineConfig struct {
	// OutputDir receives the nccmp output of comparisons that differ.
	OutputDir string
	Runner    syscmd.Runner
	Logger    log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "comparison.Engine"})

	return nil
}

// Engine runs bitwise comparisons.
type Engine struct {
	outputDir string
	runner    syscmd.Runner
	logger    log.Logger
}

// NewEngine returns a new Engine.
func NewEngine(config EngineConfig) (*Engine, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Engine{
		outputDir: config.OutputDir,
		runner:    config.Runner,
		logger:    config.Logger,
	}, nil
}

// Compare runs jobs with at most concurrency running at once. Outcomes
// are reported through observe, a pair that differs is not an error. The
// returned error reflects infrastructure failures only.
func (e *Engine) Compare(ctx context.Context, jobs []Job, concurrency int, observe Observer) error {
	if observe == nil {
		observe = func(Job, model.ComparisonOutcome, string) {}
	}
	if concurrency < 1 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.compare(ctx, job, observe)
		})
	}

	return g.Wait()
}

func (e *Engine) compare(ctx context.Context, job Job, observe Observer) error {
	baseA := filepath.Base(job.FileA)
	baseB := filepath.Base(job.FileB)
	e.logger.Debugf("Comparing files %s and %s bitwise...", baseA, baseB)

	output, err := e.runner.RunOutput(ctx, syscmd.Command{
		Argv: []string{"nccmp", "-df", job.FileA, job.FileB},
	})

	switch {
	case err == nil:
		e.logger.Infof("Success: files %s %s are identical", baseA, baseB)
		observe(job, model.ComparisonOutcomeIdentical, "")

	case errors.Is(err, syscmd.ErrExit):
		outputFile := filepath.Join(e.outputDir, job.Name+".txt")
		werr := os.WriteFile(outputFile, []byte(output), 0o644)
		if werr != nil {
			return fmt.Errorf("write comparison output %q: %w", outputFile, werr)
		}
		e.logger.Errorf("Failure: files %s %s differ. Results of diff have been written to %s", baseA, baseB, outputFile)
		observe(job, model.ComparisonOutcomeDiffer, outputFile)

	default:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Errorf("Could not compare files %s %s: %v", baseA, baseB, err)
		observe(job, model.ComparisonOutcomeError, err.Error())
	}

	return nil
}
