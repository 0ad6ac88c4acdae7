package fluxsite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// TaskObserver is notified as tasks change state while running.
type TaskObserver func(task Task, status model.TaskStatus, taskErr error)

// RunnerConfig is the configuration for a Runner.
type RunnerConfig struct {
	// WorkDir is the benchmark working directory.
	WorkDir string
	Runner  syscmd.Runner
	Logger  log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work directory is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "fluxsite.Runner"})

	return nil
}

// Runner executes fluxsite tasks.
type Runner struct {
	workDir string
	runner  syscmd.Runner
	logger  log.Logger
}

// NewRunner returns a new Runner.
func NewRunner(config RunnerConfig) (*Runner, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Runner{
		workDir: config.WorkDir,
		runner:  config.Runner,
		logger:  config.Logger,
	}, nil
}

// RunTasks executes tasks with at most concurrency running at once. A
// failing model run is reported through observe and does not abort the
// remaining tasks, comparisons can still run on whatever outputs were
// produced. The returned error reflects infrastructure failures only,
// such as a cancelled context.
func (r *Runner) RunTasks(ctx context.Context, tasks []Task, concurrency int, observe TaskObserver) error {
	if observe == nil {
		observe = func(Task, model.TaskStatus, error) {}
	}
	if concurrency < 1 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, t := range tasks {
		t := t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			observe(t, model.TaskStatusRunning, nil)
			err := r.runTask(ctx, t)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Errorf("CABLE returned an error for task %s: %v", t.Name(), err)
				observe(t, model.TaskStatusFailed, err)
				return nil
			}

			observe(t, model.TaskStatusCompleted, nil)
			return nil
		})
	}

	return g.Wait()
}

// runTask runs the CABLE executable inside the task directory, capturing
// standard output.
func (r *Runner) runTask(ctx context.Context, t Task) error {
	taskDir := filepath.Join(conventions.FluxsiteTasksDir(r.workDir), t.Name())
	stdoutPath := filepath.Join(taskDir, conventions.CableStdout)

	r.logger.Debugf("Running task %s, CABLE standard output saved in %s", t.Name(), stdoutPath)

	stdout, err := os.Create(stdoutPath)
	if err != nil {
		return fmt.Errorf("create %q: %w", stdoutPath, err)
	}
	defer stdout.Close()

	return r.runner.Run(ctx, syscmd.Command{
		Argv:   []string{"./" + conventions.CableExe, conventions.CableNML},
		Dir:    taskDir,
		Stdout: stdout,
	})
}
