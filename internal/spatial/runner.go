package spatial

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "spatial.Runner"})

	return nil
}

// Runner dispatches spatial tasks to payu.
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

// RunTasks dispatches tasks sequentially. Payu queues the model runs
// itself, so each dispatch is quick, but a failing dispatch aborts the
// remaining tasks.
func (r *Runner) RunTasks(ctx context.Context, tasks []Task, payuArgs string, observe TaskObserver) error {
	if observe == nil {
		observe = func(Task, model.TaskStatus, error) {}
	}

	for _, t := range tasks {
		observe(t, model.TaskStatusRunning, nil)
		err := r.runTask(ctx, t, payuArgs)
		if err != nil {
			observe(t, model.TaskStatusFailed, err)
			return fmt.Errorf("run task %q: %w", t.Name(), err)
		}
		observe(t, model.TaskStatusCompleted, nil)
	}

	return nil
}

// runTask runs payu inside the task directory.
func (r *Runner) runTask(ctx context.Context, t Task, payuArgs string) error {
	taskDir := filepath.Join(conventions.SpatialTasksDir(r.workDir), t.Name())
	argv := append([]string{"payu", "run"}, strings.Fields(payuArgs)...)

	r.logger.Debugf("Running task %s: %s", t.Name(), strings.Join(argv, " "))

	return r.runner.Run(ctx, syscmd.Command{
		Argv: argv,
		Dir:  taskDir,
	})
}
