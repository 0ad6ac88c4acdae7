package syscmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cable-lsm/benchcab/internal/log"
)

// ErrExit is returned when a command starts but exits with a non-zero
// status. Callers can use it to tell execution failures apart from
// failures to launch.
var ErrExit = errors.New("command exited with non-zero status")

// Command describes a single external command invocation. Stderr is
// always merged into stdout.
type Command struct {
	// Argv is the command and its arguments.
	Argv []string
	// Dir is the working directory. Empty inherits the current one.
	Dir string
	// Env are extra KEY=VALUE pairs appended to the parent environment.
	Env []string
	// Stdout receives the combined output. Nil discards it.
	Stdout io.Writer
}

// Runner executes external commands.
type Runner interface {
	// Run executes the command and waits for it to finish.
	Run(ctx context.Context, cmd Command) error
	// RunOutput executes the command and returns its combined output.
	RunOutput(ctx context.Context, cmd Command) (string, error)
}

type runner struct {
	logger log.Logger
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner(logger log.Logger) Runner {
	return runner{logger: logger.WithValues(log.Kv{"svc": "syscmd.Runner"})}
}

func (r runner) Run(ctx context.Context, cmd Command) error {
	c, err := r.newCmd(ctx, cmd)
	if err != nil {
		return err
	}

	out := cmd.Stdout
	if out == nil {
		out = io.Discard
	}
	c.Stdout = out
	c.Stderr = c.Stdout

	err = c.Run()
	if err != nil {
		return wrapRunError(cmd.Argv, err, "")
	}

	return nil
}

func (r runner) RunOutput(ctx context.Context, cmd Command) (string, error) {
	c, err := r.newCmd(ctx, cmd)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	c.Stdout = &b
	c.Stderr = c.Stdout

	err = c.Run()
	if err != nil {
		return b.String(), wrapRunError(cmd.Argv, err, b.String())
	}

	return b.String(), nil
}

func (r runner) newCmd(ctx context.Context, cmd Command) (*exec.Cmd, error) {
	if len(cmd.Argv) == 0 {
		return nil, fmt.Errorf("command is empty")
	}

	r.logger.Debugf("Executing command: %s", strings.Join(cmd.Argv, " "))

	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	return c, nil
}

func wrapRunError(argv []string, err error, output string) error {
	name := strings.Join(argv, " ")

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if output != "" {
			return fmt.Errorf("%q: %w: %s", name, ErrExit, strings.TrimSpace(output))
		}
		return fmt.Errorf("%q: %w", name, ErrExit)
	}

	return fmt.Errorf("could not run %q: %w", name, err)
}
