// Package envmodules integrates with the environment modules system used
// on HPC systems to provide compilers and libraries.
//
// Modules cannot be loaded into the current process, so commands that
// need them are wrapped in a login shell that loads the modules first.
package envmodules

import (
	"context"
	"strings"

	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// WrapCommand returns an argv that runs script in a login shell after
// purging the module environment and loading the given modules.
func WrapCommand(modules []string, script string) []string {
	parts := make([]string, 0, len(modules)+2)
	parts = append(parts, "module purge")
	for _, m := range modules {
		parts = append(parts, "module load "+m)
	}
	parts = append(parts, script)

	return []string{"bash", "-l", "-c", strings.Join(parts, " && ")}
}

// Checker queries the availability of environment modules.
type Checker struct {
	runner syscmd.Runner
}

// NewChecker returns a Checker that queries modules through a shell.
func NewChecker(runner syscmd.Runner) Checker {
	return Checker{runner: runner}
}

// IsAvail reports whether the named module is available on the system.
func (c Checker) IsAvail(ctx context.Context, name string) (bool, error) {
	// "module avail" reports matches on stderr, the runner merges it
	// into the returned output.
	out, err := c.runner.RunOutput(ctx, syscmd.Command{
		Argv: []string{"bash", "-l", "-c", "module avail -t " + name},
	})
	if err != nil {
		return false, err
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == name || strings.HasPrefix(line, name+"(") || strings.HasPrefix(line, name+"/") {
			return true, nil
		}
	}

	return false, nil
}
