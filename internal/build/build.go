// Package build compiles CABLE executables from realisation checkouts.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/envmodules"
	"github.com/cable-lsm/benchcab/internal/fsutil"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// BuilderConfig is the configuration for a Builder.
type BuilderConfig struct {
	Runner syscmd.Runner
	Logger log.Logger
}

func (c *BuilderConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "build.Builder"})

	return nil
}

// Builder compiles CABLE from a realisation checkout.
type Builder struct {
	runner syscmd.Runner
	logger log.Logger
}

// NewBuilder returns a new Builder.
func NewBuilder(config BuilderConfig) (*Builder, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Builder{
		runner: config.Runner,
		logger: config.Logger,
	}, nil
}

// Build compiles a realisation. Realisations with a custom build script
// run that script, everything else follows the default offline make
// build: stage the Fortran sources into a temporary directory, run make
// with the module toolchain, then move the executable into place.
func (b *Builder) Build(ctx context.Context, workDir string, r model.Realisation, modules []string, mpi bool) error {
	name := r.ResolvedName()

	if r.BuildScript != "" {
		b.logger.Infof("Compiling CABLE using custom build script for realisation %s", name)
		err := b.customBuild(ctx, workDir, r, modules)
		if err != nil {
			return fmt.Errorf("custom build of %q failed: %w", name, err)
		}
		return nil
	}

	mode := "serially"
	if mpi {
		mode = "with MPI"
	}
	b.logger.Infof("Compiling CABLE %s for realisation %s...", mode, name)

	err := b.stageSources(workDir, r, mpi)
	if err != nil {
		return fmt.Errorf("staging sources of %q failed: %w", name, err)
	}

	err = b.runMake(ctx, workDir, r, modules, mpi)
	if err != nil {
		return fmt.Errorf("compiling %q failed: %w", name, err)
	}

	err = installExe(workDir, r, mpi)
	if err != nil {
		return fmt.Errorf("installing executable of %q failed: %w", name, err)
	}

	return nil
}

// ExePath returns the path of the built executable for a realisation.
func ExePath(workDir string, r model.Realisation, mpi bool) string {
	exe := conventions.CableExe
	if mpi {
		exe = conventions.CableMPIExe
	}

	return filepath.Join(sourceRoot(workDir, r), "offline", exe)
}

func sourceRoot(workDir string, r model.Realisation) string {
	return filepath.Join(conventions.RealisationPath(workDir, r.ResolvedName()), r.SourceSubdir())
}

func tmpBuildDir(workDir string, r model.Realisation, mpi bool) string {
	tmp := conventions.TmpBuildDir
	if mpi {
		tmp = conventions.TmpBuildDirMPI
	}

	return filepath.Join(sourceRoot(workDir, r), tmp)
}

// stageSources copies the offline Fortran sources and Makefile into the
// temporary build directory.
func (b *Builder) stageSources(workDir string, r model.Realisation, mpi bool) error {
	srcRoot := sourceRoot(workDir, r)
	tmpDir := tmpBuildDir(workDir, r, mpi)

	err := os.MkdirAll(tmpDir, 0o755)
	if err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}

	for _, pattern := range conventions.OfflineSourceFiles {
		matches, err := filepath.Glob(filepath.Join(srcRoot, pattern))
		if err != nil {
			return fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				continue
			}
			err = fsutil.CopyFile(m, filepath.Join(tmpDir, filepath.Base(m)))
			if err != nil {
				return err
			}
		}
	}

	return fsutil.CopyFile(filepath.Join(srcRoot, "offline", "Makefile"), filepath.Join(tmpDir, "Makefile"))
}

// runMake runs make inside the temporary build directory with the Intel
// toolchain environment. The netcdf paths reference $NETCDF_ROOT which is
// only defined once the modules are loaded, so they are set inside the
// wrapped shell.
func (b *Builder) runMake(ctx context.Context, workDir string, r model.Realisation, modules []string, mpi bool) error {
	fc, makeCmd := "ifort", "make"
	if mpi {
		fc, makeCmd = "mpif90", "make mpi"
	}

	script := fmt.Sprintf(
		`NCDIR="$NETCDF_ROOT/lib/Intel" NCMOD="$NETCDF_ROOT/include/Intel" `+
			`CFLAGS="-O2 -fp-model precise" LDFLAGS="-L$NETCDF_ROOT/lib/Intel -O0" `+
			`LD="-lnetcdf -lnetcdff" FC=%s %s`, fc, makeCmd)

	return b.runner.Run(ctx, syscmd.Command{
		Argv: envmodules.WrapCommand(modules, script),
		Dir:  tmpBuildDir(workDir, r, mpi),
	})
}

func installExe(workDir string, r model.Realisation, mpi bool) error {
	exe := conventions.CableExe
	if mpi {
		exe = conventions.CableMPIExe
	}

	src := filepath.Join(tmpBuildDir(workDir, r, mpi), exe)
	err := os.Rename(src, ExePath(workDir, r, mpi))
	if err != nil {
		return fmt.Errorf("move executable: %w", err)
	}

	return nil
}

// customBuild copies the user supplied build script, strips the lines
// that call the environment modules system and runs it with the
// configured modules loaded instead.
func (b *Builder) customBuild(ctx context.Context, workDir string, r model.Realisation, modules []string) error {
	scriptPath := filepath.Join(conventions.RealisationPath(workDir, r.ResolvedName()), r.BuildScript)

	info, err := os.Stat(scriptPath)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("build script %q could not be found, "+
			"do you need to set a different 'build_script' in the configuration?: %w", scriptPath, model.ErrNotFound)
	}

	scriptDir := filepath.Dir(scriptPath)
	tmpScript := filepath.Join(scriptDir, "tmp-build.sh")

	b.logger.Debugf("Copying %s to %s", scriptPath, tmpScript)
	err = fsutil.CopyFile(scriptPath, tmpScript)
	if err != nil {
		return err
	}

	err = os.Chmod(tmpScript, info.Mode().Perm()|0o100)
	if err != nil {
		return fmt.Errorf("chmod build script: %w", err)
	}

	b.logger.Debugf("Removing environment module calls from %s", filepath.Base(tmpScript))
	err = RemoveModuleLines(tmpScript)
	if err != nil {
		return err
	}

	return b.runner.Run(ctx, syscmd.Command{
		Argv: envmodules.WrapCommand(modules, "./tmp-build.sh"),
		Dir:  scriptDir,
	})
}

// RemoveModuleLines rewrites a shell script dropping every line that
// invokes the environment modules system.
func RemoveModuleLines(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read build script: %w", err)
	}

	var kept []string
	for _, line := range strings.Split(string(contents), "\n") {
		if slices.Contains(shellWords(line), "module") {
			continue
		}
		kept = append(kept, line)
	}

	err = os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o755)
	if err != nil {
		return fmt.Errorf("write build script: %w", err)
	}

	return nil
}

// shellWords splits a script line into words, dropping comments. A rough
// tokenisation is enough to spot "module" invocations.
func shellWords(line string) []string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return strings.Fields(line)
}
