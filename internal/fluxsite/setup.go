package fluxsite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cable-lsm/benchcab/internal/build"
	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/fsutil"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/namelist"
)

// SetupConfig is the configuration for Setup.
type SetupConfig struct {
	// WorkDir is the benchmark working directory.
	WorkDir string
	// MetDir overrides the met forcing directory.
	MetDir string
	// GridFile overrides the CABLE grid info file.
	GridFile string
	Logger   log.Logger
}

func (c *SetupConfig) defaults() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work directory is required")
	}
	abs, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return fmt.Errorf("resolve work directory: %w", err)
	}
	c.WorkDir = abs

	if c.MetDir == "" {
		c.MetDir = conventions.MetDir
	}
	if c.GridFile == "" {
		c.GridFile = conventions.GridFile
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "fluxsite.Setup"})

	return nil
}

// Setup materialises fluxsite task directories inside the working
// directory.
type Setup struct {
	workDir  string
	metDir   string
	gridFile string
	logger   log.Logger
}

// NewSetup returns a new Setup.
func NewSetup(config SetupConfig) (*Setup, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Setup{
		workDir:  config.WorkDir,
		metDir:   config.MetDir,
		gridFile: config.GridFile,
		logger:   config.Logger,
	}, nil
}

// CreateDirectoryTree creates the fluxsite run directory tree.
func (s *Setup) CreateDirectoryTree() error {
	dirs := []string{
		conventions.FluxsiteRunDir(s.workDir),
		conventions.FluxsiteLogsDir(s.workDir),
		conventions.FluxsiteOutputsDir(s.workDir),
		conventions.FluxsiteTasksDir(s.workDir),
		conventions.FluxsiteAnalysisDir(s.workDir),
		conventions.FluxsiteBitwiseCmpDir(s.workDir),
	}
	for _, dir := range dirs {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return fmt.Errorf("create %q: %w", dir, err)
		}
	}

	return nil
}

// SetupTask prepares the directory a task runs from: cleans artefacts of
// previous runs, copies the namelist files and the executable, and
// patches the CABLE namelist for the task.
func (s *Setup) SetupTask(t Task) error {
	name := t.Name()
	s.logger.Debugf("Setting up task: %s", name)

	taskDir := filepath.Join(conventions.FluxsiteTasksDir(s.workDir), name)
	err := os.MkdirAll(taskDir, 0o755)
	if err != nil {
		return fmt.Errorf("create task directory: %w", err)
	}

	err = s.cleanTask(t)
	if err != nil {
		return err
	}

	err = s.fetchFiles(t)
	if err != nil {
		return err
	}

	return s.patchNamelist(t)
}

// cleanTask removes output, namelist, log files and executables left
// over from previous runs.
func (s *Setup) cleanTask(t Task) error {
	s.logger.Debugf("  Cleaning task")

	taskDir := filepath.Join(conventions.FluxsiteTasksDir(s.workDir), t.Name())
	stale := []string{
		filepath.Join(taskDir, conventions.CableExe),
		filepath.Join(taskDir, conventions.CableNML),
		filepath.Join(taskDir, conventions.CableVegetationNML),
		filepath.Join(taskDir, conventions.CableSoilNML),
		filepath.Join(conventions.FluxsiteOutputsDir(s.workDir), t.OutputFilename()),
		filepath.Join(conventions.FluxsiteLogsDir(s.workDir), t.LogFilename()),
	}
	for _, path := range stale {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %q: %w", path, err)
		}
	}

	return nil
}

// fetchFiles copies the namelist files and the CABLE executable into the
// task directory.
func (s *Setup) fetchFiles(t Task) error {
	taskDir := filepath.Join(conventions.FluxsiteTasksDir(s.workDir), t.Name())
	namelistDir := filepath.Join(s.workDir, conventions.NamelistDir)

	s.logger.Debugf("  Copying namelist files from %s to %s", namelistDir, taskDir)
	err := fsutil.CopyTree(namelistDir, taskDir)
	if err != nil {
		return fmt.Errorf("copy namelist files: %w", err)
	}

	exeSrc := build.ExePath(s.workDir, t.Realisation, false)
	exeDst := filepath.Join(taskDir, conventions.CableExe)

	s.logger.Debugf("  Copying CABLE executable from %s to %s", exeSrc, exeDst)
	err = fsutil.CopyFile(exeSrc, exeDst)
	if err != nil {
		return fmt.Errorf("copy executable: %w", err)
	}

	return nil
}

// patchNamelist layers the namelist patches for the task: the base run
// configuration, then the science configuration, then the realisation
// patches.
func (s *Setup) patchNamelist(t Task) error {
	nmlPath := filepath.Join(conventions.FluxsiteTasksDir(s.workDir), t.Name(), conventions.CableNML)

	s.logger.Debugf("  Adding base configurations to CABLE namelist file %s", nmlPath)
	err := namelist.Patch(nmlPath, map[string]interface{}{
		"cable": map[string]interface{}{
			"filename": map[string]interface{}{
				"met":         filepath.Join(s.metDir, t.MetForcingFile),
				"out":         filepath.Join(conventions.FluxsiteOutputsDir(s.workDir), t.OutputFilename()),
				"log":         filepath.Join(conventions.FluxsiteLogsDir(s.workDir), t.LogFilename()),
				"restart_out": " ",
				"type":        s.gridFile,
			},
			"output": map[string]interface{}{
				"restart": false,
			},
			"fixedCO2": conventions.CableFixedCO2,
			"spinup":   false,
		},
	})
	if err != nil {
		return fmt.Errorf("apply base namelist patch: %w", err)
	}

	s.logger.Debugf("  Adding science configurations to CABLE namelist file %s", nmlPath)
	err = namelist.Patch(nmlPath, t.Science)
	if err != nil {
		return fmt.Errorf("apply science configuration: %w", err)
	}

	if len(t.Realisation.Patch) > 0 {
		s.logger.Debugf("  Adding branch specific configurations to CABLE namelist file %s", nmlPath)
		err = namelist.Patch(nmlPath, t.Realisation.Patch)
		if err != nil {
			return fmt.Errorf("apply realisation patch: %w", err)
		}
	}

	if len(t.Realisation.PatchRemove) > 0 {
		s.logger.Debugf("  Removing branch specific configurations from CABLE namelist file %s", nmlPath)
		err = namelist.PatchRemove(nmlPath, t.Realisation.PatchRemove)
		if err != nil {
			return fmt.Errorf("apply realisation patch_remove: %w", err)
		}
	}

	return nil
}
