// Package workdir manages cleanup of the benchmark working directory.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/log"
)

// CleanerConfig is the configuration for a Cleaner.
type CleanerConfig struct {
	// WorkDir is the benchmark working directory.
	WorkDir string
	Logger  log.Logger
}

func (c *CleanerConfig) defaults() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work directory is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "workdir.Cleaner"})

	return nil
}

// Cleaner removes benchmark artefacts from the working directory.
type Cleaner struct {
	workDir string
	logger  log.Logger
}

// NewCleaner returns a new Cleaner.
func NewCleaner(config CleanerConfig) (*Cleaner, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Cleaner{
		workDir: config.WorkDir,
		logger:  config.Logger,
	}, nil
}

// CleanRealisations removes the checked out CABLE source trees. Local
// realisations are symlinked into the source directory, the links are
// removed first so their targets are never touched.
func (c *Cleaner) CleanRealisations() error {
	srcDir := filepath.Join(c.workDir, conventions.SrcDir)

	entries, err := os.ReadDir(srcDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %q: %w", srcDir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(srcDir, entry.Name())
		info, err := os.Lstat(path)
		if err != nil {
			return fmt.Errorf("stat %q: %w", path, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			err := os.Remove(path)
			if err != nil {
				return fmt.Errorf("unlink %q: %w", path, err)
			}
		}
	}

	err = os.RemoveAll(srcDir)
	if err != nil {
		return fmt.Errorf("remove %q: %w", srcDir, err)
	}
	c.logger.Debugf("Removed %s", srcDir)

	return nil
}

// CleanSubmissions removes the run directories and the PBS job script
// and its scheduler output files.
func (c *Cleaner) CleanSubmissions() error {
	runDir := filepath.Join(c.workDir, conventions.RunDir)
	err := os.RemoveAll(runDir)
	if err != nil {
		return fmt.Errorf("remove %q: %w", runDir, err)
	}
	c.logger.Debugf("Removed %s", runDir)

	jobFiles, err := filepath.Glob(filepath.Join(c.workDir, conventions.QsubFile+"*"))
	if err != nil {
		return fmt.Errorf("glob job files: %w", err)
	}
	for _, path := range jobFiles {
		err := os.Remove(path)
		if err != nil {
			return fmt.Errorf("remove %q: %w", path, err)
		}
		c.logger.Debugf("Removed %s", path)
	}

	return nil
}
