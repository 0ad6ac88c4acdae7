package spatial

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cable-lsm/benchcab/internal/build"
	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/maputil"
	"github.com/cable-lsm/benchcab/internal/namelist"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

// SetupConfig is the configuration for Setup.
type SetupConfig struct {
	// WorkDir is the benchmark working directory.
	WorkDir string
	Runner  syscmd.Runner
	Logger  log.Logger
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

	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "spatial.Setup"})

	return nil
}

// Setup materialises spatial task directories by cloning and configuring
// payu experiments.
type Setup struct {
	workDir string
	runner  syscmd.Runner
	logger  log.Logger
}

// NewSetup returns a new Setup.
func NewSetup(config SetupConfig) (*Setup, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Setup{
		workDir: config.WorkDir,
		runner:  config.Runner,
		logger:  config.Logger,
	}, nil
}

// CreateDirectoryTree creates the spatial run directory tree.
func (s *Setup) CreateDirectoryTree() error {
	dirs := []string{
		conventions.SpatialRunDir(s.workDir),
		conventions.SpatialTasksDir(s.workDir),
		conventions.PayuLaboratoryDir(s.workDir),
	}
	for _, dir := range dirs {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return fmt.Errorf("create %q: %w", dir, err)
		}
	}

	return nil
}

// SetupTask prepares the payu experiment a task runs from: clones the
// experiment repository, rewrites its payu configuration and patches the
// CABLE namelist for the task.
func (s *Setup) SetupTask(ctx context.Context, t Task, payuConfig map[string]interface{}) error {
	s.logger.Debugf("Setting up task: %s", t.Name())

	err := s.cloneExperiment(ctx, t)
	if err != nil {
		return err
	}

	err = s.configureExperiment(t, payuConfig)
	if err != nil {
		return err
	}

	return s.patchNamelist(t)
}

// cloneExperiment clones the payu experiment repository into the task
// directory.
func (s *Setup) cloneExperiment(ctx context.Context, t Task) error {
	taskDir := filepath.Join(conventions.SpatialTasksDir(s.workDir), t.Name())
	s.logger.Debugf("git clone %s %s", t.PayuExperiment, taskDir)

	err := s.runner.Run(ctx, syscmd.Command{
		Argv: []string{"git", "clone", "--", t.PayuExperiment, taskDir},
	})
	if err != nil {
		return fmt.Errorf("clone payu experiment %q: %w", t.PayuExperiment, err)
	}

	return nil
}

// configureExperiment rewrites the payu config.yaml of the cloned
// experiment so it runs the realisation executable in the benchmark
// laboratory.
func (s *Setup) configureExperiment(t Task, payuConfig map[string]interface{}) error {
	taskDir := filepath.Join(conventions.SpatialTasksDir(s.workDir), t.Name())
	configPath := filepath.Join(taskDir, "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read payu config %q: %w", configPath, err)
	}

	var config map[string]interface{}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return fmt.Errorf("unmarshal payu config %q: %w", configPath, err)
	}
	if config == nil {
		config = map[string]interface{}{}
	}

	s.logger.Debugf("  Updating experiment config parameters in %s", configPath)

	if len(payuConfig) > 0 {
		config = maputil.DeepUpdate(config, payuConfig)
	}

	config["exe"] = build.ExePath(s.workDir, t.Realisation, true)

	// Payu resolves inputs listed here before the ones baked into the
	// experiment.
	if _, ok := config["input"]; !ok {
		config["input"] = []interface{}{}
	}

	config["laboratory"] = conventions.PayuLaboratoryDir(s.workDir)

	out, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal payu config: %w", err)
	}
	err = os.WriteFile(configPath, out, 0o644)
	if err != nil {
		return fmt.Errorf("write payu config %q: %w", configPath, err)
	}

	return nil
}

// patchNamelist layers the science configuration and the realisation
// patches over the experiment namelist.
func (s *Setup) patchNamelist(t Task) error {
	nmlPath := filepath.Join(conventions.SpatialTasksDir(s.workDir), t.Name(), conventions.CableNML)

	s.logger.Debugf("  Adding science configurations to CABLE namelist file %s", nmlPath)
	err := namelist.Patch(nmlPath, t.Science)
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
