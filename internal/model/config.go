package model

import (
	"fmt"
)

// Config is the fully resolved benchcab configuration for a benchmark run.
type Config struct {
	// Project is the NCI project code used for PBS accounting.
	Project string
	// Modules are the environment modules loaded when building and
	// running CABLE.
	Modules []string
	// Realisations are the model versions under test.
	Realisations []Realisation
	// ScienceConfigurations are the namelist patches defining each
	// science scenario.
	ScienceConfigurations []ScienceConfig
	// Fluxsite configures single-site offline runs.
	Fluxsite FluxsiteConfig
	// Spatial configures global payu-driven runs.
	Spatial SpatialConfig
}

// ScienceConfig is a science scenario expressed as a namelist patch. The
// top level keys name namelist groups, nested maps address derived type
// members.
type ScienceConfig map[string]interface{}

// FluxsiteConfig configures the fluxsite benchmark suite.
type FluxsiteConfig struct {
	// Experiment selects the met forcing set, either an experiment name
	// or a single site identifier.
	Experiment string
	// Multiprocess enables concurrent task execution inside the PBS job.
	Multiprocess bool
	// PBS holds the resources requested for the job script.
	PBS PBSConfig
}

// PBSConfig holds the PBS resource directives for the fluxsite job script.
type PBSConfig struct {
	NCPUs    int
	Mem      string
	Walltime string
	// Storage lists extra PBS storage flags (for example "scratch/ab12").
	Storage []string
}

// SpatialConfig configures the spatial benchmark suite.
type SpatialConfig struct {
	// MetForcings maps a forcing name to the URL of a payu experiment
	// configured with that forcing.
	MetForcings map[string]string
	// Payu configures the payu invocations.
	Payu PayuConfig
}

// PayuConfig holds payu specific settings.
type PayuConfig struct {
	// Config is merged into each experiment's config.yaml.
	Config map[string]interface{}
	// Args are extra command line arguments passed to payu run.
	Args string
}

// Validate validates the benchmark configuration.
func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project is required (set it in the config file or via $PROJECT): %w", ErrNotValid)
	}

	if len(c.Modules) == 0 {
		return fmt.Errorf("modules is required: %w", ErrNotValid)
	}

	if len(c.Realisations) == 0 {
		return fmt.Errorf("realisations is required: %w", ErrNotValid)
	}

	names := map[string]struct{}{}
	for i := range c.Realisations {
		r := &c.Realisations[i]
		if err := r.Validate(); err != nil {
			return fmt.Errorf("realisations[%d]: %w", i, err)
		}
		name := r.ResolvedName()
		if _, ok := names[name]; ok {
			return fmt.Errorf("realisations have duplicate name %q: %w", name, ErrNotValid)
		}
		names[name] = struct{}{}
	}

	if len(c.ScienceConfigurations) == 0 {
		return fmt.Errorf("science_configurations is required: %w", ErrNotValid)
	}
	for i, sc := range c.ScienceConfigurations {
		if len(sc) == 0 {
			return fmt.Errorf("science_configurations[%d] is empty: %w", i, ErrNotValid)
		}
	}

	if err := c.Fluxsite.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate validates the fluxsite configuration.
func (c *FluxsiteConfig) Validate() error {
	if c.Experiment == "" {
		return fmt.Errorf("fluxsite experiment is required: %w", ErrNotValid)
	}

	if c.PBS.NCPUs <= 0 {
		return fmt.Errorf("fluxsite pbs ncpus must be positive: %w", ErrNotValid)
	}
	if c.PBS.Mem == "" {
		return fmt.Errorf("fluxsite pbs mem is required: %w", ErrNotValid)
	}
	if c.PBS.Walltime == "" {
		return fmt.Errorf("fluxsite pbs walltime is required: %w", ErrNotValid)
	}

	return nil
}
