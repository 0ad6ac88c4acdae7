package io

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cable-lsm/benchcab/internal/fluxsite"
	"github.com/cable-lsm/benchcab/internal/model"
)

// ConfigYAMLRepository loads benchmark configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads a benchmark configuration from a YAML file, fills the
// optional keys with their defaults and returns a validated domain model.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.Config, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Config{}, ctx.Err()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	mcfg := cfg.toModel()
	if err := mcfg.Validate(); err != nil {
		return model.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if !fluxsite.ValidExperiment(mcfg.Fluxsite.Experiment) {
		return model.Config{}, fmt.Errorf("unknown fluxsite experiment %q: %w", mcfg.Fluxsite.Experiment, model.ErrNotValid)
	}

	return mcfg, nil
}

// Config represents the YAML structure of the benchcab configuration
// file.
type Config struct {
	Project               string                   `yaml:"project"`
	Modules               []string                 `yaml:"modules"`
	Realisations          []Realisation            `yaml:"realisations"`
	ScienceConfigurations []map[string]interface{} `yaml:"science_configurations"`
	Fluxsite              *FluxsiteConfig          `yaml:"fluxsite,omitempty"`
	Spatial               *SpatialConfig           `yaml:"spatial,omitempty"`
}

// Realisation represents the YAML structure for a realisation entry.
type Realisation struct {
	Name        string                 `yaml:"name"`
	Repo        RepoSpec               `yaml:"repo"`
	Patch       map[string]interface{} `yaml:"patch"`
	PatchRemove map[string]interface{} `yaml:"patch_remove"`
	BuildScript string                 `yaml:"build_script"`
}

// RepoSpec represents the YAML structure for a repository reference.
type RepoSpec struct {
	Git   *GitRepoSpec   `yaml:"git,omitempty"`
	SVN   *SVNRepoSpec   `yaml:"svn,omitempty"`
	Local *LocalRepoSpec `yaml:"local,omitempty"`
}

// GitRepoSpec represents the YAML structure for a git reference.
type GitRepoSpec struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
	Commit string `yaml:"commit"`
}

// SVNRepoSpec represents the YAML structure for a subversion reference.
type SVNRepoSpec struct {
	BranchPath string `yaml:"branch_path"`
	Revision   int    `yaml:"revision"`
}

// LocalRepoSpec represents the YAML structure for a local checkout
// reference.
type LocalRepoSpec struct {
	Path string `yaml:"path"`
}

// FluxsiteConfig represents the YAML structure for the fluxsite settings.
type FluxsiteConfig struct {
	Experiment   string     `yaml:"experiment"`
	Multiprocess *bool      `yaml:"multiprocess"`
	PBS          *PBSConfig `yaml:"pbs,omitempty"`
}

// PBSConfig represents the YAML structure for PBS resources.
type PBSConfig struct {
	NCPUs    int      `yaml:"ncpus"`
	Mem      string   `yaml:"mem"`
	Walltime string   `yaml:"walltime"`
	Storage  []string `yaml:"storage"`
}

// SpatialConfig represents the YAML structure for the spatial settings.
type SpatialConfig struct {
	MetForcings map[string]string `yaml:"met_forcings"`
	Payu        *PayuConfig       `yaml:"payu,omitempty"`
}

// PayuConfig represents the YAML structure for payu settings.
type PayuConfig struct {
	Config map[string]interface{} `yaml:"config"`
	Args   string                 `yaml:"args"`
}

func (c Config) toModel() model.Config {
	cfg := model.Config{
		Project: c.Project,
		Modules: c.Modules,
	}

	// The project defaults to the PBS project of the user session.
	if cfg.Project == "" {
		cfg.Project = os.Getenv("PROJECT")
	}

	for _, r := range c.Realisations {
		cfg.Realisations = append(cfg.Realisations, r.toModel())
	}

	for _, sc := range c.ScienceConfigurations {
		cfg.ScienceConfigurations = append(cfg.ScienceConfigurations, model.ScienceConfig(sc))
	}
	if len(cfg.ScienceConfigurations) == 0 {
		cfg.ScienceConfigurations = model.DefaultScienceConfigurations()
	}

	cfg.Fluxsite = model.FluxsiteConfig{
		Experiment:   model.DefaultExperiment,
		Multiprocess: model.DefaultMultiprocess,
		PBS:          model.DefaultPBSConfig(),
	}
	if c.Fluxsite != nil {
		if c.Fluxsite.Experiment != "" {
			cfg.Fluxsite.Experiment = c.Fluxsite.Experiment
		}
		if c.Fluxsite.Multiprocess != nil {
			cfg.Fluxsite.Multiprocess = *c.Fluxsite.Multiprocess
		}
		if c.Fluxsite.PBS != nil {
			if c.Fluxsite.PBS.NCPUs != 0 {
				cfg.Fluxsite.PBS.NCPUs = c.Fluxsite.PBS.NCPUs
			}
			if c.Fluxsite.PBS.Mem != "" {
				cfg.Fluxsite.PBS.Mem = c.Fluxsite.PBS.Mem
			}
			if c.Fluxsite.PBS.Walltime != "" {
				cfg.Fluxsite.PBS.Walltime = c.Fluxsite.PBS.Walltime
			}
			cfg.Fluxsite.PBS.Storage = c.Fluxsite.PBS.Storage
		}
	}

	cfg.Spatial = model.SpatialConfig{
		MetForcings: model.DefaultSpatialMetForcings(),
	}
	if c.Spatial != nil {
		if len(c.Spatial.MetForcings) > 0 {
			cfg.Spatial.MetForcings = c.Spatial.MetForcings
		}
		if c.Spatial.Payu != nil {
			cfg.Spatial.Payu = model.PayuConfig{
				Config: c.Spatial.Payu.Config,
				Args:   c.Spatial.Payu.Args,
			}
		}
	}

	return cfg
}

func (r Realisation) toModel() model.Realisation {
	m := model.Realisation{
		Name:        r.Name,
		Patch:       r.Patch,
		PatchRemove: r.PatchRemove,
		BuildScript: r.BuildScript,
	}

	if r.Repo.Git != nil {
		m.Repo.Git = &model.GitRepoSpec{
			URL:    r.Repo.Git.URL,
			Branch: r.Repo.Git.Branch,
			Commit: r.Repo.Git.Commit,
		}
	}
	if r.Repo.SVN != nil {
		m.Repo.SVN = &model.SVNRepoSpec{
			BranchPath: r.Repo.SVN.BranchPath,
			Revision:   r.Repo.SVN.Revision,
		}
	}
	if r.Repo.Local != nil {
		m.Repo.Local = &model.LocalRepoSpec{
			Path: r.Repo.Local.Path,
		}
	}

	return m
}
