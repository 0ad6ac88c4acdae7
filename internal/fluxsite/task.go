// Package fluxsite generates and runs the single site benchmark tasks.
package fluxsite

import (
	"fmt"
	"strings"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/model"
)

// Task is a single fluxsite model execution: one realisation run under
// one science configuration against one met forcing.
type Task struct {
	Realisation      model.Realisation
	RealisationIndex int
	MetForcingFile   string
	ScienceIndex     int
	Science          model.ScienceConfig
}

// Name returns the naming convention used for this task,
// "<met_base>_R<realisation>_S<science>".
func (t Task) Name() string {
	base, _, _ := strings.Cut(t.MetForcingFile, ".")
	return fmt.Sprintf("%s_R%d_S%d", base, t.RealisationIndex, t.ScienceIndex)
}

// OutputFilename returns the naming convention used for the NetCDF
// output file.
func (t Task) OutputFilename() string {
	return t.Name() + "_out.nc"
}

// LogFilename returns the naming convention used for the CABLE log file.
func (t Task) LogFilename() string {
	return t.Name() + "_log.txt"
}

// TasksFromConfig expands a benchmark configuration into the ordered
// task list. An empty metDir selects the PLUMBER2 met forcing directory.
func TasksFromConfig(cfg model.Config, metDir string) ([]Task, error) {
	if len(cfg.Realisations) == 0 {
		return nil, fmt.Errorf("no realisations configured: %w", model.ErrNotValid)
	}
	if len(cfg.ScienceConfigurations) == 0 {
		return nil, fmt.Errorf("no science configurations configured: %w", model.ErrNotValid)
	}

	if metDir == "" {
		metDir = conventions.MetDir
	}

	metFiles, err := MetForcingFileNames(metDir, cfg.Fluxsite.Experiment)
	if err != nil {
		return nil, fmt.Errorf("could not resolve met forcing files: %w", err)
	}

	return GenerateTasks(cfg.Realisations, cfg.ScienceConfigurations, metFiles), nil
}

// GenerateTasks returns the fluxsite run matrix. The order is
// deterministic: realisations, then met forcings, then science
// configurations.
func GenerateTasks(realisations []model.Realisation, science []model.ScienceConfig, metFiles []string) []Task {
	tasks := make([]Task, 0, len(realisations)*len(metFiles)*len(science))
	for i, r := range realisations {
		for _, metFile := range metFiles {
			for j, sc := range science {
				tasks = append(tasks, Task{
					Realisation:      r,
					RealisationIndex: i,
					MetForcingFile:   metFile,
					ScienceIndex:     j,
					Science:          sc,
				})
			}
		}
	}

	return tasks
}
