// Package spatial generates and runs the global benchmark tasks through
// payu experiments.
package spatial

import (
	"fmt"
	"sort"

	"github.com/cable-lsm/benchcab/internal/model"
)

// Task is a single spatial model execution: one realisation run under
// one science configuration against one global met forcing. The met
// forcing is provided as a payu experiment repository.
type Task struct {
	Realisation      model.Realisation
	RealisationIndex int
	// MetForcingName names the met forcing, e.g `crujra_access`.
	MetForcingName string
	// PayuExperiment is the URL of the payu experiment repository that
	// provides the met forcing.
	PayuExperiment string
	ScienceIndex   int
	Science        model.ScienceConfig
}

// Name returns the naming convention used for this task,
// "<met_forcing>_R<realisation>_S<science>".
func (t Task) Name() string {
	return fmt.Sprintf("%s_R%d_S%d", t.MetForcingName, t.RealisationIndex, t.ScienceIndex)
}

// GenerateTasks returns the spatial run matrix. Met forcings are
// iterated in lexical order so the task order is deterministic.
func GenerateTasks(realisations []model.Realisation, metForcings map[string]string, science []model.ScienceConfig) []Task {
	forcingNames := make([]string, 0, len(metForcings))
	for name := range metForcings {
		forcingNames = append(forcingNames, name)
	}
	sort.Strings(forcingNames)

	tasks := make([]Task, 0, len(realisations)*len(metForcings)*len(science))
	for i, r := range realisations {
		for _, forcingName := range forcingNames {
			for j, sc := range science {
				tasks = append(tasks, Task{
					Realisation:      r,
					RealisationIndex: i,
					MetForcingName:   forcingName,
					PayuExperiment:   metForcings[forcingName],
					ScienceIndex:     j,
					Science:          sc,
				})
			}
		}
	}

	return tasks
}
