package fluxsite

import (
	"fmt"
	"strings"
)

// Pair is a bitwise comparison between the outputs of two tasks that
// share the same met forcing and science configuration but come from
// different realisations.
type Pair struct {
	TaskA Task
	TaskB Task
}

// Name returns the comparison name, e.g `AU-Tum_S0_R0_R1`.
func (p Pair) Name() string {
	metBase, _, _ := strings.Cut(p.TaskA.MetForcingFile, ".")
	return fmt.Sprintf("%s_S%d_R%d_R%d", metBase, p.TaskA.ScienceIndex, p.TaskA.RealisationIndex, p.TaskB.RealisationIndex)
}

// GenerateComparisons returns all task pairs to compare bitwise. Tasks
// pair up when they ran the same met forcing with the same science
// configuration under different realisations, the lower realisation
// index always comes first.
func GenerateComparisons(tasks []Task) []Pair {
	var pairs []Pair
	for i, a := range tasks {
		for _, b := range tasks[i+1:] {
			if a.MetForcingFile != b.MetForcingFile || a.ScienceIndex != b.ScienceIndex {
				continue
			}
			if a.RealisationIndex < b.RealisationIndex {
				pairs = append(pairs, Pair{TaskA: a, TaskB: b})
			} else {
				pairs = append(pairs, Pair{TaskA: b, TaskB: a})
			}
		}
	}

	return pairs
}
