package fluxsite

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/cable-lsm/benchcab/internal/model"
)

// Experiments maps the known experiment names to the FLUXNET site
// identifiers they cover. The lists correspond to experiments on
// modelevaluation.org (workspace: benchcab-evaluation).
var Experiments = map[string][]string{
	"five-site-test": {
		"AU-Tum",
		"AU-How",
		"FI-Hyy",
		"US-Var",
		"US-Whs",
	},
	"forty-two-site-test": {
		"AU-Tum",
		"AU-How",
		"AU-Cum",
		"AU-ASM",
		"AU-GWW",
		"AU-Ctr",
		"AU-Stp",
		"BR-Sa3",
		"CA-Qfo",
		"CH-Dav",
		"CN-Cha",
		"CN-Din",
		"DE-Geb",
		"DE-Gri",
		"DE-Hai",
		"DE-Tha",
		"DK-Sor",
		"FI-Hyy",
		"FR-Gri",
		"FR-Pue",
		"GF-Guy",
		"IT-Lav",
		"IT-MBo",
		"IT-Noe",
		"NL-Loo",
		"RU-Fyo",
		"US-Blo",
		"US-GLE",
		"US-Ha1",
		"US-Me2",
		"US-MMS",
		"US-Myb",
		"US-NR1",
		"US-PFa",
		"US-FPe",
		"US-SRM",
		"US-SRG",
		"US-Ton",
		"US-UMB",
		"US-Var",
		"US-Whs",
		"US-Wkg",
	},
}

// ValidExperiment reports whether the experiment selects a known met
// forcing set, either an experiment name or a single site identifier
// from the five site test.
func ValidExperiment(experiment string) bool {
	if _, ok := Experiments[experiment]; ok {
		return true
	}
	return slices.Contains(Experiments["five-site-test"], experiment)
}

// MetForcingFileNames resolves the met forcing file basenames selected by
// an experiment. Each site identifier must map to exactly one file in
// metDir.
func MetForcingFileNames(metDir, experiment string) ([]string, error) {
	sites, ok := Experiments[experiment]
	if !ok {
		if !slices.Contains(Experiments["five-site-test"], experiment) {
			return nil, fmt.Errorf("unknown experiment %q: %w", experiment, model.ErrNotValid)
		}
		// A single site identifier selects just that site.
		sites = []string{experiment}
	}

	fileNames := make([]string, 0, len(sites))
	for _, site := range sites {
		matches, err := filepath.Glob(filepath.Join(metDir, site+"*"))
		if err != nil {
			return nil, fmt.Errorf("glob met files for %q: %w", site, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("could not infer met file for site id %q in %s: %w", site, metDir, model.ErrNotFound)
		}
		if len(matches) > 1 {
			return nil, fmt.Errorf("multiple met files found for site id %q in %s: %w", site, metDir, model.ErrNotValid)
		}
		fileNames = append(fileNames, filepath.Base(matches[0]))
	}

	return fileNames, nil
}
