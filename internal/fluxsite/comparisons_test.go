package fluxsite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cable-lsm/benchcab/internal/fluxsite"
	"github.com/cable-lsm/benchcab/internal/model"
)

func TestGenerateComparisons(t *testing.T) {
	science := []model.ScienceConfig{{}, {}}

	tests := map[string]struct {
		realisations []model.Realisation
		metFiles     []string
		expNames     []string
	}{
		"A single realisation should produce no comparisons.": {
			realisations: testRealisations()[:1],
			metFiles:     []string{"siteA.nc"},
			expNames:     nil,
		},

		"Two realisations should pair up per met forcing and science config.": {
			realisations: testRealisations(),
			metFiles:     []string{"siteA.nc", "siteB.nc"},
			expNames: []string{
				"siteA_S0_R0_R1",
				"siteA_S1_R0_R1",
				"siteB_S0_R0_R1",
				"siteB_S1_R0_R1",
			},
		},

		"Three realisations should produce all pairs with the lower index first.": {
			realisations: append(testRealisations(), model.Realisation{
				Repo: model.RepoSpec{Local: &model.LocalRepoSpec{Path: "/opt/cable"}},
			}),
			metFiles: []string{"siteA.nc"},
			expNames: []string{
				"siteA_S0_R0_R1",
				"siteA_S0_R0_R2",
				"siteA_S0_R1_R2",
				"siteA_S1_R0_R1",
				"siteA_S1_R0_R2",
				"siteA_S1_R1_R2",
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			tasks := fluxsite.GenerateTasks(test.realisations, science, test.metFiles)
			pairs := fluxsite.GenerateComparisons(tasks)

			gotNames := make([]string, 0, len(pairs))
			for _, pair := range pairs {
				assert.Less(pair.TaskA.RealisationIndex, pair.TaskB.RealisationIndex)
				assert.Equal(pair.TaskA.MetForcingFile, pair.TaskB.MetForcingFile)
				assert.Equal(pair.TaskA.ScienceIndex, pair.TaskB.ScienceIndex)
				gotNames = append(gotNames, pair.Name())
			}
			assert.ElementsMatch(test.expNames, gotNames)
		})
	}
}
