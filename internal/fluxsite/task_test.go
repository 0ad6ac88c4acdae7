package fluxsite_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/fluxsite"
	"github.com/cable-lsm/benchcab/internal/model"
)

func testRealisations() []model.Realisation {
	return []model.Realisation{
		{Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: "main"}}},
		{Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: "my-branch"}}},
	}
}

func TestTaskNames(t *testing.T) {
	tests := map[string]struct {
		task      fluxsite.Task
		expName   string
		expOutput string
		expLog    string
	}{
		"A PLUMBER2 met forcing file should use the site id as the base name.": {
			task: fluxsite.Task{
				MetForcingFile:   "AU-Tum_2002-2017_OzFlux_Met.nc",
				RealisationIndex: 0,
				ScienceIndex:     2,
			},
			expName:   "AU-Tum_2002-2017_OzFlux_Met_R0_S2",
			expOutput: "AU-Tum_2002-2017_OzFlux_Met_R0_S2_out.nc",
			expLog:    "AU-Tum_2002-2017_OzFlux_Met_R0_S2_log.txt",
		},

		"Only the part before the first dot should be kept.": {
			task: fluxsite.Task{
				MetForcingFile:   "site.foo.nc",
				RealisationIndex: 1,
				ScienceIndex:     0,
			},
			expName:   "site_R1_S0",
			expOutput: "site_R1_S0_out.nc",
			expLog:    "site_R1_S0_log.txt",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expName, test.task.Name())
			assert.Equal(test.expOutput, test.task.OutputFilename())
			assert.Equal(test.expLog, test.task.LogFilename())
		})
	}
}

func TestGenerateTasks(t *testing.T) {
	assert := assert.New(t)

	science := []model.ScienceConfig{
		{"cable": map[string]interface{}{"cable_user": map[string]interface{}{"gs_switch": "medlyn"}}},
		{"cable": map[string]interface{}{"cable_user": map[string]interface{}{"gs_switch": "leuning"}}},
	}
	metFiles := []string{"siteA.nc", "siteB.nc"}

	tasks := fluxsite.GenerateTasks(testRealisations(), science, metFiles)

	assert.Len(tasks, 8)

	// Realisations vary slowest, science configurations fastest.
	expNames := []string{
		"siteA_R0_S0", "siteA_R0_S1",
		"siteB_R0_S0", "siteB_R0_S1",
		"siteA_R1_S0", "siteA_R1_S1",
		"siteB_R1_S0", "siteB_R1_S1",
	}
	gotNames := make([]string, 0, len(tasks))
	seen := map[string]bool{}
	for _, task := range tasks {
		gotNames = append(gotNames, task.Name())
		assert.False(seen[task.Name()], "task names should be unique")
		seen[task.Name()] = true
	}
	assert.Equal(expNames, gotNames)

	// Each task carries the realisation and science configuration it was
	// generated from.
	assert.Equal("my-branch", tasks[7].Realisation.ResolvedName())
	assert.Equal(science[1], tasks[7].Science)
}

func TestGenerateTasksEmpty(t *testing.T) {
	assert := assert.New(t)

	tasks := fluxsite.GenerateTasks(testRealisations(), nil, []string{"siteA.nc"})
	assert.Empty(tasks)
}

func TestTasksFromConfig(t *testing.T) {
	metDir := t.TempDir()
	err := os.WriteFile(filepath.Join(metDir, "AU-Tum_2002-2017_OzFlux_Met.nc"), nil, 0o644)
	require.NoError(t, err)

	tests := map[string]struct {
		config   model.Config
		expNames []string
		expErr   bool
	}{
		"A valid config should expand into the ordered task matrix.": {
			config: model.Config{
				Realisations:          testRealisations(),
				ScienceConfigurations: []model.ScienceConfig{{"cable": map[string]interface{}{}}},
				Fluxsite:              model.FluxsiteConfig{Experiment: "AU-Tum"},
			},
			expNames: []string{
				"AU-Tum_2002-2017_OzFlux_Met_R0_S0",
				"AU-Tum_2002-2017_OzFlux_Met_R1_S0",
			},
		},

		"A config without realisations should fail.": {
			config: model.Config{
				ScienceConfigurations: []model.ScienceConfig{{"cable": map[string]interface{}{}}},
				Fluxsite:              model.FluxsiteConfig{Experiment: "AU-Tum"},
			},
			expErr: true,
		},

		"A config without science configurations should fail.": {
			config: model.Config{
				Realisations: testRealisations(),
				Fluxsite:     model.FluxsiteConfig{Experiment: "AU-Tum"},
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			tasks, err := fluxsite.TasksFromConfig(test.config, metDir)

			if test.expErr {
				assert.Error(err)
				assert.True(errors.Is(err, model.ErrNotValid))
				return
			}

			assert.NoError(err)
			gotNames := make([]string, 0, len(tasks))
			for _, task := range tasks {
				gotNames = append(gotNames, task.Name())
			}
			assert.Equal(test.expNames, gotNames)
		})
	}
}
