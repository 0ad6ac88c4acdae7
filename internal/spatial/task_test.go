package spatial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/spatial"
)

func testRealisations() []model.Realisation {
	return []model.Realisation{
		{Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: "main"}}},
		{Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: "my-branch"}}},
	}
}

func TestGenerateTasks(t *testing.T) {
	assert := assert.New(t)

	metForcings := map[string]string{
		"gswp3":         "https://example.com/gswp3-experiment.git",
		"crujra_access": "https://example.com/crujra-experiment.git",
	}
	science := []model.ScienceConfig{{}, {}}

	tasks := spatial.GenerateTasks(testRealisations(), metForcings, science)

	assert.Len(tasks, 8)

	// Met forcings iterate in lexical order regardless of map order.
	expNames := []string{
		"crujra_access_R0_S0", "crujra_access_R0_S1",
		"gswp3_R0_S0", "gswp3_R0_S1",
		"crujra_access_R1_S0", "crujra_access_R1_S1",
		"gswp3_R1_S0", "gswp3_R1_S1",
	}
	gotNames := make([]string, 0, len(tasks))
	for _, task := range tasks {
		gotNames = append(gotNames, task.Name())
	}
	assert.Equal(expNames, gotNames)

	assert.Equal("https://example.com/crujra-experiment.git", tasks[0].PayuExperiment)
	assert.Equal("https://example.com/gswp3-experiment.git", tasks[2].PayuExperiment)
}
