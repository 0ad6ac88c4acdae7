package spatial_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/spatial"
	"github.com/cable-lsm/benchcab/internal/syscmd"
	"github.com/cable-lsm/benchcab/internal/syscmd/syscmdmock"
)

type observation struct {
	task   string
	status model.TaskStatus
}

func runnerTasks() []spatial.Task {
	realisation := model.Realisation{Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: "main"}}}
	return []spatial.Task{
		{Realisation: realisation, RealisationIndex: 0, MetForcingName: "crujra_access", ScienceIndex: 0},
		{Realisation: realisation, RealisationIndex: 0, MetForcingName: "gswp3", ScienceIndex: 0},
	}
}

func TestRunnerRunTasks(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	workDir := t.TempDir()
	tasks := runnerTasks()

	mr := syscmdmock.NewMockRunner(t)
	for _, task := range tasks {
		expCmd := syscmd.Command{
			Argv: []string{"payu", "run", "-n", "2"},
			Dir:  filepath.Join(conventions.SpatialTasksDir(workDir), task.Name()),
		}
		mr.On("Run", mock.Anything, expCmd).Once().Return(nil)
	}

	runner, err := spatial.NewRunner(spatial.RunnerConfig{WorkDir: workDir, Runner: mr})
	require.NoError(err)

	var observed []observation
	err = runner.RunTasks(context.TODO(), tasks, "-n 2", func(task spatial.Task, status model.TaskStatus, _ error) {
		observed = append(observed, observation{task: task.Name(), status: status})
	})
	require.NoError(err)

	assert.Equal([]observation{
		{task: "crujra_access_R0_S0", status: model.TaskStatusRunning},
		{task: "crujra_access_R0_S0", status: model.TaskStatusCompleted},
		{task: "gswp3_R0_S0", status: model.TaskStatusRunning},
		{task: "gswp3_R0_S0", status: model.TaskStatusCompleted},
	}, observed)
}

func TestRunnerRunTasksNoArgs(t *testing.T) {
	require := require.New(t)

	workDir := t.TempDir()
	tasks := runnerTasks()[:1]

	expCmd := syscmd.Command{
		Argv: []string{"payu", "run"},
		Dir:  filepath.Join(conventions.SpatialTasksDir(workDir), "crujra_access_R0_S0"),
	}
	mr := syscmdmock.NewMockRunner(t)
	mr.On("Run", mock.Anything, expCmd).Once().Return(nil)

	runner, err := spatial.NewRunner(spatial.RunnerConfig{WorkDir: workDir, Runner: mr})
	require.NoError(err)

	require.NoError(runner.RunTasks(context.TODO(), tasks, "", nil))
}

func TestRunnerRunTasksFailureAborts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	workDir := t.TempDir()
	tasks := runnerTasks()

	mr := syscmdmock.NewMockRunner(t)
	mr.On("Run", mock.Anything, mock.Anything).Once().Return(fmt.Errorf("something"))

	runner, err := spatial.NewRunner(spatial.RunnerConfig{WorkDir: workDir, Runner: mr})
	require.NoError(err)

	var observed []observation
	err = runner.RunTasks(context.TODO(), tasks, "", func(task spatial.Task, status model.TaskStatus, _ error) {
		observed = append(observed, observation{task: task.Name(), status: status})
	})

	// The first failing dispatch aborts the remaining tasks.
	assert.Error(err)
	assert.Equal([]observation{
		{task: "crujra_access_R0_S0", status: model.TaskStatusRunning},
		{task: "crujra_access_R0_S0", status: model.TaskStatusFailed},
	}, observed)
}
