package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/storage/memory"
)

func testRun(id, workDir string) model.Run {
	now := time.Now().UTC()
	return model.Run{
		ID:         id,
		WorkDir:    workDir,
		ConfigPath: workDir + "/config.yaml",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestRepositoryRuns(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  bool
	}{
		"Creating a run should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateRun(ctx, testRun("run-1", "/work/bench"))
				require.NoError(t, err)

				retrieved, err := repo.GetRunByWorkDir(ctx, "/work/bench")
				require.NoError(t, err)
				assert.Equal(t, "run-1", retrieved.ID)
				assert.Equal(t, "/work/bench/config.yaml", retrieved.ConfigPath)

				return nil
			},
		},

		"Creating a duplicate run ID should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateRun(ctx, testRun("run-1", "/work/bench"))
				require.NoError(t, err)

				return repo.CreateRun(ctx, testRun("run-1", "/work/other"))
			},
			expErr: true,
		},

		"Creating a second run for the same work dir should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateRun(ctx, testRun("run-1", "/work/bench"))
				require.NoError(t, err)

				return repo.CreateRun(ctx, testRun("run-2", "/work/bench"))
			},
			expErr: true,
		},

		"Updating a run should persist the new state": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				run := testRun("run-1", "/work/bench")
				err := repo.CreateRun(ctx, run)
				require.NoError(t, err)

				run.PBSJobID = "123456.gadi-pbs"
				err = repo.UpdateRun(ctx, run)
				require.NoError(t, err)

				retrieved, err := repo.GetRunByWorkDir(ctx, "/work/bench")
				require.NoError(t, err)
				assert.Equal(t, "123456.gadi-pbs", retrieved.PBSJobID)

				return nil
			},
		},

		"Updating a missing run should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.UpdateRun(ctx, testRun("run-x", "/work/bench"))
			},
			expErr: true,
		},

		"Deleting a run should drop its dependent state": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateRun(ctx, testRun("run-1", "/work/bench"))
				require.NoError(t, err)

				err = repo.ReplaceTasks(ctx, "run-1", model.TaskModeFluxsite, []model.Task{
					{ID: "t-1", RunID: "run-1", Name: "siteA_R0_S0", Mode: model.TaskModeFluxsite, Status: model.TaskStatusPending},
				})
				require.NoError(t, err)

				err = repo.DeleteRun(ctx, "run-1")
				require.NoError(t, err)

				tasks, err := repo.ListTasks(ctx, "run-1", model.TaskModeFluxsite)
				require.NoError(t, err)
				assert.Empty(t, tasks)

				_, err = repo.GetRunByWorkDir(ctx, "/work/bench")
				return err
			},
			expErr: true,
		},

		"Deleting a missing run should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.DeleteRun(ctx, "run-x")
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
			require.NoError(t, err)

			err = test.actions(context.Background(), t, repo)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepositoryTaskState(t *testing.T) {
	ctx := context.Background()
	repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
	require.NoError(t, err)

	require.NoError(t, repo.CreateRun(ctx, testRun("run-1", "/work/bench")))

	fluxsite := []model.Task{
		{ID: "t-1", RunID: "run-1", Name: "siteA_R0_S0", Mode: model.TaskModeFluxsite, Status: model.TaskStatusPending},
		{ID: "t-2", RunID: "run-1", Name: "siteA_R1_S0", Mode: model.TaskModeFluxsite, Status: model.TaskStatusPending},
	}
	spatial := []model.Task{
		{ID: "t-3", RunID: "run-1", Name: "crujra_R0_S0", Mode: model.TaskModeSpatial, Status: model.TaskStatusPending},
	}
	require.NoError(t, repo.ReplaceTasks(ctx, "run-1", model.TaskModeFluxsite, fluxsite))
	require.NoError(t, repo.ReplaceTasks(ctx, "run-1", model.TaskModeSpatial, spatial))

	// Replacing one mode leaves the other untouched.
	require.NoError(t, repo.ReplaceTasks(ctx, "run-1", model.TaskModeFluxsite, fluxsite[:1]))
	got, err := repo.ListTasks(ctx, "run-1", model.TaskModeFluxsite)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	gotSpatial, err := repo.ListTasks(ctx, "run-1", model.TaskModeSpatial)
	require.NoError(t, err)
	assert.Len(t, gotSpatial, 1)

	require.NoError(t, repo.SetTaskStatus(ctx, "run-1", "siteA_R0_S0", model.TaskStatusRunning, ""))
	got, err = repo.ListTasks(ctx, "run-1", model.TaskModeFluxsite)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusRunning, got[0].Status)
	assert.NotNil(t, got[0].StartedAt)

	require.NoError(t, repo.SetTaskStatus(ctx, "run-1", "siteA_R0_S0", model.TaskStatusFailed, "CABLE returned an error"))
	got, err = repo.ListTasks(ctx, "run-1", model.TaskModeFluxsite)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusFailed, got[0].Status)
	assert.Equal(t, "CABLE returned an error", got[0].Error)
	assert.NotNil(t, got[0].FinishedAt)

	err = repo.SetTaskStatus(ctx, "run-1", "unknown", model.TaskStatusRunning, "")
	assert.Error(t, err)
}

func TestRepositoryComparisonState(t *testing.T) {
	ctx := context.Background()
	repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
	require.NoError(t, err)

	require.NoError(t, repo.CreateRun(ctx, testRun("run-1", "/work/bench")))

	comparisons := []model.Comparison{
		{ID: "c-1", RunID: "run-1", Name: "siteA_S0_R0_R1", FileA: "/a.nc", FileB: "/b.nc", TaskA: "siteA_R0_S0", TaskB: "siteA_R1_S0", Outcome: model.ComparisonOutcomePending},
	}
	require.NoError(t, repo.ReplaceComparisons(ctx, "run-1", comparisons))

	require.NoError(t, repo.SetComparisonOutcome(ctx, "run-1", "siteA_S0_R0_R1", model.ComparisonOutcomeIdentical, ""))
	got, err := repo.ListComparisons(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ComparisonOutcomeIdentical, got[0].Outcome)

	err = repo.SetComparisonOutcome(ctx, "run-1", "unknown", model.ComparisonOutcomeIdentical, "")
	assert.Error(t, err)
}
