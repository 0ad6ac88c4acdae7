package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdklib "github.com/cable-lsm/benchcab/pkg/lib"
	intworkflow "github.com/cable-lsm/benchcab/test/integration/workflow"
)

// twoBranchConfig benchmarks the main and dev branches of the fixture
// repository against a single site and science configuration.
func twoBranchConfig(repoDir string) string {
	return fmt.Sprintf(`project: tm70
modules:
  - netcdf/4.7.4
realisations:
  - repo:
      git:
        url: %s
        branch: main
    build_script: build.sh
  - repo:
      git:
        url: %s
        branch: dev
    build_script: build.sh
fluxsite:
  experiment: AU-Tum
science_configurations:
  - cable:
      cable_user:
        GS_SWITCH: medlyn
`, repoDir, repoDir)
}

func TestSDKFluxsiteWorkflow(t *testing.T) {
	config := intworkflow.NewConfig(t)
	intworkflow.StubModuleCommand(t)
	intworkflow.StubNccmp(t, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repoDir := intworkflow.NewCableRepo(t, config)
	metDir := intworkflow.NewMetDir(t, "AU-Tum_2002-2017_OzFlux_Met.nc")
	workDir := t.TempDir()
	intworkflow.WriteNamelists(t, workDir)

	client := intworkflow.NewTestClient(t, workDir, metDir)
	cfg := intworkflow.LoadBenchConfig(t, twoBranchConfig(repoDir))

	// Checkout both branches.
	realisations, err := client.Checkout(ctx, cfg)
	require.NoError(t, err)
	require.Len(t, realisations, 2)
	assert.Equal(t, "main", realisations[0].Name)
	assert.Equal(t, "dev", realisations[1].Name)
	assert.Contains(t, realisations[0].Revision, "commit ")

	revLog, err := os.ReadFile(filepath.Join(workDir, "rev_number-1.log"))
	require.NoError(t, err)
	assert.Contains(t, string(revLog), "main: commit ")
	assert.Contains(t, string(revLog), "dev: commit ")

	// Build. The module call in build.sh must not reach the shell.
	err = client.Build(ctx, cfg, false)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(workDir, "src", "main", "src", "offline", "cable"))
	assert.FileExists(t, filepath.Join(workDir, "src", "dev", "src", "offline", "cable"))
	assert.NoFileExists(t, filepath.Join(workDir, "src", "main", "module-ran.txt"))

	// Set up the task directories.
	tasks, err := client.FluxsiteSetup(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{
		"AU-Tum_2002-2017_OzFlux_Met_R0_S0",
		"AU-Tum_2002-2017_OzFlux_Met_R1_S0",
	}, tasks)

	// Run CABLE for every task.
	err = client.FluxsiteRunTasks(ctx, cfg)
	require.NoError(t, err)
	for _, task := range tasks {
		assert.FileExists(t, filepath.Join(workDir, "runs", "fluxsite", "outputs", task+"_out.nc"))

		stdout, err := os.ReadFile(filepath.Join(workDir, "runs", "fluxsite", "tasks", task, "out.txt"))
		require.NoError(t, err)
		assert.Contains(t, string(stdout), "stub CABLE run")
	}

	// Compare the outputs bitwise.
	err = client.FluxsiteBitwiseCmp(ctx, cfg)
	require.NoError(t, err)

	// The recorded run should show everything completed and identical.
	report, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, workDir, report.WorkDir)
	require.Len(t, report.Tasks, 2)
	for _, task := range report.Tasks {
		assert.Equal(t, sdklib.TaskStatusCompleted, task.Status)
	}
	require.Len(t, report.Comparisons, 1)
	assert.Equal(t, "AU-Tum_2002-2017_OzFlux_Met_S0_R0_R1", report.Comparisons[0].Name)
	assert.Equal(t, sdklib.ComparisonOutcomeIdentical, report.Comparisons[0].Outcome)

	// Clean everything, the revision log stays behind.
	require.NoError(t, client.Clean(ctx, sdklib.CleanAll))
	assert.NoDirExists(t, filepath.Join(workDir, "runs"))
	assert.NoDirExists(t, filepath.Join(workDir, "src", "main"))
	assert.FileExists(t, filepath.Join(workDir, "rev_number-1.log"))

	_, err = client.Status(ctx)
	assert.True(t, errors.Is(err, sdklib.ErrNotFound))
}

func TestSDKFluxsiteCompareDiffer(t *testing.T) {
	config := intworkflow.NewConfig(t)
	intworkflow.StubModuleCommand(t)
	intworkflow.StubNccmp(t, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repoDir := intworkflow.NewCableRepo(t, config)
	metDir := intworkflow.NewMetDir(t, "AU-Tum_2002-2017_OzFlux_Met.nc")
	workDir := t.TempDir()
	intworkflow.WriteNamelists(t, workDir)

	client := intworkflow.NewTestClient(t, workDir, metDir)
	cfg := intworkflow.LoadBenchConfig(t, twoBranchConfig(repoDir))

	_, err := client.Checkout(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, client.Build(ctx, cfg, false))
	_, err = client.FluxsiteSetup(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, client.FluxsiteRunTasks(ctx, cfg))

	// A differing pair is a result, not an error.
	require.NoError(t, client.FluxsiteBitwiseCmp(ctx, cfg))

	report, err := client.Status(ctx)
	require.NoError(t, err)
	require.Len(t, report.Comparisons, 1)

	cmp := report.Comparisons[0]
	assert.Equal(t, sdklib.ComparisonOutcomeDiffer, cmp.Outcome)
	require.FileExists(t, cmp.Detail)

	detail, err := os.ReadFile(cmp.Detail)
	require.NoError(t, err)
	assert.Contains(t, string(detail), "stub nccmp")
}

func TestSDKCheckoutPinnedCommit(t *testing.T) {
	config := intworkflow.NewConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repoDir := intworkflow.NewCableRepo(t, config)
	first := intworkflow.Git(t, config, repoDir, "rev-parse", "HEAD")

	// A second commit on main moves the branch head past the pin.
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "VERSION"), []byte("2\n"), 0o644))
	intworkflow.Git(t, config, repoDir, "commit", "--quiet", "-am", "bump version")

	workDir := t.TempDir()
	client := intworkflow.NewTestClient(t, workDir, t.TempDir())
	cfg := intworkflow.LoadBenchConfig(t, fmt.Sprintf(`project: tm70
modules:
  - netcdf/4.7.4
realisations:
  - repo:
      git:
        url: %s
        branch: main
        commit: %s
`, repoDir, first))

	realisations, err := client.Checkout(ctx, cfg)
	require.NoError(t, err)
	require.Len(t, realisations, 1)
	assert.Equal(t, "commit "+first, realisations[0].Revision)

	version, err := os.ReadFile(filepath.Join(workDir, "src", "main", "VERSION"))
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(version))
}
