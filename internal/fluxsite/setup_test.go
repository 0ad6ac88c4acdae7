package fluxsite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/build"
	"github.com/cable-lsm/benchcab/internal/conventions"
	"github.com/cable-lsm/benchcab/internal/fluxsite"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/namelist"
)

func TestSetupCreateDirectoryTree(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	workDir := t.TempDir()
	setup, err := fluxsite.NewSetup(fluxsite.SetupConfig{WorkDir: workDir})
	require.NoError(err)

	require.NoError(setup.CreateDirectoryTree())

	for _, dir := range []string{
		conventions.FluxsiteTasksDir(workDir),
		conventions.FluxsiteLogsDir(workDir),
		conventions.FluxsiteOutputsDir(workDir),
		conventions.FluxsiteAnalysisDir(workDir),
		conventions.FluxsiteBitwiseCmpDir(workDir),
	} {
		info, err := os.Stat(dir)
		require.NoError(err)
		assert.True(info.IsDir())
	}
}

func TestSetupTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	workDir := t.TempDir()
	realisation := model.Realisation{Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: "main"}}}

	// Namelist files distributed with CABLE.
	namelistDir := filepath.Join(workDir, conventions.NamelistDir)
	require.NoError(os.MkdirAll(namelistDir, 0o755))
	baseNML := `&cable
    cable_user%existing_feature = .true.
/
`
	require.NoError(os.WriteFile(filepath.Join(namelistDir, conventions.CableNML), []byte(baseNML), 0o644))
	require.NoError(os.WriteFile(filepath.Join(namelistDir, conventions.CableVegetationNML), []byte("&cable_pftparm\n/\n"), 0o644))

	// A previously built executable.
	exePath := build.ExePath(workDir, realisation, false)
	require.NoError(os.MkdirAll(filepath.Dir(exePath), 0o755))
	require.NoError(os.WriteFile(exePath, []byte("#!/bin/sh\n"), 0o755))

	setup, err := fluxsite.NewSetup(fluxsite.SetupConfig{
		WorkDir:  workDir,
		MetDir:   "/data/met",
		GridFile: "/data/grid/gridinfo.nc",
	})
	require.NoError(err)
	require.NoError(setup.CreateDirectoryTree())

	task := fluxsite.Task{
		Realisation:      realisation,
		RealisationIndex: 0,
		MetForcingFile:   "AU-Tum_2002-2017_OzFlux_Met.nc",
		ScienceIndex:     1,
		Science: model.ScienceConfig{
			"cable": map[string]interface{}{
				"cable_user": map[string]interface{}{"GS_SWITCH": "medlyn"},
			},
		},
	}
	task.Realisation.Patch = map[string]interface{}{
		"cable": map[string]interface{}{
			"cable_user": map[string]interface{}{"or_evap": true},
		},
	}
	task.Realisation.PatchRemove = map[string]interface{}{
		"cable": map[string]interface{}{
			"cable_user": map[string]interface{}{"existing_feature": true},
		},
	}

	require.NoError(setup.SetupTask(task))

	taskDir := filepath.Join(conventions.FluxsiteTasksDir(workDir), "AU-Tum_2002-2017_OzFlux_Met_R0_S1")

	// The namelist files and the executable were copied over.
	_, err = os.Stat(filepath.Join(taskDir, conventions.CableVegetationNML))
	assert.NoError(err)
	info, err := os.Stat(filepath.Join(taskDir, conventions.CableExe))
	require.NoError(err)
	assert.NotZero(info.Mode() & 0o100)

	nml, err := namelist.Read(filepath.Join(taskDir, conventions.CableNML))
	require.NoError(err)

	cable := nml["cable"]
	require.NotNil(cable)

	filename, ok := cable["filename"].(map[string]interface{})
	require.True(ok)
	assert.Equal("/data/met/AU-Tum_2002-2017_OzFlux_Met.nc", filename["met"])
	assert.Equal(filepath.Join(conventions.FluxsiteOutputsDir(workDir), "AU-Tum_2002-2017_OzFlux_Met_R0_S1_out.nc"), filename["out"])
	assert.Equal(filepath.Join(conventions.FluxsiteLogsDir(workDir), "AU-Tum_2002-2017_OzFlux_Met_R0_S1_log.txt"), filename["log"])
	assert.Equal(" ", filename["restart_out"])
	assert.Equal("/data/grid/gridinfo.nc", filename["type"])

	output, ok := cable["output"].(map[string]interface{})
	require.True(ok)
	assert.Equal(false, output["restart"])

	assert.Equal(400.0, cable["fixedco2"])
	assert.Equal(false, cable["spinup"])

	cableUser, ok := cable["cable_user"].(map[string]interface{})
	require.True(ok)
	assert.Equal("medlyn", cableUser["gs_switch"])
	assert.Equal(true, cableUser["or_evap"])
	assert.NotContains(cableUser, "existing_feature")
}

func TestSetupTaskCleansPreviousRun(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	workDir := t.TempDir()
	realisation := model.Realisation{Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: "main"}}}

	namelistDir := filepath.Join(workDir, conventions.NamelistDir)
	require.NoError(os.MkdirAll(namelistDir, 0o755))
	require.NoError(os.WriteFile(filepath.Join(namelistDir, conventions.CableNML), []byte("&cable\n/\n"), 0o644))

	exePath := build.ExePath(workDir, realisation, false)
	require.NoError(os.MkdirAll(filepath.Dir(exePath), 0o755))
	require.NoError(os.WriteFile(exePath, []byte{}, 0o755))

	setup, err := fluxsite.NewSetup(fluxsite.SetupConfig{WorkDir: workDir, MetDir: "/m", GridFile: "/g"})
	require.NoError(err)
	require.NoError(setup.CreateDirectoryTree())

	task := fluxsite.Task{
		Realisation:    realisation,
		MetForcingFile: "AU-Tum.nc",
		Science:        model.ScienceConfig{},
	}

	// Leftovers from a previous run.
	staleOutput := filepath.Join(conventions.FluxsiteOutputsDir(workDir), task.OutputFilename())
	staleLog := filepath.Join(conventions.FluxsiteLogsDir(workDir), task.LogFilename())
	require.NoError(os.WriteFile(staleOutput, []byte("old"), 0o644))
	require.NoError(os.WriteFile(staleLog, []byte("old"), 0o644))

	require.NoError(setup.SetupTask(task))

	_, err = os.Stat(staleOutput)
	assert.True(os.IsNotExist(err))
	_, err = os.Stat(staleLog)
	assert.True(os.IsNotExist(err))
}
