package build_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appbuild "github.com/cable-lsm/benchcab/internal/app/build"
	"github.com/cable-lsm/benchcab/internal/build"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
	"github.com/cable-lsm/benchcab/internal/syscmd/syscmdmock"
)

func setupCheckout(t *testing.T, workDir, name string) {
	t.Helper()
	require := require.New(t)

	srcRoot := filepath.Join(workDir, "src", name, "src")
	require.NoError(os.MkdirAll(filepath.Join(srcRoot, "offline"), 0o755))
	require.NoError(os.WriteFile(filepath.Join(srcRoot, "offline", "cable_driver.F90"), []byte("program cable\n"), 0o644))
	require.NoError(os.WriteFile(filepath.Join(srcRoot, "offline", "Makefile"), []byte("all:\n"), 0o644))
}

func buildConfig(realisations ...string) model.Config {
	cfg := model.Config{
		Project: "tm70",
		Modules: []string{"intel-compiler/2021.1.1"},
	}
	for _, name := range realisations {
		cfg.Realisations = append(cfg.Realisations, model.Realisation{
			Name: name,
			Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: name}},
		})
	}
	return cfg
}

func TestNewService(t *testing.T) {
	svc, err := appbuild.NewService(appbuild.ServiceConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runner is required")
	assert.Nil(t, svc)

	svc, err = appbuild.NewService(appbuild.ServiceConfig{
		Runner: &syscmdmock.MockRunner{},
		Logger: log.Noop,
	})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestServiceRun(t *testing.T) {
	t.Run("Every realisation is compiled in order", func(t *testing.T) {
		require := require.New(t)

		workDir := t.TempDir()
		setupCheckout(t, workDir, "trunk")
		setupCheckout(t, workDir, "my-branch")

		mRunner := syscmdmock.NewMockRunner(t)
		for _, name := range []string{"trunk", "my-branch"} {
			tmpDir := filepath.Join(workDir, "src", name, "src", "offline", ".tmp")
			mRunner.On("Run", mock.Anything, mock.MatchedBy(func(cmd syscmd.Command) bool {
				return cmd.Dir == tmpDir
			})).Once().Run(func(args mock.Arguments) {
				require.NoError(os.WriteFile(filepath.Join(tmpDir, "cable"), []byte("ELF"), 0o755))
			}).Return(nil)
		}

		svc, err := appbuild.NewService(appbuild.ServiceConfig{Runner: mRunner, Logger: log.Noop})
		require.NoError(err)

		cfg := buildConfig("trunk", "my-branch")
		err = svc.Run(context.Background(), appbuild.Request{Config: cfg, WorkDir: workDir})
		require.NoError(err)

		for _, name := range []string{"trunk", "my-branch"} {
			r := model.Realisation{Name: name, Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: name}}}
			_, err = os.Stat(build.ExePath(workDir, r, false))
			assert.NoError(t, err)
		}
	})

	t.Run("A build failure aborts and names the realisation", func(t *testing.T) {
		require := require.New(t)

		workDir := t.TempDir()
		setupCheckout(t, workDir, "trunk")
		setupCheckout(t, workDir, "my-branch")

		mRunner := syscmdmock.NewMockRunner(t)
		mRunner.On("Run", mock.Anything, mock.Anything).Once().Return(errors.New("make: *** [all] Error 1"))

		svc, err := appbuild.NewService(appbuild.ServiceConfig{Runner: mRunner, Logger: log.Noop})
		require.NoError(err)

		cfg := buildConfig("trunk", "my-branch")
		err = svc.Run(context.Background(), appbuild.Request{Config: cfg, WorkDir: workDir})
		require.Error(err)
		assert.Contains(t, err.Error(), `could not build realisation "trunk"`)
	})
}
