package build_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/build"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
	"github.com/cable-lsm/benchcab/internal/syscmd/syscmdmock"
)

func gitRealisation(name string) model.Realisation {
	return model.Realisation{Name: name, Repo: model.RepoSpec{Git: &model.GitRepoSpec{Branch: "main"}}}
}

func setupCheckout(t *testing.T, workDir, name string) {
	t.Helper()
	require := require.New(t)

	srcRoot := filepath.Join(workDir, "src", name, "src")
	require.NoError(os.MkdirAll(filepath.Join(srcRoot, "science", "albedo"), 0o755))
	require.NoError(os.MkdirAll(filepath.Join(srcRoot, "offline"), 0o755))
	require.NoError(os.WriteFile(filepath.Join(srcRoot, "science", "albedo", "cbl_albedo.F90"), []byte("module albedo\n"), 0o644))
	require.NoError(os.WriteFile(filepath.Join(srcRoot, "offline", "cable_driver.F90"), []byte("program cable\n"), 0o644))
	require.NoError(os.WriteFile(filepath.Join(srcRoot, "offline", "Makefile"), []byte("all:\n"), 0o644))
}

func TestBuilderBuild(t *testing.T) {
	tests := map[string]struct {
		mpi       bool
		expScript string
		expTmp    string
		expExe    string
	}{
		"A serial build compiles with ifort and installs cable": {
			mpi: false,
			expScript: "module purge && module load intel-compiler/2021.1.1 && " +
				`NCDIR="$NETCDF_ROOT/lib/Intel" NCMOD="$NETCDF_ROOT/include/Intel" ` +
				`CFLAGS="-O2 -fp-model precise" LDFLAGS="-L$NETCDF_ROOT/lib/Intel -O0" ` +
				`LD="-lnetcdf -lnetcdff" FC=ifort make`,
			expTmp: filepath.Join("src", "main", "src", "offline", ".tmp"),
			expExe: "cable",
		},

		"An MPI build compiles with mpif90 and installs cable-mpi": {
			mpi: true,
			expScript: "module purge && module load intel-compiler/2021.1.1 && " +
				`NCDIR="$NETCDF_ROOT/lib/Intel" NCMOD="$NETCDF_ROOT/include/Intel" ` +
				`CFLAGS="-O2 -fp-model precise" LDFLAGS="-L$NETCDF_ROOT/lib/Intel -O0" ` +
				`LD="-lnetcdf -lnetcdff" FC=mpif90 make mpi`,
			expTmp: filepath.Join("src", "main", "src", "offline", ".mpitmp"),
			expExe: "cable-mpi",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			workDir := t.TempDir()
			setupCheckout(t, workDir, "main")
			tmpDir := filepath.Join(workDir, test.expTmp)

			mRunner := syscmdmock.NewMockRunner(t)
			mRunner.On("Run", mock.Anything, syscmd.Command{
				Argv: []string{"bash", "-l", "-c", test.expScript},
				Dir:  tmpDir,
			}).Once().Run(func(args mock.Arguments) {
				// make drops the executable in the build directory.
				require.NoError(os.WriteFile(filepath.Join(tmpDir, test.expExe), []byte("ELF"), 0o755))
			}).Return(nil)

			builder, err := build.NewBuilder(build.BuilderConfig{Runner: mRunner})
			require.NoError(err)

			r := gitRealisation("main")
			err = builder.Build(context.TODO(), workDir, r, []string{"intel-compiler/2021.1.1"}, test.mpi)
			require.NoError(err)

			// Sources were staged.
			_, err = os.Stat(filepath.Join(tmpDir, "cbl_albedo.F90"))
			assert.NoError(t, err)
			_, err = os.Stat(filepath.Join(tmpDir, "Makefile"))
			assert.NoError(t, err)

			// The executable was moved into the offline directory.
			_, err = os.Stat(build.ExePath(workDir, r, test.mpi))
			assert.NoError(t, err)
		})
	}
}

func TestBuilderCustomBuild(t *testing.T) {
	t.Run("A custom build script runs stripped of module lines", func(t *testing.T) {
		require := require.New(t)

		workDir := t.TempDir()
		checkout := filepath.Join(workDir, "src", "main")
		require.NoError(os.MkdirAll(checkout, 0o755))
		script := "#!/bin/bash\nmodule load netcdf/4.7.4\nmake -f Makefile # module hint in comment\n"
		require.NoError(os.WriteFile(filepath.Join(checkout, "build.sh"), []byte(script), 0o644))

		mRunner := syscmdmock.NewMockRunner(t)
		mRunner.On("Run", mock.Anything, syscmd.Command{
			Argv: []string{"bash", "-l", "-c", "module purge && module load netcdf/4.7.4 && ./tmp-build.sh"},
			Dir:  checkout,
		}).Once().Return(nil)

		builder, err := build.NewBuilder(build.BuilderConfig{Runner: mRunner})
		require.NoError(err)

		r := gitRealisation("main")
		r.BuildScript = "build.sh"
		require.NoError(builder.Build(context.TODO(), workDir, r, []string{"netcdf/4.7.4"}, false))

		got, err := os.ReadFile(filepath.Join(checkout, "tmp-build.sh"))
		require.NoError(err)
		assert.Equal(t, "#!/bin/bash\nmake -f Makefile # module hint in comment\n", string(got))

		info, err := os.Stat(filepath.Join(checkout, "tmp-build.sh"))
		require.NoError(err)
		assert.NotZero(t, info.Mode().Perm()&0o100)
	})

	t.Run("A missing build script fails", func(t *testing.T) {
		require := require.New(t)

		workDir := t.TempDir()
		require.NoError(os.MkdirAll(filepath.Join(workDir, "src", "main"), 0o755))

		builder, err := build.NewBuilder(build.BuilderConfig{Runner: syscmdmock.NewMockRunner(t)})
		require.NoError(err)

		r := gitRealisation("main")
		r.BuildScript = "missing.sh"
		err = builder.Build(context.TODO(), workDir, r, nil, false)
		assert.Error(t, err)
	})
}

func TestExePath(t *testing.T) {
	tests := map[string]struct {
		realisation model.Realisation
		mpi         bool
		expPath     string
	}{
		"Git checkouts keep sources under src": {
			realisation: gitRealisation("main"),
			expPath:     filepath.Join("/work", "src", "main", "src", "offline", "cable"),
		},

		"SVN checkouts keep sources at the top level": {
			realisation: model.Realisation{Repo: model.RepoSpec{SVN: &model.SVNRepoSpec{BranchPath: "trunk"}}},
			expPath:     filepath.Join("/work", "src", "trunk", "offline", "cable"),
		},

		"MPI executables have their own name": {
			realisation: gitRealisation("main"),
			mpi:         true,
			expPath:     filepath.Join("/work", "src", "main", "src", "offline", "cable-mpi"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expPath, build.ExePath("/work", test.realisation, test.mpi))
		})
	}
}

func TestRemoveModuleLines(t *testing.T) {
	tests := map[string]struct {
		input  string
		expOut string
	}{
		"Module invocations are removed": {
			input:  "#!/bin/bash\nmodule purge\nmodule load netcdf\nmake\n",
			expOut: "#!/bin/bash\nmake\n",
		},

		"Commented module calls are kept": {
			input:  "# module load netcdf\nmake\n",
			expOut: "# module load netcdf\nmake\n",
		},

		"Words containing module are kept": {
			input:  "./modulefile-gen\nmake modules\n",
			expOut: "./modulefile-gen\nmake modules\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			path := filepath.Join(t.TempDir(), "build.sh")
			require.NoError(os.WriteFile(path, []byte(test.input), 0o755))

			require.NoError(build.RemoveModuleLines(path))

			got, err := os.ReadFile(path)
			require.NoError(err)
			assert.Equal(t, test.expOut, string(got))
		})
	}
}
