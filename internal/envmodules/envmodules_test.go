package envmodules_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/envmodules"
	"github.com/cable-lsm/benchcab/internal/syscmd"
	"github.com/cable-lsm/benchcab/internal/syscmd/syscmdmock"
)

func TestWrapCommand(t *testing.T) {
	tests := map[string]struct {
		modules []string
		script  string
		expArgv []string
	}{
		"No modules still purges the environment": {
			modules: nil,
			script:  "make",
			expArgv: []string{"bash", "-l", "-c", "module purge && make"},
		},

		"Modules are loaded in order before the script": {
			modules: []string{"intel-compiler/2021.1.1", "netcdf/4.7.4"},
			script:  "make mpi",
			expArgv: []string{"bash", "-l", "-c", "module purge && module load intel-compiler/2021.1.1 && module load netcdf/4.7.4 && make mpi"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expArgv, envmodules.WrapCommand(test.modules, test.script))
		})
	}
}

func TestCheckerIsAvail(t *testing.T) {
	tests := map[string]struct {
		module   string
		output   string
		err      error
		expAvail bool
		expErr   bool
	}{
		"An available module is reported": {
			module:   "netcdf/4.7.4",
			output:   "netcdf/4.7.4\n",
			expAvail: true,
		},

		"A default marker still matches": {
			module:   "intel-compiler/2021.1.1",
			output:   "intel-compiler/2021.1.1(default)\n",
			expAvail: true,
		},

		"No output means not available": {
			module:   "netcdf/9.9.9",
			output:   "",
			expAvail: false,
		},

		"A shell failure is an error": {
			module: "netcdf/4.7.4",
			err:    fmt.Errorf("bash: module: command not found"),
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			mRunner := syscmdmock.NewMockRunner(t)
			mRunner.On("RunOutput", mock.Anything, syscmd.Command{
				Argv: []string{"bash", "-l", "-c", "module avail -t " + test.module},
			}).Once().Return(test.output, test.err)

			checker := envmodules.NewChecker(mRunner)
			avail, err := checker.IsAvail(context.TODO(), test.module)

			if test.expErr {
				require.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(t, test.expAvail, avail)
		})
	}
}
