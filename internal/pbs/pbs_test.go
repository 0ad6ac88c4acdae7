package pbs_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/pbs"
	"github.com/cable-lsm/benchcab/internal/syscmd"
	"github.com/cable-lsm/benchcab/internal/syscmd/syscmdmock"
)

func TestRenderJobScript(t *testing.T) {
	tests := map[string]struct {
		params    pbs.ScriptParams
		expScript string
	}{
		"A full configuration should render every directive.": {
			params: pbs.ScriptParams{
				Project:      "tm70",
				ConfigPath:   "config.yaml",
				Modules:      []string{"intel-compiler/2021.1.1", "netcdf/4.7.4"},
				BenchcabPath: "/opt/benchcab",
				PBS: model.PBSConfig{
					NCPUs:    4,
					Mem:      "16GB",
					Walltime: "1:00:00",
					Storage:  []string{"scratch/tm70"},
				},
			},
			expScript: `#!/bin/bash
#PBS -l wd
#PBS -l ncpus=4
#PBS -l mem=16GB
#PBS -l walltime=1:00:00
#PBS -q normal
#PBS -P tm70
#PBS -j oe
#PBS -m e
#PBS -l storage=gdata/ks32+gdata/hh5+gdata/wd9+scratch/tm70

module purge
module load intel-compiler/2021.1.1
module load netcdf/4.7.4

/opt/benchcab fluxsite-run-tasks --config=config.yaml
if [ $? -ne 0 ]; then
    echo 'Error: benchcab fluxsite-run-tasks failed. Exiting...'
    exit 1
fi

/opt/benchcab fluxsite-bitwise-cmp --config=config.yaml
if [ $? -ne 0 ]; then
    echo 'Error: benchcab fluxsite-bitwise-cmp failed. Exiting...'
    exit 1
fi
`,
		},

		"Zero valued resources should fall back to the defaults.": {
			params: pbs.ScriptParams{
				Project:      "tm70",
				ConfigPath:   "config.yaml",
				BenchcabPath: "/opt/benchcab",
				Verbose:      true,
			},
			expScript: `#!/bin/bash
#PBS -l wd
#PBS -l ncpus=18
#PBS -l mem=30GB
#PBS -l walltime=6:00:00
#PBS -q normal
#PBS -P tm70
#PBS -j oe
#PBS -m e
#PBS -l storage=gdata/ks32+gdata/hh5+gdata/wd9

module purge

/opt/benchcab fluxsite-run-tasks --config=config.yaml -v
if [ $? -ne 0 ]; then
    echo 'Error: benchcab fluxsite-run-tasks failed. Exiting...'
    exit 1
fi

/opt/benchcab fluxsite-bitwise-cmp --config=config.yaml -v
if [ $? -ne 0 ]; then
    echo 'Error: benchcab fluxsite-bitwise-cmp failed. Exiting...'
    exit 1
fi
`,
		},

		"Skipping the bitwise comparison should drop its step.": {
			params: pbs.ScriptParams{
				Project:        "tm70",
				ConfigPath:     "config.yaml",
				BenchcabPath:   "/opt/benchcab",
				SkipBitwiseCmp: true,
			},
			expScript: `#!/bin/bash
#PBS -l wd
#PBS -l ncpus=18
#PBS -l mem=30GB
#PBS -l walltime=6:00:00
#PBS -q normal
#PBS -P tm70
#PBS -j oe
#PBS -m e
#PBS -l storage=gdata/ks32+gdata/hh5+gdata/wd9

module purge

/opt/benchcab fluxsite-run-tasks --config=config.yaml
if [ $? -ne 0 ]; then
    echo 'Error: benchcab fluxsite-run-tasks failed. Exiting...'
    exit 1
fi
`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			gotScript, err := pbs.RenderJobScript(test.params)

			assert.NoError(err)
			assert.Equal(test.expScript, gotScript)
		})
	}
}

func TestClientSubmit(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mr := syscmdmock.NewMockRunner(t)
	mr.On("RunOutput", mock.Anything, syscmd.Command{
		Argv: []string{"qsub", "benchmark_cable_qsub.sh"},
	}).Once().Return("123456.gadi-pbs\n", nil)

	client, err := pbs.NewClient(pbs.ClientConfig{Runner: mr})
	require.NoError(err)

	jobID, err := client.Submit(context.TODO(), "benchmark_cable_qsub.sh")

	assert.NoError(err)
	assert.Equal("123456.gadi-pbs", jobID)
}

func TestClientSubmitError(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mr := syscmdmock.NewMockRunner(t)
	mr.On("RunOutput", mock.Anything, mock.Anything).Once().Return("", fmt.Errorf("%w: qsub: would exceed queue quota", syscmd.ErrExit))

	client, err := pbs.NewClient(pbs.ClientConfig{Runner: mr})
	require.NoError(err)

	_, err = client.Submit(context.TODO(), "benchmark_cable_qsub.sh")
	assert.Error(err)
}

func TestClientJobState(t *testing.T) {
	tests := map[string]struct {
		output   string
		expState string
		expErr   bool
	}{
		"A queued job should report Q.": {
			output: `Job Id: 123456.gadi-pbs
    Job_Name = benchmark_cable_qsub.sh
    job_state = Q
    queue = normal
`,
			expState: "Q",
		},

		"A finished job should report F.": {
			output: `Job Id: 123456.gadi-pbs
    job_state = F
`,
			expState: "F",
		},

		"Output without a job state should fail.": {
			output: "Job Id: 123456.gadi-pbs\n",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mr := syscmdmock.NewMockRunner(t)
			mr.On("RunOutput", mock.Anything, syscmd.Command{
				Argv: []string{"qstat", "-f", "-x", "123456.gadi-pbs"},
			}).Once().Return(test.output, nil)

			client, err := pbs.NewClient(pbs.ClientConfig{Runner: mr})
			require.NoError(err)

			gotState, err := client.JobState(context.TODO(), "123456.gadi-pbs")

			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
				assert.Equal(test.expState, gotState)
			}
		})
	}
}
