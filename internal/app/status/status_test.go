package status_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/app/status"
	"github.com/cable-lsm/benchcab/internal/log"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/storage/storagemock"
	"github.com/cable-lsm/benchcab/internal/syscmd"
	"github.com/cable-lsm/benchcab/internal/syscmd/syscmdmock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    status.ServiceConfig
		expErr bool
		errMsg string
	}{
		"Valid config with all fields": {
			cfg: status.ServiceConfig{
				Repository: &storagemock.MockStateRepository{},
				Runner:     &syscmdmock.MockRunner{},
				Logger:     log.Noop,
			},
		},
		"Missing repository returns error": {
			cfg:    status.ServiceConfig{Runner: &syscmdmock.MockRunner{}},
			expErr: true,
			errMsg: "repository is required",
		},
		"Missing runner returns error": {
			cfg:    status.ServiceConfig{Repository: &storagemock.MockStateRepository{}},
			expErr: true,
			errMsg: "runner is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := status.NewService(tt.cfg)

			if tt.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, svc)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

const qstatOutput = `Job Id: 123456.gadi-pbs
    Job_Name = benchmark_cable_qsub.sh
    job_state = R
    queue = normal
`

func TestServiceRun(t *testing.T) {
	createdAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	storedRun := func(workDir, jobID string) *model.Run {
		return &model.Run{
			ID:         "01JX0000000000000000000000",
			WorkDir:    workDir,
			ConfigPath: "/home/user/config.yaml",
			PBSJobID:   jobID,
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		}
	}

	tests := map[string]struct {
		setupMocks  func(workDir string, repo *storagemock.MockStateRepository, runner *syscmdmock.MockRunner)
		expErr      bool
		errMsg      string
		expJobState string
		validate    func(t *testing.T, report *model.RunReport)
	}{
		"A recorded run reports its stored state and the live job state": {
			setupMocks: func(workDir string, repo *storagemock.MockStateRepository, runner *syscmdmock.MockRunner) {
				runID := "01JX0000000000000000000000"
				repo.On("GetRunByWorkDir", mock.Anything, workDir).Return(storedRun(workDir, "123456.gadi-pbs"), nil)
				repo.On("ListRealisations", mock.Anything, runID).Return([]model.RealisationRecord{
					{RunID: runID, Index: 0, Name: "main", Revision: "commit abc123"},
					{RunID: runID, Index: 1, Name: "my-feature", Revision: "commit def456"},
				}, nil)
				repo.On("ListTasks", mock.Anything, runID, model.TaskModeFluxsite).Return([]model.Task{
					{RunID: runID, Name: "AU-Tum_2002-2017_OzFlux_Met_R0_S0", Mode: model.TaskModeFluxsite, Status: model.TaskStatusCompleted},
				}, nil)
				repo.On("ListTasks", mock.Anything, runID, model.TaskModeSpatial).Return([]model.Task{
					{RunID: runID, Name: "crujra_access_R0_S0", Mode: model.TaskModeSpatial, Status: model.TaskStatusPending},
				}, nil)
				repo.On("ListComparisons", mock.Anything, runID).Return([]model.Comparison{
					{RunID: runID, Name: "AU-Tum_2002-2017_OzFlux_Met_S0_R0_R1", Outcome: model.ComparisonOutcomeIdentical},
				}, nil)
				runner.On("RunOutput", mock.Anything, syscmd.Command{
					Argv: []string{"qstat", "-f", "-x", "123456.gadi-pbs"},
				}).Return(qstatOutput, nil)
			},
			validate: func(t *testing.T, report *model.RunReport) {
				assert.Len(t, report.Realisations, 2)
				require.Len(t, report.Tasks, 2)
				assert.Equal(t, model.TaskModeFluxsite, report.Tasks[0].Mode)
				assert.Equal(t, model.TaskModeSpatial, report.Tasks[1].Mode)
				assert.Len(t, report.Comparisons, 1)
				assert.Equal(t, "R", report.PBSJobState)
			},
		},

		"A run without a submitted job skips the scheduler query": {
			setupMocks: func(workDir string, repo *storagemock.MockStateRepository, runner *syscmdmock.MockRunner) {
				runID := "01JX0000000000000000000000"
				repo.On("GetRunByWorkDir", mock.Anything, workDir).Return(storedRun(workDir, ""), nil)
				repo.On("ListRealisations", mock.Anything, runID).Return([]model.RealisationRecord{}, nil)
				repo.On("ListTasks", mock.Anything, runID, model.TaskModeFluxsite).Return([]model.Task{}, nil)
				repo.On("ListTasks", mock.Anything, runID, model.TaskModeSpatial).Return([]model.Task{}, nil)
				repo.On("ListComparisons", mock.Anything, runID).Return([]model.Comparison{}, nil)
			},
			validate: func(t *testing.T, report *model.RunReport) {
				assert.Empty(t, report.PBSJobState)
			},
		},

		"A failing scheduler query leaves the job state empty": {
			setupMocks: func(workDir string, repo *storagemock.MockStateRepository, runner *syscmdmock.MockRunner) {
				runID := "01JX0000000000000000000000"
				repo.On("GetRunByWorkDir", mock.Anything, workDir).Return(storedRun(workDir, "123456.gadi-pbs"), nil)
				repo.On("ListRealisations", mock.Anything, runID).Return([]model.RealisationRecord{}, nil)
				repo.On("ListTasks", mock.Anything, runID, model.TaskModeFluxsite).Return([]model.Task{}, nil)
				repo.On("ListTasks", mock.Anything, runID, model.TaskModeSpatial).Return([]model.Task{}, nil)
				repo.On("ListComparisons", mock.Anything, runID).Return([]model.Comparison{}, nil)
				runner.On("RunOutput", mock.Anything, mock.Anything).
					Return("", errors.New("qstat: Unknown Job Id"))
			},
			validate: func(t *testing.T, report *model.RunReport) {
				assert.Empty(t, report.PBSJobState)
			},
		},

		"An unrecorded working directory reports not found": {
			setupMocks: func(workDir string, repo *storagemock.MockStateRepository, runner *syscmdmock.MockRunner) {
				repo.On("GetRunByWorkDir", mock.Anything, workDir).Return((*model.Run)(nil), model.ErrNotFound)
			},
			expErr: true,
			errMsg: "no benchmark run recorded",
		},

		"A repository error propagates": {
			setupMocks: func(workDir string, repo *storagemock.MockStateRepository, runner *syscmdmock.MockRunner) {
				repo.On("GetRunByWorkDir", mock.Anything, workDir).Return((*model.Run)(nil), errors.New("database error"))
			},
			expErr: true,
			errMsg: "could not get run",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			workDir := t.TempDir()

			mockRepo := storagemock.NewMockStateRepository(t)
			mockRunner := syscmdmock.NewMockRunner(t)
			tt.setupMocks(workDir, mockRepo, mockRunner)

			svc, err := status.NewService(status.ServiceConfig{
				Repository: mockRepo,
				Runner:     mockRunner,
				Logger:     log.Noop,
			})
			require.NoError(t, err)

			report, err := svc.Run(context.Background(), status.Request{WorkDir: workDir})

			if tt.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, report)
				tt.validate(t, report)
			}
		})
	}
}
