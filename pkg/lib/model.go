package lib

import (
	"errors"
	"time"

	"github.com/cable-lsm/benchcab/internal/model"
)

// Errors returned by SDK methods, match them with [errors.Is].
var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid inputs or operations.
	ErrNotValid = errors.New("not valid")
)

// TaskMode distinguishes the benchmark suite a task belongs to.
type TaskMode string

const (
	// TaskModeFluxsite marks single site offline tasks.
	TaskModeFluxsite TaskMode = "fluxsite"
	// TaskModeSpatial marks payu driven global tasks.
	TaskModeSpatial TaskMode = "spatial"
)

// TaskStatus represents the state of a benchmark task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started yet.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task is executing.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the model run returned an error.
	TaskStatusFailed TaskStatus = "failed"
)

// Task is a single model execution: one realisation run under one science
// configuration, for fluxsite tasks against one met forcing.
type Task struct {
	// Name uniquely identifies the task within a run, for example
	// "AU-Tum_2002-2017_OzFlux_Met_R0_S1".
	Name string
	// Mode is the benchmark suite the task belongs to.
	Mode TaskMode
	// Status is the recorded task state.
	Status TaskStatus
	// Error holds the failure message for failed tasks.
	Error string
	// StartedAt is when the task started running. Nil if never started.
	StartedAt *time.Time
	// FinishedAt is when the task finished. Nil while pending or running.
	FinishedAt *time.Time
}

// ComparisonOutcome represents the result of a bitwise output comparison.
type ComparisonOutcome string

const (
	// ComparisonOutcomePending indicates the comparison has not run yet.
	ComparisonOutcomePending ComparisonOutcome = "pending"
	// ComparisonOutcomeIdentical means the two outputs are bitwise identical.
	ComparisonOutcomeIdentical ComparisonOutcome = "identical"
	// ComparisonOutcomeDiffer means the outputs differ.
	ComparisonOutcomeDiffer ComparisonOutcome = "differ"
	// ComparisonOutcomeError means the comparison itself could not run.
	ComparisonOutcomeError ComparisonOutcome = "error"
)

// Comparison is a pairwise bitwise comparison between the outputs of two
// tasks that share a met forcing and science configuration.
type Comparison struct {
	// Name identifies the comparison, for example
	// "AU-Tum_2002-2017_OzFlux_Met_S1_R0_R1".
	Name string
	// FileA and FileB are the output files under comparison.
	FileA string
	FileB string
	// TaskA and TaskB name the tasks that produced the files.
	TaskA string
	TaskB string
	// Outcome is the recorded comparison result.
	Outcome ComparisonOutcome
	// Detail holds the path of the difference report for outcomes that
	// differ, or the error message when the comparison failed.
	Detail string
}

// Realisation is the recorded state of a checked out CABLE branch.
type Realisation struct {
	// Index is the position of the realisation in the configuration. It
	// doubles as the model identifier in task names (R<Index>).
	Index int
	// Name is the realisation name.
	Name string
	// Revision is the commit hash or SVN revision of the checkout.
	Revision string
}

// RunReport is a read-only snapshot of the benchmark state recorded for a
// working directory.
type RunReport struct {
	// ID is the unique run identifier (ULID).
	ID string
	// WorkDir is the benchmark working directory.
	WorkDir string
	// ConfigPath is the configuration file the run was created from.
	ConfigPath string
	// PBSJobID is the fluxsite job identifier, empty before submission.
	PBSJobID string
	// PBSJobState is the live scheduler state of the job ("Q", "R", "F", ...),
	// empty when unknown.
	PBSJobState string
	// CreatedAt is when the run state was first recorded.
	CreatedAt time.Time
	// UpdatedAt is when the run state last changed.
	UpdatedAt time.Time
	// Realisations are the recorded checkouts.
	Realisations []Realisation
	// Tasks are the recorded benchmark tasks, fluxsite first.
	Tasks []Task
	// Comparisons are the recorded bitwise comparisons.
	Comparisons []Comparison
}

// CleanTarget selects which benchmark files Clean removes.
type CleanTarget string

const (
	// CleanAll removes realisations, submissions and the recorded run state.
	CleanAll CleanTarget = "all"
	// CleanRealisations removes the checked out CABLE source trees.
	CleanRealisations CleanTarget = "realisations"
	// CleanSubmissions removes the run directories and PBS job artifacts.
	CleanSubmissions CleanTarget = "submissions"
)

// CheckStatus represents the status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed with a warning.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult represents the result of a single preflight check.
type CheckResult struct {
	// ID is a unique identifier for the check (e.g. "qsub_available").
	ID string
	// Message is a human-readable description of the result.
	Message string
	// Status is the check status.
	Status CheckStatus
}

// SubmitOpts configures the fluxsite PBS job submission.
//
// Pass nil to [Client.FluxsiteSubmitJob] for defaults (run and compare in
// the job, quiet logging, the current executable as the benchcab binary).
type SubmitOpts struct {
	// SkipBitwiseCmp leaves the bitwise comparison step out of the job.
	SkipBitwiseCmp bool
	// Verbose enables debug logging inside the job.
	Verbose bool
	// BenchcabPath is the benchcab executable the job script invokes.
	// Empty selects the running executable.
	BenchcabPath string
}

// --- Internal conversion helpers ---

func fromInternalRealisations(records []model.RealisationRecord) []Realisation {
	out := make([]Realisation, len(records))
	for i, r := range records {
		out[i] = Realisation{
			Index:    r.Index,
			Name:     r.Name,
			Revision: r.Revision,
		}
	}
	return out
}

func fromInternalTasks(tasks []model.Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = Task{
			Name:       t.Name,
			Mode:       TaskMode(t.Mode),
			Status:     TaskStatus(t.Status),
			Error:      t.Error,
			StartedAt:  t.StartedAt,
			FinishedAt: t.FinishedAt,
		}
	}
	return out
}

func fromInternalComparisons(cs []model.Comparison) []Comparison {
	out := make([]Comparison, len(cs))
	for i, c := range cs {
		out[i] = Comparison{
			Name:    c.Name,
			FileA:   c.FileA,
			FileB:   c.FileB,
			TaskA:   c.TaskA,
			TaskB:   c.TaskB,
			Outcome: ComparisonOutcome(c.Outcome),
			Detail:  c.Detail,
		}
	}
	return out
}

func fromInternalReport(r model.RunReport) RunReport {
	return RunReport{
		ID:           r.Run.ID,
		WorkDir:      r.Run.WorkDir,
		ConfigPath:   r.Run.ConfigPath,
		PBSJobID:     r.Run.PBSJobID,
		PBSJobState:  r.PBSJobState,
		CreatedAt:    r.Run.CreatedAt,
		UpdatedAt:    r.Run.UpdatedAt,
		Realisations: fromInternalRealisations(r.Realisations),
		Tasks:        fromInternalTasks(r.Tasks),
		Comparisons:  fromInternalComparisons(r.Comparisons),
	}
}

func fromInternalCheckResults(results []model.CheckResult) []CheckResult {
	out := make([]CheckResult, len(results))
	for i, r := range results {
		out[i] = CheckResult{
			ID:      r.ID,
			Message: r.Message,
			Status:  CheckStatus(r.Status),
		}
	}
	return out
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case isInternalError(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case isInternalError(err, model.ErrAlreadyExists):
		return joinErrors(err, ErrAlreadyExists)
	case isInternalError(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	default:
		return err
	}
}

func isInternalError(err, target error) bool {
	for {
		if err == target {
			return true
		}
		unwrapped := unwrapSingle(err)
		if unwrapped == nil {
			return false
		}
		err = unwrapped
	}
}

func unwrapSingle(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

// mappedError bridges internal sentinel errors to their public
// counterparts while keeping the original chain intact.
type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
