package model

import (
	"time"
)

// Run represents the benchmark state tracked for one working directory.
// A working directory holds at most one run, re-running a phase updates
// the same run in place.
type Run struct {
	ID         string
	WorkDir    string
	ConfigPath string
	// PBSJobID is the job identifier returned by qsub, empty until the
	// fluxsite job has been submitted.
	PBSJobID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RealisationRecord is the recorded state of a checked out realisation.
type RealisationRecord struct {
	RunID string
	// Index is the position of the realisation in the configuration. It
	// doubles as the model identifier in task names.
	Index int
	Name  string
	// Revision is the commit hash or SVN revision of the checkout.
	Revision string
}

// RunReport aggregates the stored state of a run for reporting.
type RunReport struct {
	Run          Run
	Realisations []RealisationRecord
	Tasks        []Task
	Comparisons  []Comparison
	// PBSJobState is the live job state reported by the scheduler, empty
	// when unknown.
	PBSJobState string
}
