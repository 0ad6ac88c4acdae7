package model

import (
	"time"
)

// TaskMode distinguishes the benchmark suite a task belongs to.
type TaskMode string

const (
	// TaskModeFluxsite marks single site offline tasks.
	TaskModeFluxsite TaskMode = "fluxsite"
	// TaskModeSpatial marks payu driven global tasks.
	TaskModeSpatial TaskMode = "spatial"
)

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task is a single model execution: one realisation run under one science
// configuration, for fluxsite tasks against one met forcing.
type Task struct {
	ID    string
	RunID string
	// Name uniquely identifies the task within a run, for example
	// "AU-Tum_2002-2017_OzFlux_Met_R0_S1".
	Name   string
	Mode   TaskMode
	Status TaskStatus
	// Error holds the failure message for failed tasks.
	Error      string
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// TaskSummary counts tasks by status.
type TaskSummary struct {
	Pending   int
	Running   int
	Completed int
	Failed    int
}

// SummarizeTasks aggregates task counts by status.
func SummarizeTasks(tasks []Task) TaskSummary {
	var s TaskSummary
	for _, t := range tasks {
		switch t.Status {
		case TaskStatusPending:
			s.Pending++
		case TaskStatusRunning:
			s.Running++
		case TaskStatusCompleted:
			s.Completed++
		case TaskStatusFailed:
			s.Failed++
		}
	}
	return s
}
