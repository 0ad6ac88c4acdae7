package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cable-lsm/benchcab/internal/model"
)

// ReplaceTasks replaces the tasks of a run for one benchmark mode. Tasks of
// the other mode are left untouched so the fluxsite and spatial suites can
// be regenerated independently.
func (r *Repository) ReplaceTasks(ctx context.Context, runID string, mode model.TaskMode, tasks []model.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	_, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE run_id = ? AND mode = ?`, runID, mode)
	if err != nil {
		return fmt.Errorf("could not delete tasks: %w", err)
	}

	insertQuery := `
		INSERT INTO tasks (id, run_id, sequence, name, mode, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, task := range tasks {
		_, err := stmt.ExecContext(
			ctx,
			task.ID,
			runID,
			i,
			task.Name,
			mode,
			task.Status,
			task.Error,
			nullableUnix(task.StartedAt),
			nullableUnix(task.FinishedAt),
		)
		if err != nil {
			return fmt.Errorf("could not insert task %q: %w", task.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Replaced %d %s tasks for run %s", len(tasks), mode, runID)
	return nil
}

// ListTasks returns the tasks of a run for one mode in generation order.
func (r *Repository) ListTasks(ctx context.Context, runID string, mode model.TaskMode) ([]model.Task, error) {
	query := `
		SELECT id, run_id, name, mode, status, error, started_at, finished_at
		FROM tasks
		WHERE run_id = ? AND mode = ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID, mode)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var task model.Task
		var startedAt, finishedAt sql.NullInt64
		err := rows.Scan(
			&task.ID,
			&task.RunID,
			&task.Name,
			&task.Mode,
			&task.Status,
			&task.Error,
			&startedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		task.StartedAt = timeFromNullable(startedAt)
		task.FinishedAt = timeFromNullable(finishedAt)
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}

	return tasks, nil
}

// SetTaskStatus transitions a task identified by run and name. Entering the
// running state stamps the start time, terminal states stamp the finish time
// and failures record the error message.
func (r *Repository) SetTaskStatus(ctx context.Context, runID, name string, status model.TaskStatus, taskErr string) error {
	now := time.Now().UTC().Unix()

	var query string
	var args []interface{}
	switch status {
	case model.TaskStatusRunning:
		query = `UPDATE tasks SET status = ?, error = '', started_at = ?, finished_at = NULL WHERE run_id = ? AND name = ?`
		args = []interface{}{status, now, runID, name}
	case model.TaskStatusCompleted:
		query = `UPDATE tasks SET status = ?, error = '', finished_at = ? WHERE run_id = ? AND name = ?`
		args = []interface{}{status, now, runID, name}
	case model.TaskStatusFailed:
		query = `UPDATE tasks SET status = ?, error = ?, finished_at = ? WHERE run_id = ? AND name = ?`
		args = []interface{}{status, taskErr, now, runID, name}
	default:
		query = `UPDATE tasks SET status = ?, error = '', started_at = NULL, finished_at = NULL WHERE run_id = ? AND name = ?`
		args = []interface{}{status, runID, name}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", name, model.ErrNotFound)
	}

	return nil
}

func nullableUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timeFromNullable(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := timeFromUnix(v.Int64)
	return &t
}
