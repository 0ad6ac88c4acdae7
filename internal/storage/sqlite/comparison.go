package sqlite

import (
	"context"
	"fmt"

	"github.com/cable-lsm/benchcab/internal/model"
)

// ReplaceComparisons replaces the bitwise comparisons of a run.
func (r *Repository) ReplaceComparisons(ctx context.Context, runID string, comparisons []model.Comparison) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	_, err = tx.ExecContext(ctx, `DELETE FROM comparisons WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("could not delete comparisons: %w", err)
	}

	insertQuery := `
		INSERT INTO comparisons (id, run_id, sequence, name, file_a, file_b, task_a, task_b, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, cmp := range comparisons {
		_, err := stmt.ExecContext(
			ctx,
			cmp.ID,
			runID,
			i,
			cmp.Name,
			cmp.FileA,
			cmp.FileB,
			cmp.TaskA,
			cmp.TaskB,
			cmp.Outcome,
			cmp.Detail,
		)
		if err != nil {
			return fmt.Errorf("could not insert comparison %q: %w", cmp.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Replaced %d comparisons for run %s", len(comparisons), runID)
	return nil
}

// ListComparisons returns the comparisons of a run in generation order.
func (r *Repository) ListComparisons(ctx context.Context, runID string) ([]model.Comparison, error) {
	query := `
		SELECT id, run_id, name, file_a, file_b, task_a, task_b, outcome, detail
		FROM comparisons
		WHERE run_id = ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query comparisons: %w", err)
	}
	defer rows.Close()

	var comparisons []model.Comparison
	for rows.Next() {
		var cmp model.Comparison
		err := rows.Scan(
			&cmp.ID,
			&cmp.RunID,
			&cmp.Name,
			&cmp.FileA,
			&cmp.FileB,
			&cmp.TaskA,
			&cmp.TaskB,
			&cmp.Outcome,
			&cmp.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan comparison: %w", err)
		}
		comparisons = append(comparisons, cmp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate comparisons: %w", err)
	}

	return comparisons, nil
}

// SetComparisonOutcome records the outcome of a comparison identified by run
// and name.
func (r *Repository) SetComparisonOutcome(ctx context.Context, runID, name string, outcome model.ComparisonOutcome, detail string) error {
	query := `UPDATE comparisons SET outcome = ?, detail = ? WHERE run_id = ? AND name = ?`

	result, err := r.db.ExecContext(ctx, query, outcome, detail, runID, name)
	if err != nil {
		return fmt.Errorf("could not update comparison: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("comparison %s: %w", name, model.ErrNotFound)
	}

	return nil
}
