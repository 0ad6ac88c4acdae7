package sqlite

import (
	"context"
	"fmt"

	"github.com/cable-lsm/benchcab/internal/model"
)

// ReplaceRealisations replaces the recorded realisation checkouts of a run.
func (r *Repository) ReplaceRealisations(ctx context.Context, runID string, records []model.RealisationRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM realisations WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("could not delete realisations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO realisations (run_id, idx, name, revision)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, runID, rec.Index, rec.Name, rec.Revision)
		if err != nil {
			return fmt.Errorf("could not insert realisation %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Replaced %d realisation records for run %s", len(records), runID)
	return nil
}

// ListRealisations returns the recorded realisations of a run ordered by
// their configuration index.
func (r *Repository) ListRealisations(ctx context.Context, runID string) ([]model.RealisationRecord, error) {
	query := `
		SELECT run_id, idx, name, revision
		FROM realisations
		WHERE run_id = ?
		ORDER BY idx
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query realisations: %w", err)
	}
	defer rows.Close()

	var records []model.RealisationRecord
	for rows.Next() {
		var rec model.RealisationRecord
		err := rows.Scan(&rec.RunID, &rec.Index, &rec.Name, &rec.Revision)
		if err != nil {
			return nil, fmt.Errorf("could not scan realisation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate realisations: %w", err)
	}

	return records, nil
}
