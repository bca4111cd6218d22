package db

import (
	"context"
	"database/sql"

	"finderhub-backend/internal/tabular"
)

// insertBatch runs the staged inserts inside one transaction so a bulk
// persist fails or lands as a whole.
func insertBatch(ctx context.Context, db *sql.DB, query string, recs []tabular.Record, bind func(tabular.Record) []interface{}) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, bind(rec)...); err != nil {
			return err
		}
	}

	return tx.Commit()
}
