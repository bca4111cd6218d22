package db

import (
	"context"
	"database/sql"

	"finderhub-backend/internal/model"
)

// StopStore has no dedup surface: the stops list is trusted input and each
// upload appends wholesale.
type StopStore interface {
	InsertBatch(ctx context.Context, stops []model.Stop) error
	List(ctx context.Context) ([]model.Stop, error)
}

type stopRepo struct {
	db *sql.DB
}

func NewStopRepo(db *sql.DB) StopStore {
	return &stopRepo{db: db}
}

func (r *stopRepo) InsertBatch(ctx context.Context, stops []model.Stop) error {
	if len(stops) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stops (srno, code, stopname) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, stop := range stops {
		if _, err := stmt.ExecContext(ctx, stop.SrNo, stop.Code, stop.StopName); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *stopRepo) List(ctx context.Context) ([]model.Stop, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, srno, code, stopname FROM stops ORDER BY srno`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := []model.Stop{}
	for rows.Next() {
		var s model.Stop
		if err := rows.Scan(&s.ID, &s.SrNo, &s.Code, &s.StopName); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}

	return stops, rows.Err()
}
