package db

import (
	"context"
	"database/sql"

	"finderhub-backend/internal/model"
	"finderhub-backend/internal/tabular"
)

type BusStore interface {
	FindByKey(ctx context.Context, key string) (bool, error)
	Insert(ctx context.Context, rec tabular.Record) error
	InsertBatch(ctx context.Context, recs []tabular.Record) error
	InsertUnique(ctx context.Context, rec tabular.Record) (bool, error)
	List(ctx context.Context) ([]model.Bus, error)
}

type busRepo struct {
	db *sql.DB
}

func NewBusRepo(db *sql.DB) BusStore {
	return &busRepo{db: db}
}

func bindBus(rec tabular.Record) []interface{} {
	return []interface{}{
		rec.Get("Busno"),
		rec.Get("Route"),
		rec.Get("DriverName"),
		rec.Get("Capacity"),
	}
}

const busInsert = `INSERT INTO buses (bus_no, route, driver_name, capacity)
			  VALUES (?, ?, ?, ?)`

func (r *busRepo) FindByKey(ctx context.Context, key string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM buses WHERE bus_no = ?`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *busRepo) Insert(ctx context.Context, rec tabular.Record) error {
	_, err := r.db.ExecContext(ctx, busInsert, bindBus(rec)...)
	return err
}

func (r *busRepo) InsertBatch(ctx context.Context, recs []tabular.Record) error {
	return insertBatch(ctx, r.db, busInsert, recs, bindBus)
}

func (r *busRepo) InsertUnique(ctx context.Context, rec tabular.Record) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO buses (bus_no, route, driver_name, capacity)
		 VALUES (?, ?, ?, ?)`, bindBus(rec)...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *busRepo) List(ctx context.Context) ([]model.Bus, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, bus_no, route, driver_name, capacity, created_at
		 FROM buses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buses := []model.Bus{}
	for rows.Next() {
		var b model.Bus
		err := rows.Scan(&b.ID, &b.BusNo, &b.Route, &b.DriverName, &b.Capacity, &b.CreatedAt)
		if err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}

	return buses, rows.Err()
}
