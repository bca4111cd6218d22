package db

import (
	"context"
	"database/sql"

	"finderhub-backend/internal/model"
	"finderhub-backend/internal/tabular"
)

// StudentStore persists and lists students. FindByKey/Insert/InsertBatch
// satisfy the ingestion engine; InsertUnique backs its conditional mode.
type StudentStore interface {
	FindByKey(ctx context.Context, key string) (bool, error)
	Insert(ctx context.Context, rec tabular.Record) error
	InsertBatch(ctx context.Context, recs []tabular.Record) error
	InsertUnique(ctx context.Context, rec tabular.Record) (bool, error)
	List(ctx context.Context) ([]model.Student, error)
}

type studentRepo struct {
	db *sql.DB
}

func NewStudentRepo(db *sql.DB) StudentStore {
	return &studentRepo{db: db}
}

func bindStudent(rec tabular.Record) []interface{} {
	return []interface{}{
		rec.Get("EnrollmentCode"),
		rec.Get("FullName"),
		rec.Get("Email"),
		rec.Get("Phone"),
		rec.Get("Department"),
		rec.Get("Year"),
	}
}

const studentInsert = `INSERT INTO students (enrollment_code, full_name, email, phone, department, year)
			  VALUES (?, ?, ?, ?, ?, ?)`

func (r *studentRepo) FindByKey(ctx context.Context, key string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM students WHERE enrollment_code = ?`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *studentRepo) Insert(ctx context.Context, rec tabular.Record) error {
	_, err := r.db.ExecContext(ctx, studentInsert, bindStudent(rec)...)
	return err
}

func (r *studentRepo) InsertBatch(ctx context.Context, recs []tabular.Record) error {
	return insertBatch(ctx, r.db, studentInsert, recs, bindStudent)
}

func (r *studentRepo) InsertUnique(ctx context.Context, rec tabular.Record) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO students (enrollment_code, full_name, email, phone, department, year)
		 VALUES (?, ?, ?, ?, ?, ?)`, bindStudent(rec)...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *studentRepo) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, enrollment_code, full_name, email, phone, department, year, created_at
		 FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		err := rows.Scan(&s.ID, &s.EnrollmentCode, &s.FullName, &s.Email,
			&s.Phone, &s.Department, &s.Year, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}
