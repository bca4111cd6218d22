package db

import (
	"context"
	"database/sql"
	"fmt"
)

// In the default ingestion modes natural-key uniqueness for students and
// buses is enforced by the engine only, so those tables carry no unique
// constraint: a sheet repeating a new key inserts every occurrence, exactly
// as the engine staged it. The unique indexes are added only when the
// conditional-insert mode is on, because INSERT IGNORE needs them.
// users.email uniqueness is store-enforced in every mode.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		enrollment_code VARCHAR(64) NOT NULL,
		full_name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(32) NOT NULL DEFAULT '',
		department VARCHAR(128) NOT NULL DEFAULT '',
		year VARCHAR(16) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_students_enrollment_code (enrollment_code)
	)`,
	`CREATE TABLE IF NOT EXISTS buses (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		bus_no VARCHAR(64) NOT NULL,
		route VARCHAR(255) NOT NULL DEFAULT '',
		driver_name VARCHAR(255) NOT NULL DEFAULT '',
		capacity VARCHAR(16) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_buses_bus_no (bus_no)
	)`,
	`CREATE TABLE IF NOT EXISTS stops (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		srno INT NOT NULL,
		code VARCHAR(64) NOT NULL,
		stopname VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		phone_number VARCHAR(32) NOT NULL,
		campus_id VARCHAR(64) NOT NULL,
		role ENUM('Student','Faculty','Staff') NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	)`,
}

type uniqueIndex struct {
	table  string
	name   string
	column string
}

// naturalKeyIndexes back the conditional-insert mode.
var naturalKeyIndexes = []uniqueIndex{
	{table: "students", name: "uq_students_enrollment_code", column: "enrollment_code"},
	{table: "buses", name: "uq_buses_bus_no", column: "bus_no"},
}

// EnsureSchema creates missing tables on startup. With atomic ingestion the
// natural-key unique indexes are added as well; in default mode they are
// deliberately absent.
func EnsureSchema(ctx context.Context, db *sql.DB, atomic bool) error {
	for _, stmt := range tables {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	if !atomic {
		return nil
	}

	for _, idx := range naturalKeyIndexes {
		if err := ensureUniqueIndex(ctx, db, idx); err != nil {
			return fmt.Errorf("failed to ensure index %s: %w", idx.name, err)
		}
	}
	return nil
}

// ensureUniqueIndex adds the index if it is not already there. MySQL has no
// IF NOT EXISTS for ALTER TABLE ADD KEY, so existence goes through
// information_schema.
func ensureUniqueIndex(ctx context.Context, db *sql.DB, idx uniqueIndex) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM information_schema.statistics
		 WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?`,
		idx.table, idx.name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(
		"ALTER TABLE %s ADD UNIQUE KEY %s (%s)", idx.table, idx.name, idx.column))
	return err
}
