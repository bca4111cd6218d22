package db

import (
	"context"
	"database/sql"
	"errors"

	"finderhub-backend/internal/model"
	pkgerrors "finderhub-backend/pkg/errors"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

type UserStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *model.User) error
}

type userRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) UserStore {
	return &userRepo{db: db}
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE email = ?`, email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create relies on the unique index on email as the final arbiter; a race
// past ExistsByEmail still comes back as ErrDuplicateEmail.
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (full_name, email, password_hash, phone_number, campus_id, role)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.FullName, user.Email, user.PasswordHash, user.PhoneNumber, user.CampusID, user.Role)

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
		return pkgerrors.ErrDuplicateEmail
	}
	return err
}
