package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/ledger/internal/dbx"
	"github.com/eaglebank/ledger/internal/ledgererr"
	"github.com/eaglebank/ledger/internal/models"
)

const userColumns = `id, first_name, last_name, email, phone_number, created_at`

// UserRepository reads and writes the users table.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) FindByID(ctx context.Context, q dbx.DBTX, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, q dbx.DBTX, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(q.QueryRowContext(ctx, query, email))
}

// FindByEmailOrPhone returns any user holding either identifier.
func (r *UserRepository) FindByEmailOrPhone(ctx context.Context, q dbx.DBTX, email, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR phone_number = $2 LIMIT 1`
	return scanUser(q.QueryRowContext(ctx, query, email, phone))
}

func (r *UserRepository) Insert(ctx context.Context, q dbx.DBTX, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, phone_number)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.ExecContext(ctx, query, user.FirstName, user.LastName, user.Email, user.PhoneNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ledgererr.ErrDuplicateUser, err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
