package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/ledger/internal/dbx"
	"github.com/eaglebank/ledger/internal/ledgererr"
	"github.com/eaglebank/ledger/internal/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

const accountColumns = `owner, account_number, balance, transaction_pin_hash, created_at, updated_at`

// AccountRepository reads and writes the accounts table. Every call takes the
// handle it runs on so that callers decide what belongs to a unit of work.
type AccountRepository struct{}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

func (r *AccountRepository) FindByOwner(ctx context.Context, q dbx.DBTX, owner int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner = $1`
	return scanAccount(q.QueryRowContext(ctx, query, owner))
}

func (r *AccountRepository) FindByNumber(ctx context.Context, q dbx.DBTX, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return scanAccount(q.QueryRowContext(ctx, query, accountNumber))
}

// NumberTaken reports whether an account already uses accountNumber.
func (r *AccountRepository) NumberTaken(ctx context.Context, q dbx.DBTX, accountNumber string) (bool, error) {
	var taken bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, accountNumber,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return taken, nil
}

// AdjustBalance adds delta to the owner's balance unless that would take it
// below zero, and returns the number of rows changed. Callers treat anything
// other than 1 as a failed mutation.
func (r *AccountRepository) AdjustBalance(ctx context.Context, q dbx.DBTX, owner int64, delta decimal.Decimal) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE owner = $1 AND balance + $2 >= 0
	`
	result, err := q.ExecContext(ctx, query, owner, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}

func (r *AccountRepository) Insert(ctx context.Context, q dbx.DBTX, account *models.Account) error {
	query := `
		INSERT INTO accounts (owner, account_number, balance, transaction_pin_hash)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.ExecContext(ctx, query, account.Owner, account.AccountNumber, account.Balance, account.PinHash)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ledgererr.ErrAccountNumberTaken, err)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.Owner, &a.AccountNumber, &a.Balance, &a.PinHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
