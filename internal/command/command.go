package command

import (
	"context"

	"github.com/eaglebank/ledger/internal/dbx"
	"github.com/eaglebank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

// TxRunner provides the pool for snapshot reads and runs units of work.
type TxRunner interface {
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
}

type AccountStore interface {
	FindByOwner(ctx context.Context, q dbx.DBTX, owner int64) (*models.Account, error)
	FindByNumber(ctx context.Context, q dbx.DBTX, accountNumber string) (*models.Account, error)
	NumberTaken(ctx context.Context, q dbx.DBTX, accountNumber string) (bool, error)
	AdjustBalance(ctx context.Context, q dbx.DBTX, owner int64, delta decimal.Decimal) (int64, error)
	Insert(ctx context.Context, q dbx.DBTX, account *models.Account) error
}

type UserStore interface {
	FindByEmail(ctx context.Context, q dbx.DBTX, email string) (*models.User, error)
	FindByEmailOrPhone(ctx context.Context, q dbx.DBTX, email, phone string) (*models.User, error)
	Insert(ctx context.Context, q dbx.DBTX, user *models.User) error
}

type PinHasher interface {
	Hash(pin string) (string, error)
	Verify(hash, pin string) bool
}

// EventPublisher delivers notifications after commit.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// ProfileInvalidator drops cached read views that a mutation made stale.
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, userID int64)
}
