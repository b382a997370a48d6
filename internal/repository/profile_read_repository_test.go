package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/eaglebank/ledger/internal/ledgererr"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const profileQuery = `(?s)SELECT\s+u\.id.+FROM\s+users\s+u\s+JOIN\s+accounts\s+a\s+ON\s+a\.owner\s*=\s*u\.id\s+WHERE\s+u\.id\s*=\s*\$1`

func newProfileRepo(t *testing.T) (*ProfileReadRepository, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock := newMockDB(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProfileReadRepository(db, client, time.Minute, zap.NewNop()), mock, mr
}

func TestProfileReadRepository_MissThenHit(t *testing.T) {
	repo, mock, mr := newProfileRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(profileQuery).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone_number", "account_number", "balance"}).
			AddRow(int64(5), "Grace", "Hopper", "grace@example.com", "08011112222", "2155555555", "320.50"))

	first, err := repo.GetByUserID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Grace", first.User.FirstName)
	assert.Equal(t, "320.5", first.Account.Balance.String())
	assert.True(t, mr.Exists("profile:view:5"))

	// served from Redis: no further query is expected
	second, err := repo.GetByUserID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "2155555555", second.Account.AccountNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileReadRepository_Invalidate(t *testing.T) {
	repo, mock, mr := newProfileRepo(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("profile:view:8", `{"user":{"id":8},"account":{"accountNumber":"2100000008","balance":"1"}}`))
	repo.InvalidateProfile(ctx, 8)
	assert.False(t, mr.Exists("profile:view:8"))

	mock.ExpectQuery(profileQuery).WithArgs(int64(8)).WillReturnError(sql.ErrNoRows)
	_, err := repo.GetByUserID(ctx, 8)
	assert.ErrorIs(t, err, ledgererr.ErrUserNotFound)
}
