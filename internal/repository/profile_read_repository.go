package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/eaglebank/ledger/internal/dbx"
	"github.com/eaglebank/ledger/internal/ledgererr"
	"github.com/eaglebank/ledger/internal/models"
	sharedredis "github.com/eaglebank/ledger/internal/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const profileViewKeyPrefix = "profile:view:"

// ProfileReadRepository serves the caller's profile from Redis, falling back
// to PostgreSQL and warming the cache on a miss.
type ProfileReadRepository struct {
	db    dbx.DBTX
	cache *sharedredis.ViewCache[models.ProfileView]
}

func NewProfileReadRepository(db dbx.DBTX, redisClient *goredis.Client, ttl time.Duration, logger *zap.Logger) *ProfileReadRepository {
	return &ProfileReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.ProfileView](redisClient, ttl, logger),
	}
}

func (r *ProfileReadRepository) GetByUserID(ctx context.Context, userID int64) (*models.ProfileView, error) {
	cacheKey := profileKey(userID)

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.phone_number,
			   a.account_number, a.balance
		FROM users u
		JOIN accounts a ON a.owner = u.id
		WHERE u.id = $1
	`
	var view models.ProfileView
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&view.User.ID, &view.User.FirstName, &view.User.LastName, &view.User.Email, &view.User.PhoneNumber,
		&view.Account.AccountNumber, &view.Account.Balance,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	r.cache.Set(ctx, cacheKey, &view)
	return &view, nil
}

// InvalidateProfile drops the cached profile after the owner's balance changed.
func (r *ProfileReadRepository) InvalidateProfile(ctx context.Context, userID int64) {
	r.cache.Delete(ctx, profileKey(userID))
}

func profileKey(userID int64) string {
	return profileViewKeyPrefix + strconv.FormatInt(userID, 10)
}
