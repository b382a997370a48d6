package query

import (
	"context"

	"github.com/eaglebank/ledger/internal/cqrs"
	"github.com/eaglebank/ledger/internal/models"
)

type ProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ProfileView, error)
}

// ProfileQueryService answers GET /users/me.
type ProfileQueryService struct {
	reader ProfileReader
}

func NewProfileQueryService(reader ProfileReader) *ProfileQueryService {
	return &ProfileQueryService{reader: reader}
}

func (s *ProfileQueryService) GetProfile(ctx context.Context, q cqrs.GetProfileQuery) (*models.ProfileView, error) {
	return s.reader.GetByUserID(ctx, q.UserID)
}
