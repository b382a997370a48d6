package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/eaglebank/ledger/internal/cqrs"
	"github.com/eaglebank/ledger/internal/dbx"
	"github.com/eaglebank/ledger/internal/events"
	"github.com/eaglebank/ledger/internal/ledgererr"
	"github.com/eaglebank/ledger/internal/models"
	"github.com/eaglebank/ledger/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxAccountNumberAttempts = 5

var errAccountNumbersExhausted = errors.New("no free account number after retries")

// UserCommandService registers users together with their account.
type UserCommandService struct {
	runner    TxRunner
	users     UserStore
	accounts  AccountStore
	pins      PinHasher
	publisher EventPublisher
	logger    *zap.Logger

	// generateNumber is swapped in tests to force collisions.
	generateNumber func() (string, error)
}

func NewUserCommandService(
	runner TxRunner,
	users UserStore,
	accounts AccountStore,
	pins PinHasher,
	publisher EventPublisher,
	logger *zap.Logger,
) *UserCommandService {
	return &UserCommandService{
		runner:         runner,
		users:          users,
		accounts:       accounts,
		pins:           pins,
		publisher:      publisher,
		logger:         logger,
		generateNumber: utils.GenerateAccountNumber,
	}
}

// Register creates the user and a zero-balance account in one unit of work.
// Either both rows exist afterwards or neither does.
func (s *UserCommandService) Register(ctx context.Context, cmd cqrs.RegisterCommand) (*models.Registration, error) {
	existing, err := s.users.FindByEmailOrPhone(ctx, s.runner.Conn(), cmd.Email, cmd.PhoneNumber)
	switch {
	case err == nil && existing != nil:
		return nil, ledgererr.ErrDuplicateUser
	case err != nil && !errors.Is(err, ledgererr.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	pinHash, err := s.pins.Hash(cmd.Pin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledgererr.ErrRegistrationFailed, err)
	}

	var reg *models.Registration
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.users.Insert(ctx, tx, &models.User{
			FirstName:   cmd.FirstName,
			LastName:    cmd.LastName,
			Email:       cmd.Email,
			PhoneNumber: cmd.PhoneNumber,
		}); err != nil {
			return err
		}

		user, err := s.users.FindByEmail(ctx, tx, cmd.Email)
		if err != nil {
			return err
		}

		number, err := s.allocateAccountNumber(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.accounts.Insert(ctx, tx, &models.Account{
			Owner:         user.ID,
			AccountNumber: number,
			Balance:       decimal.Zero,
			PinHash:       pinHash,
		}); err != nil {
			return err
		}

		reg = &models.Registration{
			ID:            user.ID,
			AccountNumber: number,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Email:         user.Email,
			PhoneNumber:   user.PhoneNumber,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ledgererr.ErrDuplicateUser) {
			return nil, ledgererr.ErrDuplicateUser
		}
		s.logger.Error("registration rolled back", zap.String("email", cmd.Email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ledgererr.ErrRegistrationFailed, err)
	}

	s.logger.Info("user registered", zap.Int64("userId", reg.ID), zap.String("accountNumber", reg.AccountNumber))
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID:        reg.ID,
		Email:         reg.Email,
		AccountNumber: reg.AccountNumber,
	}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", events.UserRegistered), zap.Error(err))
	}
	return reg, nil
}

// allocateAccountNumber draws numbers until one is free. The unique
// constraint on account_number still rejects a number taken concurrently.
func (s *UserCommandService) allocateAccountNumber(ctx context.Context, tx dbx.DBTX) (string, error) {
	for attempt := 1; attempt <= maxAccountNumberAttempts; attempt++ {
		number, err := s.generateNumber()
		if err != nil {
			return "", err
		}
		taken, err := s.accounts.NumberTaken(ctx, tx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
		s.logger.Debug("account number collision", zap.String("accountNumber", number), zap.Int("attempt", attempt))
	}
	return "", errAccountNumbersExhausted
}
