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

// AccountCommandService applies deposits, transfers and withdrawals.
//
// Each operation validates its preconditions against a snapshot read, then
// applies every balance change inside one unit of work. A balance change is a
// conditional delta update that must touch exactly one row; anything else
// aborts the unit of work with ledgererr.ErrMutationFailed. Precondition
// failures never change state.
type AccountCommandService struct {
	runner    TxRunner
	accounts  AccountStore
	pins      PinHasher
	profiles  ProfileInvalidator
	publisher EventPublisher
	logger    *zap.Logger
}

func NewAccountCommandService(
	runner TxRunner,
	accounts AccountStore,
	pins PinHasher,
	profiles ProfileInvalidator,
	publisher EventPublisher,
	logger *zap.Logger,
) *AccountCommandService {
	return &AccountCommandService{
		runner:    runner,
		accounts:  accounts,
		pins:      pins,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *AccountCommandService) Deposit(ctx context.Context, cmd cqrs.DepositCommand) (*models.DepositResult, error) {
	if !validAmount(cmd.Amount) {
		return nil, ledgererr.ErrInvalidAmount
	}
	account, err := s.accounts.FindByOwner(ctx, s.runner.Conn(), cmd.Owner)
	if err != nil {
		return nil, err
	}

	var balance decimal.Decimal
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.adjust(ctx, tx, account.Owner, cmd.Amount); err != nil {
			return err
		}
		updated, err := s.accounts.FindByOwner(ctx, tx, account.Owner)
		if err != nil {
			return err
		}
		balance = updated.Balance
		return nil
	})
	if err != nil {
		return nil, s.txFailure("deposit", err, zap.Int64("owner", cmd.Owner))
	}

	s.logger.Info("deposit applied",
		zap.Int64("owner", account.Owner),
		zap.String("amount", cmd.Amount.String()),
		zap.String("balance", balance.String()),
	)
	s.profiles.InvalidateProfile(ctx, account.Owner)
	s.publish(ctx, events.AccountEventsStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
		Owner:         account.Owner,
		AccountNumber: account.AccountNumber,
		Change:        cmd.Amount,
		NewBalance:    balance,
	})
	return &models.DepositResult{Balance: balance, Owner: account.Owner}, nil
}

// Transfer checks, in order: amount, existence of both accounts, ownership of
// the source, distinct accounts, funds, pin. The first failing check wins.
func (s *AccountCommandService) Transfer(ctx context.Context, cmd cqrs.TransferCommand) (*models.TransferResult, error) {
	if !validAmount(cmd.Amount) {
		return nil, ledgererr.ErrInvalidAmount
	}
	source, err := s.accounts.FindByNumber(ctx, s.runner.Conn(), cmd.Source)
	if err != nil {
		return nil, err
	}
	destination, err := s.accounts.FindByNumber(ctx, s.runner.Conn(), cmd.Destination)
	if err != nil {
		return nil, err
	}
	if source.Owner != cmd.Owner {
		return nil, ledgererr.ErrNotOwner
	}
	if source.AccountNumber == destination.AccountNumber {
		return nil, ledgererr.ErrSameAccount
	}
	if source.Balance.LessThan(cmd.Amount) {
		return nil, ledgererr.ErrInsufficientFunds
	}
	if !s.pins.Verify(source.PinHash, cmd.Pin) {
		return nil, ledgererr.ErrInvalidPin
	}

	// Rows are always locked in ascending owner order so that opposing
	// transfers cannot deadlock.
	changes := []struct {
		owner int64
		delta decimal.Decimal
	}{
		{source.Owner, cmd.Amount.Neg()},
		{destination.Owner, cmd.Amount},
	}
	if destination.Owner < source.Owner {
		changes[0], changes[1] = changes[1], changes[0]
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		for _, c := range changes {
			if err := s.adjust(ctx, tx, c.owner, c.delta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.txFailure("transfer", err,
			zap.String("source", source.AccountNumber),
			zap.String("destination", destination.AccountNumber),
		)
	}

	s.logger.Info("transfer applied",
		zap.String("source", source.AccountNumber),
		zap.String("destination", destination.AccountNumber),
		zap.String("amount", cmd.Amount.String()),
	)
	s.profiles.InvalidateProfile(ctx, source.Owner)
	s.profiles.InvalidateProfile(ctx, destination.Owner)
	s.publish(ctx, events.AccountEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
		Source:      source.AccountNumber,
		Destination: destination.AccountNumber,
		Amount:      cmd.Amount,
	})
	return &models.TransferResult{
		Source:      source.AccountNumber,
		Destination: destination.AccountNumber,
		Amount:      cmd.Amount,
	}, nil
}

// Withdraw debits the source account. The external destination is not
// checked, only echoed in the result.
func (s *AccountCommandService) Withdraw(ctx context.Context, cmd cqrs.WithdrawCommand) (*models.WithdrawalResult, error) {
	if !validAmount(cmd.Amount) {
		return nil, ledgererr.ErrInvalidAmount
	}
	source, err := s.accounts.FindByNumber(ctx, s.runner.Conn(), cmd.Source)
	if err != nil {
		return nil, err
	}
	if source.Owner != cmd.Owner {
		return nil, ledgererr.ErrNotOwner
	}
	if source.Balance.LessThan(cmd.Amount) {
		return nil, ledgererr.ErrInsufficientFunds
	}
	if !s.pins.Verify(source.PinHash, cmd.Pin) {
		return nil, ledgererr.ErrInvalidPin
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.adjust(ctx, tx, source.Owner, cmd.Amount.Neg())
	})
	if err != nil {
		return nil, s.txFailure("withdraw", err, zap.String("source", source.AccountNumber))
	}

	s.logger.Info("withdrawal applied",
		zap.String("source", source.AccountNumber),
		zap.String("amount", cmd.Amount.String()),
		zap.String("destinationBankName", cmd.DestinationBankName),
	)
	s.profiles.InvalidateProfile(ctx, source.Owner)
	s.publish(ctx, events.AccountEventsStream, events.WithdrawalCompleted, events.WithdrawalCompletedEvent{
		Source:              source.AccountNumber,
		Destination:         cmd.Destination,
		DestinationBankName: cmd.DestinationBankName,
		Amount:              cmd.Amount,
	})
	return &models.WithdrawalResult{
		Source:              source.AccountNumber,
		Destination:         cmd.Destination,
		Amount:              cmd.Amount,
		DestinationBankName: cmd.DestinationBankName,
	}, nil
}

// validAmount accepts positive amounts the balance column stores exactly.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && utils.WithinAmountScale(amount)
}

// adjust applies delta to owner's balance and enforces the one-row postcondition.
func (s *AccountCommandService) adjust(ctx context.Context, tx dbx.DBTX, owner int64, delta decimal.Decimal) error {
	rows, err := s.accounts.AdjustBalance(ctx, tx, owner, delta)
	if err != nil {
		return err
	}
	if rows != 1 {
		s.logger.Warn("balance update did not apply",
			zap.Int64("owner", owner),
			zap.String("delta", delta.String()),
			zap.Int64("rows", rows),
		)
		return ledgererr.ErrMutationFailed
	}
	return nil
}

// txFailure passes classified errors through and wraps the rest as internal.
func (s *AccountCommandService) txFailure(op string, err error, fields ...zap.Field) error {
	if errors.Is(err, ledgererr.ErrMutationFailed) {
		return err
	}
	s.logger.Error(op+" rolled back", append(fields, zap.Error(err))...)
	if _, ok := ledgererr.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *AccountCommandService) publish(ctx context.Context, stream, eventType string, data any) {
	if err := s.publisher.Publish(ctx, stream, eventType, data); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
