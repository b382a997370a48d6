package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	UserRegistered      = "user.registered"
	BalanceUpdated      = "balance.updated"
	TransferCompleted   = "transfer.completed"
	WithdrawalCompleted = "withdrawal.completed"
)

// Stream names. The Kafka publisher uses them as topic names.
const (
	UserEventsStream    = "ledger.users"
	AccountEventsStream = "ledger.accounts"
)

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

func NewEvent(eventType string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type UserRegisteredEvent struct {
	UserID        int64  `json:"userId"`
	Email         string `json:"email"`
	AccountNumber string `json:"accountNumber"`
}

type BalanceUpdatedEvent struct {
	Owner         int64           `json:"owner"`
	AccountNumber string          `json:"accountNumber,omitempty"`
	Change        decimal.Decimal `json:"change"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}

type TransferCompletedEvent struct {
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
}

type WithdrawalCompletedEvent struct {
	Source              string          `json:"source"`
	Destination         string          `json:"destination"`
	DestinationBankName string          `json:"destinationBankName"`
	Amount              decimal.Decimal `json:"amount"`
}
