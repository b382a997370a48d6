package cqrs

import "github.com/shopspring/decimal"

type RegisterCommand struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Pin         string
}

type DepositCommand struct {
	Owner  int64
	Amount decimal.Decimal
}

type TransferCommand struct {
	Owner       int64
	Source      string
	Destination string
	Amount      decimal.Decimal
	Pin         string
}

// WithdrawCommand moves funds out of the ledger. Destination and
// DestinationBankName describe the external account and are only echoed back.
type WithdrawCommand struct {
	Owner               int64
	Source              string
	Destination         string
	DestinationBankName string
	Amount              decimal.Decimal
	Pin                 string
}
