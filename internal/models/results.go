package models

import "github.com/shopspring/decimal"

// Registration is returned once a user and its account are committed.
type Registration struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"accountNumber"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phone_number"`
}

type DepositResult struct {
	Balance decimal.Decimal `json:"balance"`
	Owner   int64           `json:"owner"`
}

type TransferResult struct {
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
}

type WithdrawalResult struct {
	Source              string          `json:"source"`
	Destination         string          `json:"destination"`
	Amount              decimal.Decimal `json:"amount"`
	DestinationBankName string          `json:"destinationBankName"`
}
