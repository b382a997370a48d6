package models

import "github.com/shopspring/decimal"

// UserView is the public projection of a user.
type UserView struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// AccountView is the public projection of an account.
type AccountView struct {
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
}

// ProfileView is what GET /users/me returns and what the profile cache holds.
type ProfileView struct {
	User    UserView    `json:"user"`
	Account AccountView `json:"account"`
}
