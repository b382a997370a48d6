package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	AccountNumberPrefix = "21"
	MaxAmountPlaces     = 2
	accountSuffixMin    = 10_000_000
	accountSuffixMax    = 99_999_999
)

// GenerateAccountNumber returns "21" followed by a suffix drawn uniformly
// from [10000000, 99999999].
func GenerateAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(accountSuffixMax-accountSuffixMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate account number: %w", err)
	}
	return fmt.Sprintf("%s%d", AccountNumberPrefix, n.Int64()+accountSuffixMin), nil
}

// ValidateAccountNumber reports whether s has the shape GenerateAccountNumber produces.
func ValidateAccountNumber(s string) bool {
	if len(s) != 10 || !strings.HasPrefix(s, AccountNumberPrefix) {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s[2] != '0'
}

// WithinAmountScale reports whether amount fits the balance column's scale
// without rounding.
func WithinAmountScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MaxAmountPlaces))
}
