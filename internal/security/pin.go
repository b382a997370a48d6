package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPinCost matches the work factor pins have always been stored with.
const DefaultPinCost = 10

// BcryptPinHasher hashes and verifies transaction pins.
type BcryptPinHasher struct {
	cost int
}

func NewBcryptPinHasher(cost int) *BcryptPinHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPinCost
	}
	return &BcryptPinHasher{cost: cost}
}

func (h *BcryptPinHasher) Hash(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(b), nil
}

// Verify reports whether pin matches hash. A malformed hash never verifies.
func (h *BcryptPinHasher) Verify(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
