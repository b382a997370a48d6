package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPinHasher(t *testing.T) {
	h := NewBcryptPinHasher(bcrypt.MinCost)

	hash, err := h.Hash("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hash)

	assert.True(t, h.Verify(hash, "1234"))
	assert.False(t, h.Verify(hash, "4321"))
	assert.False(t, h.Verify("not-a-hash", "1234"))
}

func TestNewBcryptPinHasher_FallsBackToDefaultCost(t *testing.T) {
	h := NewBcryptPinHasher(99)
	assert.Equal(t, DefaultPinCost, h.cost)
}
