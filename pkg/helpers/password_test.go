package helpers_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-storefront/pkg/helpers"
)

func TestBcryptHasher(t *testing.T) {
	h := helpers.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, h.Compare(hash, "hunter22"))
	assert.False(t, h.Compare(hash, "hunter23"))
	assert.False(t, h.Compare("not-a-hash", "hunter22"))
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, helpers.NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, helpers.NewBcryptHasher(99).Cost)
	assert.Equal(t, 12, helpers.NewBcryptHasher(12).Cost)
}

func TestBcryptHasherRejectsOverlongInput(t *testing.T) {
	h := helpers.NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", helpers.MaxPasswordBytes+1))
	assert.ErrorIs(t, err, helpers.ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", helpers.MaxPasswordBytes))
	assert.NoError(t, err)
}
