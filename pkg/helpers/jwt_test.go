package helpers_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/pkg/helpers"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestJWTManagerIssueAndVerify(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := helpers.NewJWTManager("secret", 0).WithClock(fixedClock(issued))

	tok, exp, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(helpers.DefaultTokenTTL), exp)

	sub, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestJWTManagerAcceptsTokenWithinSevenDays(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := helpers.NewJWTManager("secret", helpers.DefaultTokenTTL)
	tok, _, err := m.WithClock(fixedClock(issued)).Issue("user-1")
	require.NoError(t, err)

	sub, err := m.WithClock(fixedClock(issued.Add(6 * 24 * time.Hour))).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestJWTManagerRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := helpers.NewJWTManager("secret", helpers.DefaultTokenTTL)
	tok, _, err := m.WithClock(fixedClock(issued)).Issue("user-1")
	require.NoError(t, err)

	_, err = m.WithClock(fixedClock(issued.Add(8 * 24 * time.Hour))).Verify(tok)
	assert.ErrorIs(t, err, helpers.ErrTokenExpired)
}

func TestJWTManagerRejectsForeignSignature(t *testing.T) {
	tok, _, err := helpers.NewJWTManager("other", time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = helpers.NewJWTManager("secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, helpers.ErrTokenInvalid)
}

func TestJWTManagerRejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = helpers.NewJWTManager("secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, helpers.ErrTokenInvalid)
}

func TestJWTManagerRejectsMissingSubjectAndGarbage(t *testing.T) {
	m := helpers.NewJWTManager("secret", time.Hour)
	tok, _, err := m.Issue("")
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, helpers.ErrTokenInvalid)

	_, err = m.Verify("not-a-token")
	assert.ErrorIs(t, err, helpers.ErrTokenInvalid)
}
