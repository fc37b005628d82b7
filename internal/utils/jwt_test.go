package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/verdant-backend/internal/model"
)

func TestBearerTokenRoundTrip(t *testing.T) {
	tok, err := NewBearerToken("secret", 42, "ngo@x.com", model.RoleNGO, 7)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), tok.Exp, time.Minute)

	p, err := ParseBearerToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), p.ID)
	assert.Equal(t, "ngo@x.com", p.Email)
	assert.Equal(t, model.RoleNGO, p.Role)
}

func TestParseBearerTokenWrongSecret(t *testing.T) {
	tok, err := NewBearerToken("secret", 1, "a@b.c", model.RoleAdmin, 7)
	require.NoError(t, err)

	_, err = ParseBearerToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseBearerTokenExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":   float64(1),
		"email": "a@b.c",
		"role":  model.RoleNGO,
		"exp":   time.Now().UTC().Add(-time.Hour).Unix(),
		"iat":   time.Now().UTC().Add(-2 * time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseBearerToken("secret", signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseBearerTokenUnknownRole(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  float64(1),
		"role": "SUPERUSER",
		"exp":  time.Now().UTC().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseBearerToken("secret", signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseBearerTokenGarbage(t *testing.T) {
	_, err := ParseBearerToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
