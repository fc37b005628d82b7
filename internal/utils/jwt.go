package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/verdantlabs/verdant-backend/internal/model"
)

// BearerToken represents a signed JWT bearer credential along with its
// expiry.  The Token field contains the serialized JWT string.  Bearer
// tokens are long-lived (days) and sent in the Authorization header on every
// authenticated call; there is no refresh flow in this service.
type BearerToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is returned by ParseBearerToken for any token that is
// malformed, wrongly signed, expired, or missing the expected claims.
// Callers should not distinguish further; a 401 is the only outcome.
var ErrInvalidToken = errors.New("invalid token")

// NewBearerToken builds and signs an HS256 JWT for a principal.  The claims
// carry the subject (user id), email and role, plus exp and iat.  ttlDays
// controls how long the credential remains valid.
func NewBearerToken(secret string, userID uint64, email, role string, ttlDays int) (BearerToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return BearerToken{}, err
	}
	return BearerToken{Token: signed, Exp: exp}, nil
}

// ParseBearerToken verifies the signature and expiry of a serialized token
// and extracts the embedded principal.  The signing method must be HMAC;
// tokens signed with any other algorithm are rejected.  Claims are validated
// at this boundary so downstream code can trust the typed Principal.
func ParseBearerToken(secret, raw string) (model.Principal, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return model.Principal{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.Principal{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(float64) // JSON numbers decode as float64
	if !ok || sub <= 0 {
		return model.Principal{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, ok := claims["role"].(string)
	if !ok || !model.ValidRole(role) {
		return model.Principal{}, ErrInvalidToken
	}

	return model.Principal{ID: uint64(sub), Email: email, Role: role}, nil
}
