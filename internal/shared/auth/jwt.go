package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by a backend access token.
type Claims struct {
	Typ      string `json:"typ,omitempty"`
	Role     string `json:"role,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for tokens that cannot be decoded at all.
var ErrInvalidToken = errors.New("invalid token")

// DecodeClaims reads the claims of token without verifying its signature.
// The client cannot verify backend tokens; the server remains the authority and
// every decoded value is advisory.
func DecodeClaims(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

// Expired reports whether the token carries an exp claim in the past.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
