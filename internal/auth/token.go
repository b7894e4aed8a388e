package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/config"
)

// TokenManager issues and validates signed bearer tokens. Tokens are bound to
// the account's username via the subject claim, so a later lookup always
// resolves the live account record.
type TokenManager struct {
	signingKey []byte
	lifetime   time.Duration
	timeFunc   func() time.Time
}

func NewTokenManager(cfg config.Auth) (*TokenManager, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &TokenManager{
		signingKey: []byte(cfg.JWTSecret),
		lifetime:   cfg.TokenLifetime,
		timeFunc:   time.Now,
	}, nil
}

// Issue creates a signed token with the given subject.
func (m *TokenManager) Issue(subject string) (string, error) {
	now := m.timeFunc()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token, returning its subject. Any failure
// (malformed, expired, bad signature) surfaces as apperr.InvalidTokenErr.
func (m *TokenManager) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(func() time.Time { return m.timeFunc() }),
	)
	if err != nil {
		return "", apperr.InvalidTokenErr.WrapParent(err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", apperr.InvalidTokenErr
	}

	return claims.Subject, nil
}
