package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the one-way, salted password transform. The raw password
// is never stored or logged anywhere above this boundary.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns true when password matches the stored hash.
	Verify(password, hashedPassword string) bool
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost.
// A cost of 0 uses the bcrypt default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt generate: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
