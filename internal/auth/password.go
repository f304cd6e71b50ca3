package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptCost is the default cost for bcrypt hashing.
	bcryptCost = 12
)

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	return hashWithCost(password, bcryptCost)
}

func hashWithCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword compares a bcrypt hashed password with its plaintext version.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// BcryptVerifier checks channel passwords against bcrypt hashes.
type BcryptVerifier struct{}

// NewBcryptVerifier returns a verifier backed by bcrypt.
func NewBcryptVerifier() BcryptVerifier {
	return BcryptVerifier{}
}

// Verify reports whether password matches hash. A mismatch is not an error.
func (BcryptVerifier) Verify(ctx context.Context, hash, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := ComparePassword(hash, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}
