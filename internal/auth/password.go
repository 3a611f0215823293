package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"clierp.org/internal/erperr"
)

// HashPassword hashes a plaintext password using bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is empty", erperr.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", erperr.ErrCrypto, err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored hash. A mismatch
// returns (false, nil); only a malformed hash yields an error.
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", erperr.ErrCrypto, err)
}
