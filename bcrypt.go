package admins

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatchedHashAndPassword is returned when the password does not match
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// PasswordHashCost is the bcrypt cost used by HashPassword
var PasswordHashCost = 12

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password. A record waiting on a
// password reset never matches.
func ComparePasswordAndHash(password, hash string) error {
	if hash == ResetPasswordSentinel {
		return ErrMismatchedHashAndPassword
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
