package auth

import (
	"errors"

	"github.com/platinummonkey/teamboard/pkg/validation"
)

var (
	// ErrThrottled is returned while an identifier has too many recent failures
	ErrThrottled = errors.New("too many failed login attempts, try again later")

	// ErrInvalidCredentials covers both an unknown email and a wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordMismatch is returned when password and repassword differ
	ErrPasswordMismatch = errors.New("password and repassword do not match")

	// ErrIncorrectPassword is returned when the current password given for a change is wrong
	ErrIncorrectPassword = errors.New("current password is incorrect")

	// ErrPasswordTooLong is returned for passwords over bcrypt's 72-byte input limit.
	// max=72 counts characters, so multi-byte passwords can still reach the hasher.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

	// ErrInvalidToken is returned for any token that fails verification
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ValidationErrors maps a payload field to the reason it was rejected
type ValidationErrors = validation.Errors

// IsValidationError reports whether err is a client-side input problem
func IsValidationError(err error) bool {
	var verrs ValidationErrors
	return errors.As(err, &verrs) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrIncorrectPassword) ||
		errors.Is(err, ErrPasswordTooLong)
}
