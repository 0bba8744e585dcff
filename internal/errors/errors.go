package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrAccountExists      = errors.New("username or email already in use")
	ErrPasswordReused     = errors.New("new password must differ from your current and previous passwords")
	ErrSecurityAnswers    = errors.New("security answers do not match")
	ErrAccountNotFound    = errors.New("account not found")
	ErrRecoveryGrant      = errors.New("invalid or expired recovery grant")
)

// LockedError rejects a login while the account lock is still active.
type LockedError struct {
	MinutesLeft int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, try again in %d minute(s)", e.MinutesLeft)
}

// PasswordAgeError rejects a password change attempted before the minimum
// password age has elapsed.
type PasswordAgeError struct {
	HoursLeft int
}

func (e *PasswordAgeError) Error() string {
	return fmt.Sprintf("password was changed recently, try again in %d hour(s)", e.HoursLeft)
}

// PolicyError carries every password policy violation found in a candidate
// password, joined into a single message for form feedback.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return strings.Join(e.Violations, " ")
}
