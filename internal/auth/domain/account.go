package domain

import (
	"time"
)

// Role is the ordered authorization level attached to an account.
// Higher values grant access to everything a lower value can see.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// AtLeast reports whether r satisfies the given minimum role.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r >= RoleUser && r <= RoleAdmin
}

// The portal offers a fixed set of security questions; accounts store the
// chosen question text alongside the hashed answer.
const (
	QuestionFavoriteGame  = "What is your favorite game?"
	QuestionFavoriteColor = "What is your favorite color?"
)

// SecurityQuestions lists every question an account may choose from.
var SecurityQuestions = []string{
	QuestionFavoriteGame,
	QuestionFavoriteColor,
}

// ValidSecurityQuestion reports whether q is one of the offered questions.
func ValidSecurityQuestion(q string) bool {
	for _, known := range SecurityQuestions {
		if q == known {
			return true
		}
	}
	return false
}

type Account struct {
	ID       string
	Username string
	Email    string

	PasswordHash         string
	PasswordSalt         string
	PreviousPasswordHash string
	PreviousPasswordSalt string
	PasswordChangedAt    time.Time

	Role Role

	Locked              bool
	LockedUntil         *time.Time
	FailedLoginAttempts int

	SecurityQuestion1   string
	SecurityAnswerHash1 string
	SecurityAnswerSalt1 string
	SecurityQuestion2   string
	SecurityAnswerHash2 string
	SecurityAnswerSalt2 string

	Attempts AttemptRing

	CreatedAt time.Time
}

// LockedAt reports whether the account is locked as of now. A stale lock
// whose expiry has passed no longer counts; the flag itself is only rewritten
// by the next completed credential check.
func (a *Account) LockedAt(now time.Time) bool {
	return a.Locked && a.LockedUntil != nil && a.LockedUntil.After(now)
}

// LockRemaining returns how long the lock has left at the given instant,
// or zero when the account is not locked.
func (a *Account) LockRemaining(now time.Time) time.Duration {
	if !a.LockedAt(now) {
		return 0
	}
	return a.LockedUntil.Sub(now)
}

// ClientInfo carries the request-scoped client metadata every authentication
// operation needs. Handlers build it once per request; nothing below the
// handler layer reads it from ambient state.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}
