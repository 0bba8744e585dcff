// Package audit persists the portal's append-only security event log.
package audit

import (
	"context"
	"time"
)

// Entry is one audit log record. IDs are numeric and monotonically
// increasing, assigned by the store at write time.
type Entry struct {
	ID        int64
	Event     string
	Desc      string
	AccountID string
	CreatedAt time.Time
}

// Store is the append-only persistence contract.
type Store interface {
	// Append writes an entry and returns the id it was assigned.
	// An empty accountID stores NULL.
	Append(ctx context.Context, event, desc, accountID string) (int64, error)
	MaxID(ctx context.Context) (int64, error)
}

// Event names used across the auth flow.
const (
	EventLoginSuccess       = "Login Success"
	EventLoginFailure       = "Login Failure"
	EventMaxLoginAttempts   = "Max Login Attempts"
	EventLogout             = "Logout"
	EventRegistration       = "Registration"
	EventRegistrationFailed = "Registration Failed"
	EventPasswordChanged    = "Password Changed"
	EventSecurityVerified   = "Security Questions Verified"
	EventSecurityFailed     = "Security Questions Failed"
	EventAccessDenied       = "Access Denied"
)
