package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/audit"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/device"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
)

// userAgentLimit caps the raw user-agent string stored on an attempt.
const userAgentLimit = 200

// Tracker maintains an account's two-slot login history and its lock state.
// It mutates the account in memory; the caller persists it.
type Tracker struct {
	auditor     domain.AuditRecorder
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

func NewTracker(auditor domain.AuditRecorder, maxAttempts int, lockout time.Duration) *Tracker {
	return &Tracker{
		auditor:     auditor,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

// RecordAttempt pushes a new attempt snapshot onto the account's ring,
// overwriting the previous slot with the old last, and mirrors the event to
// the audit log.
func (t *Tracker) RecordAttempt(ctx context.Context, acc *domain.Account, success bool, client domain.ClientInfo) {
	ip := client.IPAddress
	if ip == "" {
		ip = "Unknown"
	}

	ua := client.UserAgent
	if len(ua) > userAgentLimit {
		ua = ua[:userAgentLimit]
	}

	attempt := &domain.LoginAttempt{
		Timestamp: t.now(),
		Success:   success,
		IPAddress: ip,
		UserAgent: ua,
		Device:    device.Parse(client.UserAgent),
	}
	acc.Attempts.Push(attempt)

	event := audit.EventLoginFailure
	if success {
		event = audit.EventLoginSuccess
	}
	desc := fmt.Sprintf("Login attempt from %s (%s on %s)", ip, attempt.Device.Browser, attempt.Device.OS)
	t.auditor.Record(ctx, event, desc, acc.ID)
}

// ApplyLockPolicy advances the lock state after a credential check. Success
// resets the counter and clears the lock unconditionally; failure increments
// the counter and engages the lock once it reaches the attempt limit.
func (t *Tracker) ApplyLockPolicy(ctx context.Context, acc *domain.Account, success bool) {
	if success {
		acc.FailedLoginAttempts = 0
		acc.Locked = false
		acc.LockedUntil = nil
		return
	}

	acc.FailedLoginAttempts++
	if acc.FailedLoginAttempts >= t.maxAttempts {
		until := t.now().Add(t.lockout)
		acc.Locked = true
		acc.LockedUntil = &until

		t.auditor.Record(ctx, audit.EventMaxLoginAttempts,
			fmt.Sprintf("Account locked until %s after %d failed attempts",
				until.Format(time.RFC3339), acc.FailedLoginAttempts),
			acc.ID)
	}
}
