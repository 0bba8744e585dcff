package domain

import "context"

// AccountRepository is the persistence contract for accounts. Lookups return
// (nil, nil) when no account matches.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Save(ctx context.Context, account *Account) error
}

// AuditRecorder appends a named event to the audit log. Recording is
// best-effort: implementations must not fail the operation being recorded.
// An empty accountID means the event is not tied to an account.
type AuditRecorder interface {
	Record(ctx context.Context, event, desc, accountID string)
}
