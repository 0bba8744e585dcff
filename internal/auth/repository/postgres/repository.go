package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the slice of pgxpool.Pool the repository uses; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, email,
	password_hash, password_salt, previous_password_hash, previous_password_salt, password_changed_at,
	role, locked, locked_until, failed_login_attempts,
	security_question_1, security_answer_hash_1, security_answer_salt_1,
	security_question_2, security_answer_hash_2, security_answer_salt_2,
	last_login_attempt, previous_login_attempt, created_at`

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 LIMIT 1`
	return r.findOne(ctx, query, username)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 LIMIT 1`
	return r.findOne(ctx, query, id)
}

// FindByUsernameOrEmail backs the single existence query registration runs
// across both unique columns.
func (r *AccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 OR email = $2 LIMIT 1`
	return r.findOne(ctx, query, username, email)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, query, args...)

	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return acc, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	last, err := marshalAttempt(a.Attempts.Last)
	if err != nil {
		return err
	}
	previous, err := marshalAttempt(a.Attempts.Previous)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`,
		a.ID, a.Username, a.Email,
		a.PasswordHash, a.PasswordSalt, a.PreviousPasswordHash, a.PreviousPasswordSalt, a.PasswordChangedAt,
		int(a.Role), a.Locked, a.LockedUntil, a.FailedLoginAttempts,
		a.SecurityQuestion1, a.SecurityAnswerHash1, a.SecurityAnswerSalt1,
		a.SecurityQuestion2, a.SecurityAnswerHash2, a.SecurityAnswerSalt2,
		last, previous, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Save writes back every field a login attempt or password change can touch.
// Identity, security questions and created_at are immutable after Create.
// There is no version check: two racing attempts may both observe the same
// counter, which at worst sets the same lock twice.
func (r *AccountRepository) Save(ctx context.Context, a *domain.Account) error {
	last, err := marshalAttempt(a.Attempts.Last)
	if err != nil {
		return err
	}
	previous, err := marshalAttempt(a.Attempts.Previous)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		UPDATE accounts SET
			password_hash = $2,
			password_salt = $3,
			previous_password_hash = $4,
			previous_password_salt = $5,
			password_changed_at = $6,
			role = $7,
			locked = $8,
			locked_until = $9,
			failed_login_attempts = $10,
			last_login_attempt = $11,
			previous_login_attempt = $12
		WHERE id = $1
	`,
		a.ID,
		a.PasswordHash, a.PasswordSalt, a.PreviousPasswordHash, a.PreviousPasswordSalt, a.PasswordChangedAt,
		int(a.Role), a.Locked, a.LockedUntil, a.FailedLoginAttempts,
		last, previous,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a        domain.Account
		role     int
		last     []byte
		previous []byte
	)

	err := row.Scan(
		&a.ID, &a.Username, &a.Email,
		&a.PasswordHash, &a.PasswordSalt, &a.PreviousPasswordHash, &a.PreviousPasswordSalt, &a.PasswordChangedAt,
		&role, &a.Locked, &a.LockedUntil, &a.FailedLoginAttempts,
		&a.SecurityQuestion1, &a.SecurityAnswerHash1, &a.SecurityAnswerSalt1,
		&a.SecurityQuestion2, &a.SecurityAnswerHash2, &a.SecurityAnswerSalt2,
		&last, &previous, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Role = domain.Role(role)
	if a.Attempts.Last, err = unmarshalAttempt(last); err != nil {
		return nil, err
	}
	if a.Attempts.Previous, err = unmarshalAttempt(previous); err != nil {
		return nil, err
	}
	return &a, nil
}

func marshalAttempt(a *domain.LoginAttempt) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode login attempt: %w", err)
	}
	return b, nil
}

func unmarshalAttempt(b []byte) (*domain.LoginAttempt, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var a domain.LoginAttempt
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("failed to decode login attempt: %w", err)
	}
	return &a, nil
}
