package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB mirrors the pool methods the store needs, so pgxmock can stand in.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append assigns the next id inside the insert statement itself, so two
// concurrent writers cannot both read the same max and collide.
func (s *PostgresStore) Append(ctx context.Context, event, desc, accountID string) (int64, error) {
	var account any
	if accountID != "" {
		account = accountID
	}

	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO audit_logs (id, event, description, account_id, created_at)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, now() FROM audit_logs
		RETURNING id
	`, event, desc, account).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to append audit entry: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) MaxID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM audit_logs`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to query max audit id: %w", err)
	}
	return id, nil
}
