package audit_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/audit"
)

func TestAppend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := audit.NewPostgresStore(mock)
	ctx := context.Background()

	t.Run("assigns next id", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO audit_logs").
			WithArgs(audit.EventLoginSuccess, "Login attempt from 203.0.113.7", "acc-1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		id, err := store.Append(ctx, audit.EventLoginSuccess, "Login attempt from 203.0.113.7", "acc-1")
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("empty account id stored as null", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO audit_logs").
			WithArgs(audit.EventRegistrationFailed, "Missing required registration fields", nil).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

		id, err := store.Append(ctx, audit.EventRegistrationFailed, "Missing required registration fields", "")
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO audit_logs").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(fmt.Errorf("db error"))

		_, err := store.Append(ctx, audit.EventLogout, "Session terminated", "acc-1")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaxID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := audit.NewPostgresStore(mock)

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(7)))

	id, err := store.MaxID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	// An empty table reports zero rather than an error.
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))

	id, err = store.MaxID(context.Background())
	require.NoError(t, err)
	assert.Zero(t, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}
