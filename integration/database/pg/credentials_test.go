package pg_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexnum/sentinel/integration/database/pg"
)

type fakeRow struct {
	hash string
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.hash
	return nil
}

type fakeQuerier struct {
	rows map[string]fakeRow
}

func (q fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	userID, _ := args[0].(string)
	if row, ok := q.rows[userID]; ok {
		return row
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func TestCredentialStore_VerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	store := pg.NewCredentialStoreWithQuerier(fakeQuerier{rows: map[string]fakeRow{
		"user-1": {hash: string(hash)},
		"broken": {hash: "not-a-bcrypt-hash"},
	}})
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		t.Parallel()
		ok, err := store.VerifyPassword(ctx, "user-1", "correct horse")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		ok, err := store.VerifyPassword(ctx, "user-1", "battery staple")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown user is indistinguishable from wrong password", func(t *testing.T) {
		t.Parallel()
		ok, err := store.VerifyPassword(ctx, "no-such-user", "anything")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt stored hash surfaces an error", func(t *testing.T) {
		t.Parallel()
		ok, err := store.VerifyPassword(ctx, "broken", "anything")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}
