package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Querier is the minimal query surface shared by pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CredentialStore verifies user passwords against bcrypt hashes stored in
// Postgres. It satisfies the elevation.CredentialVerifier contract.
type CredentialStore struct {
	db Querier
}

// NewCredentialStore wraps an already-connected pool.
func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{db: pool}
}

// NewCredentialStoreWithQuerier wraps any Querier, e.g. a transaction or a
// test double.
func NewCredentialStoreWithQuerier(q Querier) *CredentialStore {
	return &CredentialStore{db: q}
}

// VerifyPassword compares the password against the stored hash. An unknown
// user and a wrong password both return (false, nil): callers must not be
// able to distinguish them.
func (s *CredentialStore) VerifyPassword(ctx context.Context, userID, password string) (bool, error) {
	q := s.db
	if tx, ok := TxFromContext(ctx); ok {
		q = tx
	}

	var hash string
	err := q.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}

	switch err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
