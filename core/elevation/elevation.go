package elevation

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nexnum/sentinel/core/kv"
)

const (
	// defaultTTL is how long an elevation stays valid. Short by design: the
	// user just proved their password, and the window only needs to cover
	// the immediately following sensitive action.
	defaultTTL = 5 * time.Minute

	keyPrefix = "elevation:"
	tokenLen  = 32
)

// Session is a short-lived, action-scoped proof of re-authentication. One
// token maps to exactly one (UserID, Action) pair.
type Session struct {
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	ElevatedAt time.Time `json:"elevated_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CredentialVerifier re-checks a user's password against the credential
// store. Implementations are expected to be constant-time with respect to
// the password comparison.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, userID, password string) (bool, error)
}

// Elevator issues and verifies elevation tokens for sensitive actions.
type Elevator struct {
	creds  CredentialVerifier
	store  kv.Store
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures an Elevator.
type Option func(*Elevator)

// WithTTL overrides the elevation lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(e *Elevator) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithLogger sets the logger for security events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Elevator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Elevator backed by the given credential verifier and TTL
// store.
func New(creds CredentialVerifier, store kv.Store, opts ...Option) *Elevator {
	e := &Elevator{
		creds:  creds,
		store:  store,
		ttl:    defaultTTL,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Require re-authenticates the user and, on success, mints an opaque token
// bound to (userID, action). Expiry is enforced by the store's TTL, not by
// manual cleanup.
func (e *Elevator) Require(ctx context.Context, userID, password, action string) (string, error) {
	ok, err := e.creds.VerifyPassword(ctx, userID, password)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		e.logger.WarnContext(ctx, "elevation denied: password re-check failed",
			slog.String("user_id", userID),
			slog.String("action", action))
		return "", ErrReauthFailed
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := Session{
		UserID:     userID,
		Action:     action,
		ElevatedAt: now,
		ExpiresAt:  now.Add(e.ttl),
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("marshal elevation session: %w", err)
	}

	if err := e.store.Set(ctx, keyPrefix+token, payload, e.ttl); err != nil {
		return "", fmt.Errorf("store elevation session: %w", err)
	}

	e.logger.DebugContext(ctx, "elevation granted",
		slog.String("user_id", userID),
		slog.String("action", action),
		slog.Time("expires_at", session.ExpiresAt))

	return token, nil
}

// Verify checks that the token exists and is bound to exactly this user and
// action. Cross-user or cross-action reuse is rejected even before expiry.
//
// Verify does NOT consume the token: callers must call Consume after the
// protected action completes, otherwise the token remains reusable within
// its TTL. That trade-off keeps verification side-effect free (e.g. for
// pre-flight checks) and is a documented caller responsibility.
func (e *Elevator) Verify(ctx context.Context, token, userID, action string) error {
	if token == "" {
		return ErrNotElevated
	}

	payload, err := e.store.Get(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return ErrNotElevated
		}
		return fmt.Errorf("load elevation session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return fmt.Errorf("decode elevation session: %w", err)
	}

	if session.UserID != userID || session.Action != action {
		e.logger.WarnContext(ctx, "elevation scope mismatch",
			slog.String("user_id", userID),
			slog.String("action", action),
			slog.String("granted_action", session.Action))
		return ErrScopeMismatch
	}

	return nil
}

// Consume invalidates the token. Call after the protected action completes
// to make the elevation single-use.
func (e *Elevator) Consume(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return e.store.Delete(ctx, keyPrefix+token)
}

// generateToken returns an opaque 32-byte base64url token.
func generateToken() (string, error) {
	b := make([]byte, tokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate elevation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
