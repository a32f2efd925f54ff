package signature

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nexnum/sentinel/core/kv"
)

// Wire headers carrying the signature triple.
const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
)

const (
	// defaultMaxDrift bounds the replay window while tolerating client clock
	// skew symmetrically: timestamps too far in the past AND in the future
	// are both rejected.
	defaultMaxDrift = 5 * time.Minute

	// defaultNonceTTL is how long a consumed nonce stays in the store. Must
	// exceed 2*maxDrift so a replayed request cannot outlive its nonce record.
	defaultNonceTTL = 10 * time.Minute

	noncePrefix = "nonce:"
	nonceLen    = 16
)

// Headers is a signed request's header triple, ready to attach to an
// outgoing request.
type Headers struct {
	Signature string
	Timestamp string
	Nonce     string
}

// Apply sets the triple on the given header map.
func (h Headers) Apply(header http.Header) {
	header.Set(HeaderSignature, h.Signature)
	header.Set(HeaderTimestamp, h.Timestamp)
	header.Set(HeaderNonce, h.Nonce)
}

// Signer validates and produces HMAC request signatures with timestamp and
// one-time-nonce replay protection. Safe for concurrent use.
type Signer struct {
	secret     []byte
	store      kv.Store
	maxDrift   time.Duration
	nonceTTL   time.Duration
	failClosed bool
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithMaxDrift sets the allowed clock drift between client and server.
func WithMaxDrift(d time.Duration) Option {
	return func(s *Signer) {
		if d > 0 {
			s.maxDrift = d
		}
	}
}

// WithNonceTTL sets how long consumed nonces are retained.
func WithNonceTTL(d time.Duration) Option {
	return func(s *Signer) {
		if d > 0 {
			s.nonceTTL = d
		}
	}
}

// WithFailClosed controls the policy when the nonce store is unreachable:
// fail closed (deny) for production, fail open with a warning for local
// development where the store may not be running.
func WithFailClosed(failClosed bool) Option {
	return func(s *Signer) {
		s.failClosed = failClosed
	}
}

// WithLogger sets the logger for security events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Signer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Signer. An empty secret is a configuration error.
func New(secret string, store kv.Store, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	s := &Signer{
		secret:   []byte(secret),
		store:    store,
		maxDrift: defaultMaxDrift,
		nonceTTL: defaultNonceTTL,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Validate checks the signature triple on the request headers against the
// canonical payload `timestamp.nonce.METHOD.path.bodyHash`.
//
// Ordering is security-relevant: the nonce is written to the store only
// AFTER the signature matched, so an attacker cannot burn a victim's nonce
// by presenting it with a bad signature. The SetNX write is the atomic
// replay guard; the earlier Exists check is just a fast path.
func (s *Signer) Validate(ctx context.Context, h http.Header, method, path string, body []byte) error {
	sig := h.Get(HeaderSignature)
	ts := h.Get(HeaderTimestamp)
	nonce := h.Get(HeaderNonce)
	if sig == "" || ts == "" || nonce == "" {
		return ErrMissingHeaders
	}

	tsMillis, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrTimestampOutOfRange
	}
	drift := s.now().Sub(time.UnixMilli(tsMillis))
	if drift < 0 {
		drift = -drift
	}
	if drift > s.maxDrift {
		return ErrTimestampOutOfRange
	}

	used, err := s.store.Exists(ctx, noncePrefix+nonce)
	if err != nil {
		if err := s.storeFailure(ctx, "nonce existence check failed", err); err != nil {
			return err
		}
	} else if used {
		s.logger.WarnContext(ctx, "replay detected: nonce reuse",
			slog.String("method", method),
			slog.String("path", path))
		return ErrNonceReused
	}

	expected := s.compute(ts, nonce, method, path, body)

	provided, err := hex.DecodeString(sig)
	if err != nil || len(provided) != len(expected) {
		// Length is not secret; rejecting early here leaks nothing useful.
		return ErrInvalidSignature
	}
	if !hmac.Equal(provided, expected) {
		s.logger.WarnContext(ctx, "invalid request signature",
			slog.String("method", method),
			slog.String("path", path))
		return ErrInvalidSignature
	}

	// Consume the nonce only after successful validation. A false SetNX means
	// a concurrent request won the race with the same nonce: a replay.
	ok, err := s.store.SetNX(ctx, noncePrefix+nonce, []byte("1"), s.nonceTTL)
	if err != nil {
		return s.storeFailure(ctx, "nonce consume failed", err)
	}
	if !ok {
		return ErrNonceReused
	}

	return nil
}

// Sign produces a fresh signature triple for an outgoing request. Used by
// internal clients and tests.
func (s *Signer) Sign(method, path string, body []byte) (Headers, error) {
	nonceBytes := make([]byte, nonceLen)
	if _, err := rand.Read(nonceBytes); err != nil {
		return Headers{}, fmt.Errorf("generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)

	return Headers{
		Signature: hex.EncodeToString(s.compute(ts, nonce, method, path, body)),
		Timestamp: ts,
		Nonce:     nonce,
	}, nil
}

// compute returns the HMAC-SHA256 over the canonical payload.
func (s *Signer) compute(ts, nonce, method, path string, body []byte) []byte {
	payload := strings.Join([]string{
		ts,
		nonce,
		strings.ToUpper(method),
		path,
		BodyHash(body),
	}, ".")

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

// storeFailure applies the configured fail-open/fail-closed policy to a
// store error. Fail open returns nil after logging a warning.
func (s *Signer) storeFailure(ctx context.Context, msg string, err error) error {
	if s.failClosed {
		s.logger.ErrorContext(ctx, msg, slog.Any("error", err))
		return errors.Join(ErrStoreUnavailable, err)
	}
	s.logger.WarnContext(ctx, msg+", failing open", slog.Any("error", err))
	return nil
}

// BodyHash returns the hex SHA-256 of the request body used in the canonical
// payload. Empty bodies hash to the empty string. JSON object bodies are
// re-marshaled with sorted top-level keys so clients serializing the same
// object in different key orders still produce the same hash.
func BodyHash(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	canonical := body
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		// encoding/json sorts map keys deterministically.
		if normalized, err := json.Marshal(obj); err == nil {
			canonical = normalized
		}
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
