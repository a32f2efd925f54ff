package csrf

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HeaderToken is the request header carrying the CSRF token.
const HeaderToken = "X-CSRF-Token"

const (
	// defaultCookieName is the session cookie the token is bound to.
	defaultCookieName = "session_id"

	// defaultTTL bounds how long an issued token stays valid.
	defaultTTL = 2 * time.Hour

	// sigLen truncates the HMAC to 8 bytes. Enough against forgery for
	// short-lived tokens while keeping them compact.
	sigLen = 8
)

// Protector issues and validates double-submit CSRF tokens. A token is the
// HMAC-bound pair of the caller's session cookie value and an expiry, so it
// can be verified statelessly: no server-side token table.
type Protector struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
}

// Option configures a Protector.
type Option func(*Protector)

// WithCookieName overrides the session cookie the token is bound to.
func WithCookieName(name string) Option {
	return func(p *Protector) {
		if name != "" {
			p.cookieName = name
		}
	}
}

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(p *Protector) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// New creates a Protector. An empty secret is a configuration error.
func New(secret string, opts ...Option) (*Protector, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	p := &Protector{
		secret:     []byte(secret),
		cookieName: defaultCookieName,
		ttl:        defaultTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Required reports whether the method mutates state and therefore needs CSRF
// protection.
func (p *Protector) Required(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Issue mints a token bound to the given session identifier.
// Format: base64url(sessionID|expiresUnix).base64url(hmac).
func (p *Protector) Issue(sessionID string) string {
	expires := time.Now().Add(p.ttl).Unix()
	payload := sessionID + "|" + strconv.FormatInt(expires, 10)

	return base64.RawURLEncoding.EncodeToString([]byte(payload)) +
		"." + base64.RawURLEncoding.EncodeToString(p.sign(payload))
}

// Validate checks the X-CSRF-Token header against the session cookie. The
// token must carry a valid signature, be unexpired, and be bound to exactly
// the session cookie presented with the request.
func (p *Protector) Validate(r *http.Request) error {
	token := r.Header.Get(HeaderToken)
	if token == "" {
		return ErrMissingToken
	}

	cookie, err := r.Cookie(p.cookieName)
	if err != nil || cookie.Value == "" {
		return ErrMissingSession
	}

	encodedPayload, encodedSig, ok := strings.Cut(token, ".")
	if !ok {
		return ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return ErrInvalidToken
	}

	if !hmac.Equal(sig, p.sign(string(payload))) {
		return ErrInvalidToken
	}

	sessionID, expiresStr, ok := strings.Cut(string(payload), "|")
	if !ok {
		return ErrInvalidToken
	}
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	if time.Now().Unix() > expires {
		return ErrTokenExpired
	}

	if sessionID != cookie.Value {
		return fmt.Errorf("%w: token bound to a different session", ErrInvalidToken)
	}

	return nil
}

func (p *Protector) sign(payload string) []byte {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)[:sigLen]
}
