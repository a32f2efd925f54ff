package csrf_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexnum/sentinel/core/csrf"
)

const testSecret = "csrf-test-secret"

func newRequest(t *testing.T, token, session string) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/update", nil)
	if token != "" {
		r.Header.Set(csrf.HeaderToken, token)
	}
	if session != "" {
		r.AddCookie(&http.Cookie{Name: "session_id", Value: session})
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty secret", func(t *testing.T) {
		t.Parallel()
		_, err := csrf.New("")
		assert.ErrorIs(t, err, csrf.ErrMissingSecret)
	})
}

func TestProtector_Required(t *testing.T) {
	t.Parallel()

	p, err := csrf.New(testSecret)
	require.NoError(t, err)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.True(t, p.Required(method), method)
	}
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.False(t, p.Required(method), method)
	}

	// Method matching is case-insensitive.
	assert.True(t, p.Required("post"))
}

func TestProtector_Validate(t *testing.T) {
	t.Parallel()

	p, err := csrf.New(testSecret)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		token := p.Issue("sess-123")
		assert.NoError(t, p.Validate(newRequest(t, token, "sess-123")))
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		err := p.Validate(newRequest(t, "", "sess-123"))
		assert.ErrorIs(t, err, csrf.ErrMissingToken)
	})

	t.Run("missing session cookie", func(t *testing.T) {
		t.Parallel()
		token := p.Issue("sess-123")
		err := p.Validate(newRequest(t, token, ""))
		assert.ErrorIs(t, err, csrf.ErrMissingSession)
	})

	t.Run("token bound to a different session", func(t *testing.T) {
		t.Parallel()
		token := p.Issue("sess-123")
		err := p.Validate(newRequest(t, token, "sess-456"))
		assert.ErrorIs(t, err, csrf.ErrInvalidToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		for _, token := range []string{"garbage", "a.b", "!!!.###"} {
			err := p.Validate(newRequest(t, token, "sess-123"))
			assert.ErrorIs(t, err, csrf.ErrInvalidToken, token)
		}
	})

	t.Run("forged signature", func(t *testing.T) {
		t.Parallel()
		other, err := csrf.New("attacker-secret")
		require.NoError(t, err)

		token := other.Issue("sess-123")
		assert.ErrorIs(t, p.Validate(newRequest(t, token, "sess-123")), csrf.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		short, err := csrf.New(testSecret, csrf.WithTTL(time.Nanosecond))
		require.NoError(t, err)

		token := short.Issue("sess-123")
		time.Sleep(time.Second + 10*time.Millisecond)
		assert.ErrorIs(t, short.Validate(newRequest(t, token, "sess-123")), csrf.ErrTokenExpired)
	})

	t.Run("custom cookie name", func(t *testing.T) {
		t.Parallel()
		custom, err := csrf.New(testSecret, csrf.WithCookieName("sid"))
		require.NoError(t, err)

		token := custom.Issue("sess-123")
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set(csrf.HeaderToken, token)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "sess-123"})
		assert.NoError(t, custom.Validate(r))
	})
}
