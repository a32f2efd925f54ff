package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexnum/sentinel/core/guard"
	"github.com/nexnum/sentinel/middleware"
	"github.com/nexnum/sentinel/pkg/origin"
)

const appURL = "https://app.nexnum.example"

func browserRequest(method, path string) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	r.Header.Set("Accept", "text/html,application/xhtml+xml")
	r.Header.Set("Accept-Language", "en-US,en;q=0.9")
	r.Header.Set("Accept-Encoding", "gzip, deflate, br")
	r.Header.Set("Origin", appURL)
	r.Header.Set("Sec-Fetch-Site", "same-origin")
	r.Header.Set("Sec-Fetch-Mode", "cors")
	r.Header.Set("Sec-Fetch-Dest", "empty")
	return r
}

func newGuard(t *testing.T) *guard.Guard {
	t.Helper()

	og, err := origin.New([]string{appURL})
	require.NoError(t, err)
	return guard.New(guard.WithOrigin(og))
}

func TestSecure(t *testing.T) {
	t.Parallel()

	t.Run("allowed request reaches the handler with context", func(t *testing.T) {
		t.Parallel()

		var handlerRan bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerRan = true

			info, ok := middleware.ClientInfoFromContext(r.Context())
			assert.True(t, ok)
			assert.NotEmpty(t, info.IP)
			assert.Equal(t, appURL, info.Origin)

			fp, ok := middleware.FingerprintFromContext(r.Context())
			assert.True(t, ok)
			assert.Len(t, fp.Hash, 32)

			w.WriteHeader(http.StatusOK)
		})

		h := middleware.Secure(newGuard(t), guard.Options{SkipCSRF: true})(next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, browserRequest(http.MethodGet, "/api/data"))

		assert.True(t, handlerRan)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("denial writes json and stops the chain", func(t *testing.T) {
		t.Parallel()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run on denial")
		})
		h := middleware.Secure(newGuard(t), guard.Options{SkipCSRF: true})(next)

		r := browserRequest(http.MethodGet, "/api/data")
		r.Header.Set("Origin", "https://evil.example")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
			Code    string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, guard.CodeOriginForbidden, body.Code)
		assert.NotEmpty(t, body.Error)
	})

	t.Run("security headers on every response", func(t *testing.T) {
		t.Parallel()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		h := middleware.Secure(newGuard(t), guard.Options{SkipCSRF: true})(next)

		for name, r := range map[string]*http.Request{
			"allowed": browserRequest(http.MethodGet, "/"),
			"denied": func() *http.Request {
				r := browserRequest(http.MethodGet, "/")
				r.Header.Set("Origin", "https://evil.example")
				return r
			}(),
		} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"), name)
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), name)
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"), name)
		}
	})

	t.Run("misconfigured stage maps to 500", func(t *testing.T) {
		t.Parallel()

		// Signature required but no signer attached.
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		h := middleware.Secure(guard.New(), guard.Options{
			SkipOriginCheck:  true,
			SkipCSRF:         true,
			RequireSignature: true,
		})(next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, browserRequest(http.MethodPost, "/api/transfer"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
