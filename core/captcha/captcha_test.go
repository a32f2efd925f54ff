package captcha_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexnum/sentinel/core/captcha"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty verify url", func(t *testing.T) {
		t.Parallel()
		_, err := captcha.New("", "secret")
		assert.ErrorIs(t, err, captcha.ErrMissingVerifyURL)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		t.Parallel()
		_, err := captcha.New("https://example.com/siteverify", "")
		assert.ErrorIs(t, err, captcha.ErrMissingSecret)
	})
}

func TestClient_Verify(t *testing.T) {
	t.Parallel()

	t.Run("accepts a valid token", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "provider-secret", r.PostForm.Get("secret"))
			assert.Equal(t, "solved-token", r.PostForm.Get("response"))
			assert.Equal(t, "203.0.113.7", r.PostForm.Get("remoteip"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		client, err := captcha.New(srv.URL, "provider-secret")
		require.NoError(t, err)

		assert.NoError(t, client.Verify(context.Background(), "solved-token", "203.0.113.7"))
	})

	t.Run("rejects empty token without calling the provider", func(t *testing.T) {
		t.Parallel()
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		client, err := captcha.New(srv.URL, "provider-secret")
		require.NoError(t, err)

		assert.ErrorIs(t, client.Verify(context.Background(), "", ""), captcha.ErrMissingToken)
		assert.False(t, called)
	})

	t.Run("surfaces provider error codes", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response","timeout-or-duplicate"]}`))
		}))
		defer srv.Close()

		client, err := captcha.New(srv.URL, "provider-secret")
		require.NoError(t, err)

		err = client.Verify(context.Background(), "stale-token", "")
		assert.ErrorIs(t, err, captcha.ErrVerificationFailed)
		assert.Contains(t, err.Error(), "timeout-or-duplicate")
	})

	t.Run("rejection without error codes", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false}`))
		}))
		defer srv.Close()

		client, err := captcha.New(srv.URL, "provider-secret")
		require.NoError(t, err)

		assert.ErrorIs(t, client.Verify(context.Background(), "bad", ""), captcha.ErrVerificationFailed)
	})

	t.Run("non-200 status is unavailability, not rejection", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client, err := captcha.New(srv.URL, "provider-secret")
		require.NoError(t, err)

		err = client.Verify(context.Background(), "token", "")
		assert.ErrorIs(t, err, captcha.ErrVerifyUnavailable)
		assert.NotErrorIs(t, err, captcha.ErrVerificationFailed)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		t.Parallel()
		client, err := captcha.New("http://127.0.0.1:1/siteverify", "provider-secret")
		require.NoError(t, err)

		assert.ErrorIs(t, client.Verify(context.Background(), "token", ""), captcha.ErrVerifyUnavailable)
	})

	t.Run("malformed provider response", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client, err := captcha.New(srv.URL, "provider-secret")
		require.NoError(t, err)

		assert.ErrorIs(t, client.Verify(context.Background(), "token", ""), captcha.ErrVerifyUnavailable)
	})
}

func TestVerifierFunc(t *testing.T) {
	t.Parallel()

	var gotToken string
	v := captcha.VerifierFunc(func(ctx context.Context, token, remoteIP string) error {
		gotToken = token
		return nil
	})

	require.NoError(t, v.Verify(context.Background(), "abc", ""))
	assert.Equal(t, "abc", gotToken)
}
