package fingerprint_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexnum/sentinel/pkg/fingerprint"
)

func newRequest(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept-Encoding": "gzip, deflate, br",
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("is idempotent for fixed headers", func(t *testing.T) {
		t.Parallel()
		req := newRequest(browserHeaders)

		fp1 := fingerprint.Generate(req, nil)
		fp2 := fingerprint.Generate(req, nil)

		assert.Equal(t, fp1.Hash, fp2.Hash)
		assert.Len(t, fp1.Hash, 32)
		assert.Regexp(t, "^[a-f0-9]{32}$", fp1.Hash)
	})

	t.Run("captures components", func(t *testing.T) {
		t.Parallel()
		fp := fingerprint.Generate(newRequest(browserHeaders), &fingerprint.ClientHints{
			Timezone:   "Europe/Berlin",
			ScreenInfo: "2560x1440x24",
		})

		assert.Equal(t, browserHeaders["User-Agent"], fp.Components.UserAgent)
		assert.Equal(t, "Europe/Berlin", fp.Components.Timezone)
		assert.Equal(t, "2560x1440x24", fp.Components.ScreenInfo)
	})

	t.Run("hints change the hash", func(t *testing.T) {
		t.Parallel()
		req := newRequest(browserHeaders)

		plain := fingerprint.Generate(req, nil)
		hinted := fingerprint.Generate(req, &fingerprint.ClientHints{Timezone: "UTC"})

		assert.NotEqual(t, plain.Hash, hinted.Hash)
	})

	t.Run("different user agents produce different hashes", func(t *testing.T) {
		t.Parallel()
		other := map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			"Accept-Language": browserHeaders["Accept-Language"],
			"Accept-Encoding": browserHeaders["Accept-Encoding"],
		}

		fp1 := fingerprint.Generate(newRequest(browserHeaders), nil)
		fp2 := fingerprint.Generate(newRequest(other), nil)

		assert.NotEqual(t, fp1.Hash, fp2.Hash)
	})

	t.Run("handles empty request", func(t *testing.T) {
		t.Parallel()
		fp := fingerprint.Generate(newRequest(nil), nil)
		require.Len(t, fp.Hash, 32)
	})
}

func TestCompare(t *testing.T) {
	t.Parallel()

	base := fingerprint.FromComponents(fingerprint.Components{
		UserAgent: "Mozilla/5.0 (Macintosh)",
		Language:  "en-US",
		Encoding:  "gzip",
	})

	t.Run("identical fingerprints score 1.0", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1.0, fingerprint.Compare(base, base))
	})

	t.Run("all core components differ scores 0", func(t *testing.T) {
		t.Parallel()
		other := fingerprint.FromComponents(fingerprint.Components{
			UserAgent: "Mozilla/5.0 (Windows)",
			Language:  "fr-FR",
			Encoding:  "br",
		})

		assert.Equal(t, 0.0, fingerprint.Compare(base, other))
	})

	t.Run("language change alone keeps similarity high", func(t *testing.T) {
		t.Parallel()
		other := fingerprint.FromComponents(fingerprint.Components{
			UserAgent: base.Components.UserAgent,
			Language:  "de-DE",
			Encoding:  base.Components.Encoding,
		})

		// 4 of 6 applicable weight points match.
		assert.InDelta(t, 4.0/6.0, fingerprint.Compare(base, other), 1e-9)
	})

	t.Run("optional components only count when supplied", func(t *testing.T) {
		t.Parallel()
		withTZ := fingerprint.FromComponents(fingerprint.Components{
			UserAgent: base.Components.UserAgent,
			Language:  base.Components.Language,
			Encoding:  base.Components.Encoding,
			Timezone:  "Europe/Berlin",
		})

		// Timezone mismatch (one side empty): 6 of 8 applicable points match.
		assert.InDelta(t, 6.0/8.0, fingerprint.Compare(base, withTZ), 1e-9)
	})

	t.Run("matching optional components raise the score", func(t *testing.T) {
		t.Parallel()
		a := fingerprint.FromComponents(fingerprint.Components{
			UserAgent: "ua", Language: "en", Encoding: "gzip",
			Timezone: "UTC", ScreenInfo: "1920x1080",
		})
		b := fingerprint.FromComponents(fingerprint.Components{
			UserAgent: "other", Language: "en", Encoding: "gzip",
			Timezone: "UTC", ScreenInfo: "1920x1080",
		})

		// Everything but the UA matches: 7 of 10 points.
		assert.InDelta(t, 0.7, fingerprint.Compare(a, b), 1e-9)
	})
}

func TestIsSuspiciousChange(t *testing.T) {
	t.Parallel()

	base := fingerprint.FromComponents(fingerprint.Components{
		UserAgent: "Mozilla/5.0 (Macintosh)",
		Language:  "en-US",
		Encoding:  "gzip",
	})

	t.Run("user agent swap is suspicious", func(t *testing.T) {
		t.Parallel()
		hijacked := fingerprint.FromComponents(fingerprint.Components{
			UserAgent: "Mozilla/5.0 (Windows)",
			Language:  "ru-RU",
			Encoding:  base.Components.Encoding,
		})

		// Only encoding matches: 1/6 similarity.
		assert.True(t, fingerprint.IsSuspiciousChange(base, hijacked))
	})

	t.Run("minor drift is not suspicious", func(t *testing.T) {
		t.Parallel()
		drifted := fingerprint.FromComponents(fingerprint.Components{
			UserAgent: base.Components.UserAgent,
			Language:  "en-GB",
			Encoding:  base.Components.Encoding,
		})

		assert.False(t, fingerprint.IsSuspiciousChange(base, drifted))
	})
}
