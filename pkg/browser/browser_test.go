package browser_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexnum/sentinel/pkg/browser"
)

const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func headersFrom(m map[string]string) http.Header {
	h := http.Header{}
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

func fullBrowserHeaders() http.Header {
	return headersFrom(map[string]string{
		"User-Agent":      chromeUA,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9",
		"Accept-Encoding": "gzip, deflate, br",
		"Accept-Language": "en-US,en;q=0.9",
		"Sec-Fetch-Site":  "same-origin",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Dest":  "empty",
	})
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("curl is a high-confidence bot", func(t *testing.T) {
		t.Parallel()
		res := browser.Check(headersFrom(map[string]string{"User-Agent": "curl/8.0.1"}))

		assert.False(t, res.IsBrowser)
		assert.Equal(t, browser.ConfidenceHigh, res.Confidence)
		assert.Contains(t, res.Reason, "curl/")
	})

	t.Run("full modern browser header set scores high", func(t *testing.T) {
		t.Parallel()
		res := browser.Check(fullBrowserHeaders())

		assert.True(t, res.IsBrowser)
		assert.Equal(t, browser.ConfidenceHigh, res.Confidence)
		assert.True(t, res.Signals.HasSecFetch)
		assert.True(t, res.Signals.HasBrowserUA)
		assert.True(t, res.Signals.SameOriginFetch)
	})

	t.Run("empty user agent rejected with no confidence", func(t *testing.T) {
		t.Parallel()
		res := browser.Check(http.Header{})

		assert.False(t, res.IsBrowser)
		assert.Equal(t, browser.ConfidenceNone, res.Confidence)
		assert.NotEmpty(t, res.Reason)
	})

	t.Run("short user agent rejected", func(t *testing.T) {
		t.Parallel()
		res := browser.Check(headersFrom(map[string]string{"User-Agent": "MyAgent/1.0"}))

		assert.False(t, res.IsBrowser)
		assert.Equal(t, browser.ConfidenceNone, res.Confidence)
	})

	t.Run("headless chrome detected by signature", func(t *testing.T) {
		t.Parallel()
		ua := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/119.0.0.0 Safari/537.36"
		res := browser.Check(headersFrom(map[string]string{"User-Agent": ua}))

		assert.False(t, res.IsBrowser)
		assert.Equal(t, browser.ConfidenceHigh, res.Confidence)
	})

	t.Run("browser UA without any supporting headers is below threshold", func(t *testing.T) {
		t.Parallel()
		res := browser.Check(headersFrom(map[string]string{"User-Agent": chromeUA}))

		// Only the UA signal (+2) fires: not enough to be treated as a browser.
		assert.False(t, res.IsBrowser)
		assert.Equal(t, browser.ConfidenceNone, res.Confidence)
	})

	t.Run("browser UA with accept headers reaches low confidence", func(t *testing.T) {
		t.Parallel()
		res := browser.Check(headersFrom(map[string]string{
			"User-Agent":      chromeUA,
			"Accept":          "text/html",
			"Accept-Encoding": "gzip",
		}))

		assert.True(t, res.IsBrowser)
		assert.Equal(t, browser.ConfidenceLow, res.Confidence)
	})

	t.Run("deterministic for identical headers", func(t *testing.T) {
		t.Parallel()
		h := fullBrowserHeaders()
		assert.Equal(t, browser.Check(h), browser.Check(h))
	})
}

func TestWrappers(t *testing.T) {
	t.Parallel()

	t.Run("strict mode rejects low confidence", func(t *testing.T) {
		t.Parallel()
		h := headersFrom(map[string]string{
			"User-Agent":      chromeUA,
			"Accept":          "text/html",
			"Accept-Encoding": "gzip",
		})

		assert.True(t, browser.IsLikelyBrowser(h))
		assert.False(t, browser.RequireRealBrowser(h))
	})

	t.Run("strict mode accepts medium confidence", func(t *testing.T) {
		t.Parallel()
		h := headersFrom(map[string]string{
			"User-Agent":      chromeUA,
			"Accept":          "text/html",
			"Accept-Encoding": "gzip",
			"Accept-Language": "en-US",
			"Sec-Fetch-Dest":  "document",
		})

		// UA(+2) + accept pair(+1) + language(+1) + sec-fetch presence(+3)
		// + dest(+1) = 8: high confidence, so strict passes too.
		assert.True(t, browser.RequireRealBrowser(h))
	})
}

func TestConfidenceAtLeast(t *testing.T) {
	t.Parallel()

	assert.True(t, browser.ConfidenceHigh.AtLeast(browser.ConfidenceMedium))
	assert.True(t, browser.ConfidenceMedium.AtLeast(browser.ConfidenceMedium))
	assert.False(t, browser.ConfidenceLow.AtLeast(browser.ConfidenceMedium))
	assert.False(t, browser.ConfidenceNone.AtLeast(browser.ConfidenceLow))
}
