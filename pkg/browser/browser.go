package browser

import (
	"fmt"
	"net/http"
	"strings"
)

// Confidence expresses how certain the attestor is about its verdict.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// rank orders confidence levels for threshold checks.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether c meets or exceeds the given confidence level.
func (c Confidence) AtLeast(min Confidence) bool {
	return c.rank() >= min.rank()
}

// Signals records which individual browser indicators fired. Exposing the raw
// signals lets operators diagnose why a client was or wasn't classified as a
// browser without re-deriving the score.
type Signals struct {
	HasSecFetch       bool `json:"has_sec_fetch"`
	HasBrowserUA      bool `json:"has_browser_ua"`
	HasAcceptHeaders  bool `json:"has_accept_headers"`
	HasAcceptLanguage bool `json:"has_accept_language"`
	SameOriginFetch   bool `json:"same_origin_fetch"`
}

// Result is the attestor's verdict for a single request. It is a pure function
// of the request headers: same headers, same result.
type Result struct {
	IsBrowser  bool       `json:"is_browser"`
	Confidence Confidence `json:"confidence"`
	Signals    Signals    `json:"signals"`
	Reason     string     `json:"reason,omitempty"`
}

// minUserAgentLen rejects User-Agent values too short to belong to any real
// browser. The shortest mainstream browser UA is well over 20 characters.
const minUserAgentLen = 20

// Scoring weights for each positive browser signal.
const (
	scoreSecFetch       = 3
	scoreBrowserUA      = 2
	scoreAcceptHeaders  = 1
	scoreAcceptLanguage = 1
	scoreSameOrigin     = 2
	scoreFetchDest      = 1
)

// Confidence thresholds over the accumulated score.
const (
	thresholdHigh      = 7
	thresholdMedium    = 5
	thresholdIsBrowser = 3
)

// Check scores the request headers and estimates whether they were produced
// by a real browser. The check is stateless and deterministic.
//
// Hard rejections come first: an empty or implausibly short User-Agent yields
// confidence "none", and a User-Agent matching a known bot/tooling signature
// yields a high-confidence non-browser verdict. Everything else accumulates a
// point score from header signals that automation rarely reproduces together.
func Check(h http.Header) Result {
	ua := h.Get("User-Agent")

	// Signature match wins over the length check: "curl/8.0.1" is short AND
	// a known tool, and the tool verdict is the more actionable one.
	if sig, ok := matchBotSignature(ua); ok {
		return Result{
			IsBrowser:  false,
			Confidence: ConfidenceHigh,
			Reason:     fmt.Sprintf("user agent matches bot signature %q", sig),
		}
	}

	if len(ua) < minUserAgentLen {
		return Result{
			IsBrowser:  false,
			Confidence: ConfidenceNone,
			Reason:     "missing or truncated user agent",
		}
	}

	signals := Signals{
		HasSecFetch:       hasSecFetchHeaders(h),
		HasBrowserUA:      hasBrowserUserAgent(ua),
		HasAcceptHeaders:  h.Get("Accept") != "" && h.Get("Accept-Encoding") != "",
		HasAcceptLanguage: h.Get("Accept-Language") != "",
		SameOriginFetch:   isSameOriginFetch(h.Get("Sec-Fetch-Site")),
	}

	score := 0
	if signals.HasSecFetch {
		score += scoreSecFetch
	}
	if signals.HasBrowserUA {
		score += scoreBrowserUA
	}
	if signals.HasAcceptHeaders {
		score += scoreAcceptHeaders
	}
	if signals.HasAcceptLanguage {
		score += scoreAcceptLanguage
	}
	if signals.SameOriginFetch {
		score += scoreSameOrigin
	}
	if dest := h.Get("Sec-Fetch-Dest"); dest == "empty" || dest == "document" {
		score += scoreFetchDest
	}

	res := Result{
		IsBrowser: score >= thresholdIsBrowser,
		Signals:   signals,
	}
	switch {
	case score >= thresholdHigh:
		res.Confidence = ConfidenceHigh
	case score >= thresholdMedium:
		res.Confidence = ConfidenceMedium
	case score >= thresholdIsBrowser:
		res.Confidence = ConfidenceLow
	default:
		res.Confidence = ConfidenceNone
		res.Reason = "insufficient browser signals"
	}

	return res
}

// IsLikelyBrowser is the basic-strictness convenience wrapper: the request
// only needs to clear the minimum browser score.
func IsLikelyBrowser(h http.Header) bool {
	return Check(h).IsBrowser
}

// RequireRealBrowser is the strict-mode wrapper: in addition to the browser
// verdict, the confidence must be at least medium.
func RequireRealBrowser(h http.Header) bool {
	res := Check(h)
	return res.IsBrowser && res.Confidence.AtLeast(ConfidenceMedium)
}

// hasSecFetchHeaders reports whether any Sec-Fetch-* metadata header is
// present. Only real browsers send these; most HTTP clients and scrapers do
// not bother forging them.
func hasSecFetchHeaders(h http.Header) bool {
	return h.Get("Sec-Fetch-Site") != "" ||
		h.Get("Sec-Fetch-Mode") != "" ||
		h.Get("Sec-Fetch-Dest") != ""
}

// hasBrowserUserAgent reports whether the User-Agent carries both a known
// browser token and the "Mozilla/5.0" prefix every mainstream browser ships.
func hasBrowserUserAgent(ua string) bool {
	if !strings.Contains(ua, "Mozilla/5.0") {
		return false
	}
	lower := strings.ToLower(ua)
	for _, token := range browserTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func isSameOriginFetch(site string) bool {
	return site == "same-origin" || site == "same-site"
}
