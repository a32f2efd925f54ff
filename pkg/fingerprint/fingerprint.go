package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// hashLen is the length of the hex-encoded fingerprint hash. SHA-256 yields
// 64 hex characters; 32 (128 bits) is plenty for device continuity checks and
// halves storage per session.
const hashLen = 32

// Components are the raw client characteristics a fingerprint is derived
// from. Timezone and ScreenInfo are optional client-supplied hints; the rest
// come straight from request headers.
type Components struct {
	UserAgent  string `json:"user_agent"`
	Language   string `json:"language"`
	Encoding   string `json:"encoding"`
	Timezone   string `json:"timezone,omitempty"`
	ScreenInfo string `json:"screen_info,omitempty"`
}

// ClientHints carries optional client-reported characteristics that cannot be
// read from headers (typically posted by frontend code alongside the request).
type ClientHints struct {
	Timezone   string
	ScreenInfo string
}

// Fingerprint is a derived, non-secret device identity. The hash is stable
// for a fixed set of components; it is used for continuity comparison only,
// never as an authentication factor.
type Fingerprint struct {
	Hash       string     `json:"hash"`
	Components Components `json:"components"`
}

// Generate derives a device fingerprint from the request headers plus
// optional client hints. For fixed inputs the result is always identical.
func Generate(r *http.Request, hints *ClientHints) Fingerprint {
	c := Components{
		UserAgent: r.UserAgent(),
		Language:  r.Header.Get("Accept-Language"),
		Encoding:  r.Header.Get("Accept-Encoding"),
	}
	if hints != nil {
		c.Timezone = hints.Timezone
		c.ScreenInfo = hints.ScreenInfo
	}

	return Fingerprint{
		Hash:       hash(c),
		Components: c,
	}
}

// FromComponents builds a fingerprint directly from known components, e.g.
// when rehydrating a stored baseline for comparison.
func FromComponents(c Components) Fingerprint {
	return Fingerprint{Hash: hash(c), Components: c}
}

// hash digests the pipe-joined components and truncates to 32 hex chars.
// The pipe delimiter prevents ["ab","c"] and ["a","bc"] from colliding.
func hash(c Components) string {
	joined := strings.Join([]string{
		c.UserAgent,
		c.Language,
		c.Encoding,
		c.Timezone,
		c.ScreenInfo,
	}, "|")
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])[:hashLen]
}
