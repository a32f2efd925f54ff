package origin

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Origin labels returned for requests admitted without a literal Origin header.
const (
	OriginAPIKey     = "api-key"
	OriginSameOrigin = "same-origin"
	OriginUnknownDev = "unknown-dev"
)

// maxEchoLen bounds how much of a rejected origin is echoed into errors.
// Keeps hostile origin strings from flooding logs while preserving enough
// for diagnosis.
const maxEchoLen = 128

// Result is the outcome of an origin validation.
type Result struct {
	Valid  bool
	Origin string
	Err    error
}

// Guard validates Origin/Referer headers against a configured allow-list.
// A Guard is immutable after construction and safe for concurrent use.
type Guard struct {
	allowed    map[string]struct{}
	wildcards  []string
	production bool
	hasAPIKey  func(http.Header) bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithWildcards adds wildcard subdomain patterns ("*.example.com"). A pattern
// matches any origin whose hostname is a subdomain of, or equal to, the
// pattern's domain.
func WithWildcards(patterns ...string) Option {
	return func(g *Guard) {
		for _, p := range patterns {
			domain := strings.TrimPrefix(p, "*.")
			if domain != "" {
				g.wildcards = append(g.wildcards, domain)
			}
		}
	}
}

// WithProduction controls the missing-origin policy: in production a request
// without any origin signal is denied, otherwise it is admitted as
// "unknown-dev" so local tools keep working.
func WithProduction(production bool) Option {
	return func(g *Guard) {
		g.production = production
	}
}

// WithAPIKeyCheck overrides how the guard detects API-key callers, which are
// exempt from origin requirements. The default checks for a non-empty
// X-API-Key header.
func WithAPIKeyCheck(fn func(http.Header) bool) Option {
	return func(g *Guard) {
		if fn != nil {
			g.hasAPIKey = fn
		}
	}
}

// New creates a Guard from the application URL(s). Each URL contributes its
// origin (scheme://host[:port]) to the allow-list.
func New(appURLs []string, opts ...Option) (*Guard, error) {
	g := &Guard{
		allowed: make(map[string]struct{}, len(appURLs)),
		hasAPIKey: func(h http.Header) bool {
			return h.Get("X-API-Key") != ""
		},
	}

	for _, raw := range appURLs {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAppURL, raw)
		}
		g.allowed[u.Scheme+"://"+u.Host] = struct{}{}
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Validate checks the request's origin against the allow-list.
//
// The source origin is the Origin header, falling back to the Referer's
// origin. When neither is present the request is still admitted for API-key
// callers and for same-origin/same-site fetches (per Sec-Fetch-Site); in
// non-production everything else passes as "unknown-dev", in production it
// is denied.
func (g *Guard) Validate(h http.Header) Result {
	source := sourceOrigin(h)

	if source == "" {
		if g.hasAPIKey(h) {
			return Result{Valid: true, Origin: OriginAPIKey}
		}
		if site := h.Get("Sec-Fetch-Site"); site == "same-origin" || site == "same-site" {
			return Result{Valid: true, Origin: OriginSameOrigin}
		}
		if g.production {
			return Result{Err: ErrMissingOrigin}
		}
		return Result{Valid: true, Origin: OriginUnknownDev}
	}

	if _, ok := g.allowed[source]; ok {
		return Result{Valid: true, Origin: source}
	}

	if host := hostOf(source); host != "" {
		for _, domain := range g.wildcards {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return Result{Valid: true, Origin: source}
			}
		}
	}

	return Result{Err: fmt.Errorf("%w: %q", ErrOriginNotAllowed, truncate(source))}
}

// sourceOrigin returns the normalized origin of the request: the Origin
// header, else the Referer's origin, with any trailing slash stripped for
// comparison stability.
func sourceOrigin(h http.Header) string {
	if o := h.Get("Origin"); o != "" && o != "null" {
		return strings.TrimSuffix(o, "/")
	}

	if ref := h.Get("Referer"); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}

	return ""
}

func hostOf(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func truncate(s string) string {
	if len(s) > maxEchoLen {
		return s[:maxEchoLen] + "..."
	}
	return s
}
