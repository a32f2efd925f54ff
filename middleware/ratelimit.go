package middleware

import (
	"net/http"
	"strconv"

	"github.com/nexnum/sentinel/core/ratelimit"
	"github.com/nexnum/sentinel/pkg/clientip"
)

// RateLimit applies the limiter per client. When Secure ran earlier in the
// chain the key combines IP and fingerprint, so devices behind a shared NAT
// get independent budgets; otherwise it falls back to the bare IP.
//
// Standard X-RateLimit-* headers are set on every response; exhausted
// buckets get 429 with Retry-After. Limiter store failures fail open: a
// broken limiter must not take the service down with it.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limitKey(r)

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				h.Set("Retry-After", strconv.Itoa(int(res.RetryAfter().Seconds())+1))
				setSecurityHeaders(h)
				writeJSON(w, http.StatusTooManyRequests, errorResponse{
					Error: "rate limit exceeded",
					Code:  "RATE_LIMITED",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func limitKey(r *http.Request) string {
	var fpHash string
	if fp, ok := FingerprintFromContext(r.Context()); ok {
		fpHash = fp.Hash
	}

	if info, ok := ClientInfoFromContext(r.Context()); ok {
		return ratelimit.Key(info.IP, fpHash)
	}
	return ratelimit.Key(clientip.GetIP(r), fpHash)
}
