package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nexnum/sentinel/core/guard"
	"github.com/nexnum/sentinel/pkg/fingerprint"
)

type contextKey int

const (
	clientInfoKey contextKey = iota
	fingerprintKey
	requestIDKey
)

// errorResponse is the JSON body written for every denial.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// Secure runs the guard pipeline before the handler. Denials are written as
// JSON with the decision's status and code; allowed requests continue with
// the resolved ClientInfo and Fingerprint stashed in the request context.
func Secure(g *guard.Guard, opts guard.Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			setSecurityHeaders(w.Header())

			d := g.Secure(r.Context(), r, opts)
			if !d.Allowed {
				writeJSON(w, d.Status, errorResponse{
					Error: d.Reason,
					Code:  d.Code,
				})
				return
			}

			ctx := context.WithValue(r.Context(), clientInfoKey, d.ClientInfo)
			ctx = context.WithValue(ctx, fingerprintKey, d.Fingerprint)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientInfoFromContext returns the client info resolved by Secure.
func ClientInfoFromContext(ctx context.Context) (guard.ClientInfo, bool) {
	info, ok := ctx.Value(clientInfoKey).(guard.ClientInfo)
	return info, ok
}

// FingerprintFromContext returns the fingerprint resolved by Secure.
func FingerprintFromContext(ctx context.Context) (fingerprint.Fingerprint, bool) {
	fp, ok := ctx.Value(fingerprintKey).(fingerprint.Fingerprint)
	return fp, ok
}

// setSecurityHeaders applies the fixed response header set. Applied to every
// response, including denials, so error paths leak nothing cacheable.
func setSecurityHeaders(h http.Header) {
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
