// Package clientip extracts forensic client IP addresses from HTTP requests.
//
// The package resolves the best available client address behind proxies and
// CDNs by checking headers in trust order: CF-Connecting-IP, the first hop of
// X-Forwarded-For, X-Real-IP, and finally the connection's RemoteAddr. When
// nothing usable is found it falls back to 127.0.0.1 so callers always get a
// stable, non-empty key.
//
// Usage:
//
//	ip := clientip.GetIP(r)
//	limiter.Allow(ctx, ip)
//
// The extracted address is suitable for rate limiting, audit logging, and
// risk keying. It is NOT cryptographically authenticated identity: clients
// connecting directly to the origin can forge every header involved, so never
// use it as the sole basis for an authorization decision.
package clientip
