package clientip

import (
	"net"
	"net/http"
	"strings"
)

// fallbackIP is returned when no usable address can be extracted from the
// request. Using a fixed loopback value keeps downstream keying (rate limits,
// audit logs) stable instead of propagating empty strings.
const fallbackIP = "127.0.0.1"

// GetIP extracts the forensic client IP address from the request.
//
// Headers are consulted in a deliberate trust order:
//  1. CF-Connecting-IP (set by the edge, hardest to spoof from outside)
//  2. X-Forwarded-For (leftmost hop, the original client)
//  3. X-Real-IP
//  4. RemoteAddr (direct connection)
//
// The result is best-effort forensic identity, not authentication: any of
// these headers can be forged by a client talking directly to the origin.
func GetIP(r *http.Request) string {
	if ip := parseIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// X-Forwarded-For is "client, proxy1, proxy2"; the first hop is the client.
		first, _, _ := strings.Cut(fwd, ",")
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if ip := parseIP(host); ip != "" {
			return ip
		}
	} else if ip := parseIP(r.RemoteAddr); ip != "" {
		return ip
	}

	return fallbackIP
}

// parseIP validates and normalizes an IP candidate, returning "" when the
// value is not a valid address. 0.0.0.0 and the unspecified IPv6 address are
// rejected since they never identify a real client.
func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
