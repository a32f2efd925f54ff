package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety: a call like
// log.Warn("denied", logger.Error(err)) needs no explicit nil check because
// empty attributes are dropped by slog.

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ClientIP records the resolved client address.
func ClientIP(ip string) slog.Attr {
	if ip == "" {
		return slog.Attr{}
	}
	return slog.String("client_ip", ip)
}

// UserAgent records the client's User-Agent string.
func UserAgent(ua string) slog.Attr {
	if ua == "" {
		return slog.Attr{}
	}
	return slog.String("user_agent", ua)
}

// Origin records the request origin as resolved by the origin guard.
func Origin(origin string) slog.Attr {
	if origin == "" {
		return slog.Attr{}
	}
	return slog.String("origin", origin)
}

// Fingerprint records a device fingerprint hash.
func Fingerprint(hash string) slog.Attr {
	if hash == "" {
		return slog.Attr{}
	}
	return slog.String("fingerprint", hash)
}

// Code records a machine-readable denial code.
func Code(code string) slog.Attr {
	if code == "" {
		return slog.Attr{}
	}
	return slog.String("code", code)
}

// RiskScore records an aggregated risk score.
func RiskScore(score int) slog.Attr {
	return slog.Int("risk_score", score)
}

// Factors records the named risk factors behind a verdict.
func Factors(factors []string) slog.Attr {
	if len(factors) == 0 {
		return slog.Attr{}
	}
	return slog.Any("factors", factors)
}

// RequestID records a request correlation identifier.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Duration records how long an operation took.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed records the duration since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}
