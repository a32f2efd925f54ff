// Package logger provides slog attribute helpers for security-event logging.
//
// Helpers return an empty slog.Attr for zero inputs, so call sites never need
// nil or empty checks:
//
//	log.Warn("request denied",
//		logger.ClientIP(info.IP),
//		logger.Code(decision.Code),
//		logger.Error(err),
//	)
//
// Keys are stable ("client_ip", "code", "risk_score", ...) so log pipelines
// can index on them.
package logger
