// Package fingerprint derives device fingerprints from HTTP requests and
// scores their similarity for session-continuity checks.
//
// A fingerprint combines User-Agent, Accept-Language, and Accept-Encoding
// headers with optional client-reported hints (timezone, screen info) into a
// 32-character hex digest plus the raw components. The hash is stable for
// fixed inputs; the components enable graded comparison when hashes differ.
//
// Basic usage:
//
//	fp := fingerprint.Generate(r, nil)
//
//	// Later, against a stored baseline:
//	similarity := fingerprint.Compare(baseline, fp)
//	if fingerprint.IsSuspiciousChange(baseline, fp) {
//		// possible account takeover: step up verification
//	}
//
// Comparison is weighted: User-Agent x3, language x2, encoding x1, and the
// optional timezone and screen components x2 each, counted only when either
// side supplied them. A similarity below 0.5 is considered suspicious.
//
// Fingerprints are derived, non-secret identifiers. They supplement session
// management for continuity detection and must never be treated as
// authentication.
package fingerprint
