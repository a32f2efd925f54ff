// Package risk aggregates independent, imperfect security signals into a
// single admission verdict: a 0-100 score, a level, and an action.
//
// The assessment is a pure additive reduction. Each adverse signal adds a
// fixed contribution (bot verdict +50, invalid signature +60, invalid origin
// +40, fingerprint mismatch +35, new device +5, poor IP reputation up to
// +30), the sum is capped at 100, and thresholds map the score to an action:
//
//	>= 75  malicious   block
//	>= 40  high        challenge
//	>= 20  suspicious  challenge
//	<  20  low         allow
//
// Missing signals are neutral — a request with no fingerprint baseline and
// no reputation source is not penalized for the absence. Assess never fails
// and has no side effects; audit logging of the returned factors is the
// caller's concern.
//
//	assessment := risk.Assess(risk.Signal{
//		IsBot:       botResult,
//		OriginValid: &originOK,
//	})
//	switch assessment.Action {
//	case risk.ActionBlock:
//		// deny
//	case risk.ActionChallenge:
//		// force a CAPTCHA
//	}
//
// Every contributing signal is individually named in Factors so operators
// can diagnose false positives from audit logs.
package risk
