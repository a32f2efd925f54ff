// Package browser estimates whether an HTTP request was produced by a real
// web browser, based purely on request headers.
//
// The attestor combines a curated bot/tooling signature list with a point
// score over header signals that browsers send and automation usually omits:
// Sec-Fetch-* metadata, a coherent Mozilla/5.0 User-Agent, and the standard
// Accept-* trio. The result carries a confidence level (none, low, medium,
// high) together with the individual signals for diagnostics.
//
// Basic usage:
//
//	res := browser.Check(r.Header)
//	if !res.IsBrowser {
//		// deny or challenge
//	}
//
// Two convenience wrappers map to common policies:
//
//	browser.IsLikelyBrowser(r.Header)   // basic: minimum score reached
//	browser.RequireRealBrowser(r.Header) // strict: confidence >= medium
//
// The check is deterministic and stateless; it reads only the supplied
// headers. It is a heuristic, not proof: sophisticated bots can forge every
// signal involved. Treat the verdict as one input into a broader risk
// decision rather than a standalone gate.
package browser
