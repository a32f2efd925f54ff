// Package origin validates request Origin/Referer headers against a
// configured allow-list, with wildcard subdomain support.
//
// The guard derives a source origin from the Origin header (falling back to
// the Referer) and matches it against the origins of the configured
// application URLs plus optional "*.domain" wildcard patterns. Requests
// without any origin signal are admitted for API-key callers and same-origin
// fetches; everything else depends on the production flag.
//
// Usage:
//
//	guard, err := origin.New(
//		[]string{"https://app.nexnum.example"},
//		origin.WithWildcards("*.nexnum.example"),
//		origin.WithProduction(true),
//	)
//	if err != nil {
//		return err
//	}
//
//	res := guard.Validate(r.Header)
//	if !res.Valid {
//		// deny with res.Err
//	}
//
// Wildcard matching is a hostname suffix check: "*.nexnum.example" accepts
// "https://app.nexnum.example" but rejects "https://nexnum.example.evil.com".
// Rejected origins are echoed into errors truncated, so hostile values cannot
// flood logs.
package origin
