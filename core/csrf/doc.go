// Package csrf provides stateless double-submit CSRF protection for
// cookie-authenticated endpoints.
//
// A token is minted per session with Issue and returned to the client, which
// echoes it back in the X-CSRF-Token header on every mutating request. The
// token embeds the session identifier and an expiry, sealed with a truncated
// HMAC, so validation needs no server-side token storage: the signature
// proves the server minted it, and the embedded session identifier must match
// the session cookie presented with the request.
//
//	protector, err := csrf.New(secret)
//	if err != nil {
//		return err
//	}
//
//	// After login:
//	token := protector.Issue(sessionID)
//
//	// On mutating requests:
//	if protector.Required(r.Method) {
//		if err := protector.Validate(r); err != nil {
//			// reject with 403
//		}
//	}
//
// Safe methods (GET, HEAD, OPTIONS) never require a token. Requests
// authenticated by API key instead of a cookie session are outside this
// package's scope; the caller decides when CSRF applies.
package csrf
