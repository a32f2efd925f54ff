// Package signature implements HMAC request signing and verification with
// timestamp and one-time-nonce replay protection.
//
// A signed request carries three headers: X-Signature (hex HMAC-SHA256),
// X-Timestamp (unix milliseconds), and X-Nonce (random, single-use). The
// signature covers the canonical payload
//
//	timestamp.nonce.METHOD.path.bodyHash
//
// where bodyHash is the hex SHA-256 of the body (JSON objects are normalized
// with sorted top-level keys) or empty for bodyless requests.
//
// Verification order matters and is part of the contract:
//
//  1. all three headers present
//  2. timestamp within the clock-drift window (default ±5 minutes)
//  3. nonce not already consumed (fast-path existence check)
//  4. constant-time signature comparison
//  5. nonce consumed via atomic SetNX — only after the signature matched,
//     so a forged request can never burn a victim's nonce
//
// The SetNX write is the authoritative replay guard; two concurrent requests
// with the same valid triple resolve to exactly one acceptance.
//
// Usage:
//
//	signer, err := signature.New(cfg.SigningSecret, store,
//		signature.WithFailClosed(cfg.Production),
//	)
//	if err != nil {
//		return err // missing secret is fatal at startup
//	}
//
//	if err := signer.Validate(ctx, r.Header, r.Method, r.URL.Path, body); err != nil {
//		// deny with 401
//	}
//
// When the nonce store is unreachable the signer fails closed (deny) if
// configured with WithFailClosed(true), and fails open with a warning
// otherwise. The asymmetry is deliberate: production denies, local
// development keeps working without the store.
package signature
