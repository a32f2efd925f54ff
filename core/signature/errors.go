package signature

import "errors"

var (
	// ErrMissingSecret indicates the signer was constructed without a signing
	// secret. This is a configuration error and fatal at startup.
	ErrMissingSecret = errors.New("signing secret is required")

	// ErrMissingHeaders indicates one of the signature, timestamp, or nonce
	// headers is absent.
	ErrMissingHeaders = errors.New("missing signature headers")

	// ErrTimestampOutOfRange indicates the request timestamp is malformed or
	// outside the allowed clock-drift window.
	ErrTimestampOutOfRange = errors.New("request timestamp expired or invalid")

	// ErrNonceReused indicates the nonce was already consumed within its TTL
	// window. Treated as a replay attempt.
	ErrNonceReused = errors.New("nonce already used")

	// ErrInvalidSignature indicates the HMAC did not match the canonical
	// request payload.
	ErrInvalidSignature = errors.New("invalid request signature")

	// ErrStoreUnavailable indicates the nonce store could not be reached and
	// the signer is configured to fail closed.
	ErrStoreUnavailable = errors.New("nonce store unavailable")
)
