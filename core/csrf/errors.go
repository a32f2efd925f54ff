package csrf

import "errors"

var (
	// ErrMissingSecret indicates the protector was constructed without a secret.
	ErrMissingSecret = errors.New("csrf secret is required")

	// ErrMissingToken indicates the request carries no CSRF token header.
	ErrMissingToken = errors.New("missing csrf token")

	// ErrMissingSession indicates no session cookie was presented to bind
	// the token against.
	ErrMissingSession = errors.New("missing session cookie")

	// ErrInvalidToken indicates the token is malformed, forged, or bound to
	// a different session.
	ErrInvalidToken = errors.New("invalid csrf token")

	// ErrTokenExpired indicates the token's validity window has passed.
	ErrTokenExpired = errors.New("csrf token expired")
)
