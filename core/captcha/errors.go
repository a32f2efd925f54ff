package captcha

import "errors"

var (
	// ErrMissingVerifyURL indicates the client was constructed without a
	// verification endpoint.
	ErrMissingVerifyURL = errors.New("captcha verify url is required")

	// ErrMissingSecret indicates the client was constructed without a
	// provider secret.
	ErrMissingSecret = errors.New("captcha secret is required")

	// ErrMissingToken indicates the request carries no challenge token.
	ErrMissingToken = errors.New("missing captcha token")

	// ErrVerificationFailed indicates the provider rejected the token.
	ErrVerificationFailed = errors.New("captcha verification failed")

	// ErrVerifyUnavailable indicates the provider could not be reached or
	// returned an unusable response.
	ErrVerifyUnavailable = errors.New("captcha provider unavailable")
)
