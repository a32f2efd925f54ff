package origin

import "errors"

var (
	// ErrInvalidAppURL indicates a configured application URL could not be parsed.
	ErrInvalidAppURL = errors.New("invalid application URL")

	// ErrMissingOrigin indicates the request carried no origin signal in an
	// environment that requires one.
	ErrMissingOrigin = errors.New("missing origin")

	// ErrOriginNotAllowed indicates the request origin is not on the allow-list.
	ErrOriginNotAllowed = errors.New("origin not allowed")
)
