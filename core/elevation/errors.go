package elevation

import "errors"

var (
	// ErrReauthFailed is returned when the password re-check fails.
	ErrReauthFailed = errors.New("re-authentication failed")

	// ErrNotElevated is returned when no valid elevation exists for the token.
	ErrNotElevated = errors.New("no valid elevation")

	// ErrScopeMismatch is returned when the token exists but is bound to a
	// different user or action.
	ErrScopeMismatch = errors.New("elevation scope mismatch")
)
