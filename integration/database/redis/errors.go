package redis

import "errors"

var (
	// ErrEmptyConnectionURL indicates no connection URL was configured.
	ErrEmptyConnectionURL = errors.New("empty redis connection URL")

	// ErrFailedToParseConnString indicates a malformed connection URL.
	ErrFailedToParseConnString = errors.New("failed to parse redis connection string")

	// ErrNotReady indicates Redis did not become reachable within the
	// configured retry budget.
	ErrNotReady = errors.New("redis did not become ready within the given time period")

	// ErrHealthcheckFailed indicates the readiness ping failed.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
