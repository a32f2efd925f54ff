package pg

import "errors"

var (
	// ErrEmptyConnectionURL indicates no connection URL was configured.
	ErrEmptyConnectionURL = errors.New("empty postgres connection URL")

	// ErrFailedToParseConnString indicates a malformed connection URL.
	ErrFailedToParseConnString = errors.New("failed to parse postgres connection string")

	// ErrNotReady indicates Postgres did not become reachable within the
	// configured retry budget.
	ErrNotReady = errors.New("postgres did not become ready within the given time period")

	// ErrHealthcheckFailed indicates the readiness ping failed.
	ErrHealthcheckFailed = errors.New("postgres healthcheck failed")
)
