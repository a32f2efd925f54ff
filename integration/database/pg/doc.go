// Package pg provides PostgreSQL connection management and the
// bcrypt-backed credential store used by the sensitive-action elevator.
//
// Connect creates a pgx pool, bounds the attempt with a timeout, and
// verifies connectivity with a ping before returning:
//
//	pool, err := pg.Connect(ctx, pg.Config{ConnectionURL: url})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	creds := pg.NewCredentialStore(pool)
//	elevator := elevation.New(creds, store)
//
// CredentialStore reads bcrypt hashes from the users table and never reveals
// whether a failure was an unknown user or a wrong password. Callers running
// inside a transaction can route the lookup through it with WithTx.
//
// Config is populated from PG_* environment variables via caarlos0/env.
package pg
