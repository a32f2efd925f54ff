// Package elevation implements short-lived, action-scoped re-authentication
// for sensitive operations ("step-up auth").
//
// Before a high-risk action (password change, API key deletion, payout) the
// caller re-checks the user's password and receives an opaque token bound to
// exactly one (user, action) pair, stored with a 5-minute TTL. The protected
// handler verifies the token, performs the action, and consumes the token.
//
//	token, err := elevator.Require(ctx, userID, password, "password.change")
//	if err != nil {
//		// wrong password or infrastructure failure
//	}
//
//	// later, in the protected handler:
//	if err := elevator.Verify(ctx, token, userID, "password.change"); err != nil {
//		// not elevated, expired, or scoped to something else
//	}
//	// ... perform the action ...
//	_ = elevator.Consume(ctx, token)
//
// Verification checks user AND action, so a token minted for
// (alice, "password.change") never authorizes (bob, anything) or
// (alice, "api_key.delete"). Expiry is enforced by the store TTL.
//
// Tokens are intended to be single-use, but Verify deliberately does not
// consume: that keeps it side-effect free. A caller that forgets Consume
// leaves the token reusable until the TTL runs out — caller responsibility,
// not a package guarantee.
package elevation
