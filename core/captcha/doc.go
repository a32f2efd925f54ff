// Package captcha verifies challenge tokens against a siteverify-style
// provider endpoint. Cloudflare Turnstile, Google reCAPTCHA, and hCaptcha all
// expose the same contract: a form-encoded POST of secret and response, and a
// JSON body with a success flag and optional error codes.
//
//	verifier, err := captcha.New(
//		"https://challenges.cloudflare.com/turnstile/v0/siteverify",
//		cfg.CaptchaSecret,
//	)
//	if err != nil {
//		return err
//	}
//
//	if err := verifier.Verify(ctx, r.Header.Get(captcha.HeaderToken), ip); err != nil {
//		// reject or re-challenge
//	}
//
// Provider rejection (ErrVerificationFailed) and provider unavailability
// (ErrVerifyUnavailable) are distinct errors so callers can apply different
// policies to each.
package captcha
