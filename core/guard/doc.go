// Package guard sequences all request security checks into one decision
// pipeline: origin validation, CSRF, browser attestation, request signature,
// CAPTCHA, and finally the risk assessment.
//
// One Guard instance is shared across routes; per-route Options select which
// stages apply:
//
//	g := guard.New(
//		guard.WithOrigin(originGuard),
//		guard.WithCSRF(csrfProtector),
//		guard.WithSigner(signer),
//		guard.WithCaptcha(captchaClient),
//		guard.WithDeviceStore(store),
//	)
//
//	decision := g.Secure(ctx, r, guard.Options{
//		BrowserCheck:     guard.BrowserCheckBasic,
//		RequireSignature: true,
//	})
//	if !decision.Allowed {
//		// decision.Status, decision.Code
//	}
//
// Stages run in a fixed order and any stage can short-circuit with a denial.
// The risk stage is special: it is the only stage that can escalate an
// otherwise-passing request, demanding a CAPTCHA on a challenge verdict or
// denying outright on a block verdict.
//
// Callers presenting an API key (X-API-Key, or a bearer token with the
// configured prefix) bypass origin, CSRF, and browser checks when the route
// sets AllowAPIKey. CAPTCHA requirements are waived for keyed callers too;
// signature requirements are not.
//
// The guard never writes to the response. Transport concerns, including the
// JSON denial body and security headers, live in the middleware package.
package guard
