// Package middleware adapts the guard pipeline and rate limiter to standard
// net/http middleware. It composes with any chi- or stdlib-style router:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.Secure(g, guard.Options{
//		BrowserCheck: guard.BrowserCheckBasic,
//	}))
//	r.Use(middleware.RateLimit(limiter))
//
// Denials are JSON bodies of the form {"success":false,"error":...,"code":...}
// with the guard's status code. Every response carries Cache-Control:
// no-store, X-Content-Type-Options: nosniff, and X-Frame-Options: DENY.
//
// On allowed requests, Secure stores the resolved client context for
// downstream handlers:
//
//	info, _ := middleware.ClientInfoFromContext(r.Context())
//	fp, _ := middleware.FingerprintFromContext(r.Context())
package middleware
