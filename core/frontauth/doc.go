// Package frontauth is the server-side core of web front authentication:
// stateless resolution of the caller's identity from bearer headers and
// cookies, a pluggable multi-scheme login orchestrator, and the cookie
// policy that keeps browsers in sync with the issued envelopes.
//
// # Resolution
//
// Every request is resolved through three credential tiers: the bearer
// header, the protected session cookie, and the plaintext long-term
// cookie. The first tier that yields a valid envelope wins; decode
// failures degrade to the next tier instead of failing the request. A
// first-contact request gets a synthesized device identity. Install
// Middleware so all handlers of a request share one resolution:
//
//	svc, err := frontauth.New(codec, loginService, cfg)
//	if err != nil { ... }
//	mux.Handle("/", svc.Middleware(appHandler))
//
// # Levels
//
// An authentication carries a level derived from its expiration state at
// the time of the check: Critical (criticalExpires in the future), Normal
// (expires in the future), Unsafe (identity known, session expired), or
// None. The long-term cookie alone never yields more than Unsafe.
//
// # Logins
//
// All login-producing paths run through UnifiedLogin: parameter
// validation, the backend call (as a dry run first when a validator is
// configured), auto-bind / auto-create fallbacks for unregistered users,
// and the final commit that rewrites the cookies. A failed login always
// leaves the caller anonymous, keeping only the device identity.
package frontauth
