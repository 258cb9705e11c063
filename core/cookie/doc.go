// Package cookie provides an HTTP cookie manager with shared defaults and
// per-call overrides through functional options.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/frontauth/core/cookie"
//
//	m := cookie.New(cookie.WithPath("/"), cookie.WithHTTPOnly(true))
//
//	err := m.Set(w, "session", value,
//		cookie.WithSecure(true),
//		cookie.WithExpires(expires))
//
//	v, err := m.Get(r, "session")
//
//	m.Delete(w, "session", cookie.WithSecure(true))
//
// Delete must be given the same Path, Domain and Secure attributes the
// cookie was set with; browsers only discard a cookie when the clearing
// Set-Cookie matches those attributes.
//
// The manager writes values verbatim. Confidentiality and integrity for
// authentication cookies come from the envelope codec, which protects the
// value before it reaches this package.
package cookie
