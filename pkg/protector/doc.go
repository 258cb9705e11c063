// Package protector provides purpose-scoped authenticated encryption for
// opaque envelopes carried in cookies, bearer tokens, and redirect state.
//
// Values are encrypted with AES-256-GCM and encoded as URL-safe base64
// strings without padding, making them safe for cookie values, headers,
// and query parameters. Purpose derivation (HKDF-SHA256) ensures that a
// value protected for one purpose cannot be unprotected under another,
// even though all purposes share the same root secrets.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/frontauth/pkg/protector"
//
//	root, err := protector.New([]string{secret})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cookie := root.Derive("Cookie", "v1")
//	token := root.Derive("Token", "v1")
//
//	s, _ := cookie.Protect(payload)
//	data, err := cookie.Unprotect(s) // fails under token
//
// # Key Rotation
//
// New accepts multiple secrets. The first secret is used for encryption;
// all secrets are tried on decryption, so old envelopes stay readable
// while a new key is rolled out. Remove the retired secret once existing
// envelopes have expired.
//
// # Failure Semantics
//
// Unprotect returns ErrUnprotectFailed for every malformed, truncated, or
// tampered input. Callers are expected to treat this as "no envelope
// present" rather than as an authentication failure, which keeps corrupted
// cookies from locking users out.
package protector
