// Package envelope serializes authentication records and wraps them with
// purpose-scoped authenticated encryption.
//
// Three purposes exist, each with its own derived key: Cookie (the session
// cookie), Token (the bearer header), and Extra (the cross-redirect data
// bag). A value protected for one purpose fails to unprotect under any
// other, so a leaked cookie value cannot be replayed as a bearer token.
//
// Basic usage:
//
//	import (
//		"github.com/dmitrymomot/frontauth/core/envelope"
//		"github.com/dmitrymomot/frontauth/pkg/protector"
//	)
//
//	root, _ := protector.New([]string{secret})
//	codec := envelope.NewCodec(root)
//
//	token, _ := codec.ProtectToken(front)
//	front2, err := codec.UnprotectToken(token)
//
// The binary form is little-endian and versioned through the protector
// purpose suffix: changing the layout means bumping the suffix, which
// cleanly invalidates every envelope minted under the old layout.
//
// Decode failures (tampering, truncation, key rollover past the rotation
// window) surface as errors that resolvers log and treat as an absent
// envelope, never as an authentication failure.
package envelope
