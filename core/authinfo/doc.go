// Package authinfo defines the immutable authentication model: users,
// authentication snapshots with level transitions, and the remember-me
// pairing carried by envelopes.
//
// All types have value semantics. Mutations return new instances, which
// removes any need for copy-on-write locking and makes the model safe to
// cache on a request and read from any goroutine.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/frontauth/core/authinfo"
//
//	user, _ := authinfo.NewUserInfo(42, "alice", nil)
//	info := authinfo.New(user, time.Now().Add(6*time.Hour), time.Time{}, deviceID)
//
//	info = info.SetCriticalExpires(time.Now().Add(30 * time.Minute))
//	info.Level() // LevelCritical
//
//	later := info.CheckExpiration(time.Now().Add(time.Hour))
//	later.Level() // LevelNormal
//
// # Levels
//
// The level is derived from expiration state, never stored:
//
//   - LevelNone: anonymous with no live expiration.
//   - LevelUnsafe: known user, expiration absent or past.
//   - LevelNormal: expiration in the future.
//   - LevelCritical: critical expiration in the future.
//
// For a fixed Info and an advancing clock the level only decreases.
//
// # Impersonation
//
// Info carries both the actual operator (ActualUser) and the effective
// identity (User). Impersonate swaps the effective identity only;
// ClearImpersonation restores it. IsImpersonated reports the difference.
//
// # JSON
//
// The JSON shape (keys user, actualUser, exp, cexp, deviceId, and
// name/lastUsed/userId/userName/schemes inside users) is a wire contract
// shared with the client SDK. actualUser is omitted when it equals user.
package authinfo
