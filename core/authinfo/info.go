package authinfo

import (
	"time"
)

// Level is the authentication level derived from expiration state.
type Level int

const (
	// LevelNone means no authentication at all.
	LevelNone Level = iota
	// LevelUnsafe means a known user without a live expiration (e.g.
	// restored from the long-term cookie). Good enough for personalization,
	// not for anything sensitive.
	LevelUnsafe
	// LevelNormal means an authenticated user with a live expiration.
	LevelNormal
	// LevelCritical means an elevated authentication with its own shorter
	// expiration, used for high-value operations.
	LevelCritical
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelUnsafe:
		return "Unsafe"
	case LevelNormal:
		return "Normal"
	case LevelCritical:
		return "Critical"
	default:
		return "None"
	}
}

// Info is an immutable authentication snapshot. The zero value is the
// distinguished None info: anonymous, no expiration, no device id.
// All mutations return new instances, making the type trivially safe to
// share across goroutines.
type Info struct {
	// ActualUser is the real operator.
	ActualUser UserInfo

	// User is the effective identity. Equals ActualUser unless impersonated.
	User UserInfo

	// Expires is the authentication expiration. Zero means none.
	Expires time.Time

	// CriticalExpires is the critical-level expiration.
	// When set, never exceeds Expires.
	CriticalExpires time.Time

	// DeviceID is the per-browser stable identifier.
	// Empty only for the distinguished None value.
	DeviceID string
}

// None is the distinguished empty authentication info.
var None = Info{}

// New creates an authentication info for the given user.
// Timestamps are normalized to UTC millisecond precision so the binary
// envelope roundtrip is lossless. A critical expiration without a regular
// one raises Expires to match; a critical expiration beyond Expires is
// clamped down to it.
func New(user UserInfo, expires, criticalExpires time.Time, deviceID string) Info {
	expires = normalize(expires)
	criticalExpires = normalize(criticalExpires)

	if !criticalExpires.IsZero() {
		if expires.IsZero() {
			expires = criticalExpires
		} else if criticalExpires.After(expires) {
			criticalExpires = expires
		}
	}

	return Info{
		ActualUser:      user,
		User:            user,
		Expires:         expires,
		CriticalExpires: criticalExpires,
		DeviceID:        deviceID,
	}
}

// LevelAt derives the authentication level at the given instant.
func (a Info) LevelAt(now time.Time) Level {
	switch {
	case a.CriticalExpires.After(now):
		return LevelCritical
	case a.Expires.After(now):
		return LevelNormal
	case !a.ActualUser.IsAnonymous():
		return LevelUnsafe
	default:
		return LevelNone
	}
}

// Level derives the authentication level now.
func (a Info) Level() Level {
	return a.LevelAt(time.Now())
}

// IsImpersonated returns true when the effective user differs from the
// actual one.
func (a Info) IsImpersonated() bool {
	return !a.User.Equal(a.ActualUser)
}

// SetExpires returns a copy with the expiration replaced. A zero t clears
// both expirations; CriticalExpires is clamped so it never exceeds the new
// Expires.
func (a Info) SetExpires(t time.Time) Info {
	a.Expires = normalize(t)
	if a.Expires.IsZero() || a.CriticalExpires.After(a.Expires) {
		if a.Expires.IsZero() {
			a.CriticalExpires = time.Time{}
		} else {
			a.CriticalExpires = a.Expires
		}
	}
	return a
}

// SetCriticalExpires returns a copy with the critical expiration replaced.
// A non-zero value without a regular expiration raises Expires to match;
// a value beyond Expires is clamped down to it.
func (a Info) SetCriticalExpires(t time.Time) Info {
	a.CriticalExpires = normalize(t)
	if !a.CriticalExpires.IsZero() {
		if a.Expires.IsZero() {
			a.Expires = a.CriticalExpires
		} else if a.CriticalExpires.After(a.Expires) {
			a.CriticalExpires = a.Expires
		}
	}
	return a
}

// Impersonate returns a copy whose effective user is other.
// ActualUser is unchanged.
func (a Info) Impersonate(other UserInfo) Info {
	a.User = other
	return a
}

// ClearImpersonation returns a copy whose effective user is the actual one.
func (a Info) ClearImpersonation() Info {
	a.User = a.ActualUser
	return a
}

// CheckExpiration returns a copy with stale timestamps cleared, possibly
// demoting the level. For a fixed info and a monotonically advancing clock
// the level only decreases.
func (a Info) CheckExpiration(now time.Time) Info {
	if !a.CriticalExpires.IsZero() && !a.CriticalExpires.After(now) {
		a.CriticalExpires = time.Time{}
	}
	if !a.Expires.IsZero() && !a.Expires.After(now) {
		a.Expires = time.Time{}
		a.CriticalExpires = time.Time{}
	}
	return a
}

// normalize truncates to millisecond precision in UTC, keeping zero zero.
func normalize(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Millisecond)
}

// FrontInfo pairs an authentication info with the remember-me choice.
// RememberMe controls whether the session cookie persists across browser
// restarts and whether the long-term cookie keeps the user identity in
// addition to the device identity.
type FrontInfo struct {
	Info       Info
	RememberMe bool
}
