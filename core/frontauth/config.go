package frontauth

import (
	"fmt"
	"time"
)

// CookieMode controls where authentication cookies live.
type CookieMode int

const (
	// CookieModeNone disables authentication cookies entirely
	// (bearer-token-only deployments).
	CookieModeNone CookieMode = iota
	// CookieModeRootPath scopes cookies to "/" so every request carries them.
	CookieModeRootPath
	// CookieModeWebFrontPath scopes cookies to the entry path (default
	// "/c/") so only authentication endpoints see them.
	CookieModeWebFrontPath
)

// String returns the mode name.
func (m CookieMode) String() string {
	switch m {
	case CookieModeRootPath:
		return "RootPath"
	case CookieModeWebFrontPath:
		return "WebFrontPath"
	default:
		return "None"
	}
}

// UnmarshalText parses a mode name, enabling env-based configuration.
func (m *CookieMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "None", "":
		*m = CookieModeNone
	case "RootPath":
		*m = CookieModeRootPath
	case "WebFrontPath":
		*m = CookieModeWebFrontPath
	default:
		return fmt.Errorf("unknown cookie mode %q", text)
	}
	return nil
}

// CookieSecurePolicy controls the Secure attribute of the session cookie.
type CookieSecurePolicy int

const (
	// CookieSecureNone never sets the Secure attribute.
	CookieSecureNone CookieSecurePolicy = iota
	// CookieSecureAlways always sets the Secure attribute.
	CookieSecureAlways
	// CookieSecureSameAsRequest mirrors the request scheme.
	CookieSecureSameAsRequest
)

// String returns the policy name.
func (p CookieSecurePolicy) String() string {
	switch p {
	case CookieSecureAlways:
		return "Always"
	case CookieSecureSameAsRequest:
		return "SameAsRequest"
	default:
		return "None"
	}
}

// UnmarshalText parses a policy name, enabling env-based configuration.
func (p *CookieSecurePolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "None", "":
		*p = CookieSecureNone
	case "Always":
		*p = CookieSecureAlways
	case "SameAsRequest":
		*p = CookieSecureSameAsRequest
	default:
		return fmt.Errorf("unknown cookie secure policy %q", text)
	}
	return nil
}

// Config provides environment-based configuration for the service.
//
// Startup-fixed settings (cookie name, bearer header, cookie mode, secure
// policy, entry path, allowed return urls) are captured at construction
// and never re-read. The remaining settings are dynamic: they seed the
// default options provider and may be hot-reloaded through
// WithOptionsProvider.
type Config struct {
	// AuthCookieName is the session cookie name. The long-term cookie is
	// this name with the "LT" suffix.
	AuthCookieName string `env:"FRONTAUTH_COOKIE_NAME" envDefault:".frontAuth"`

	// BearerHeaderName is the header carrying the bearer envelope.
	BearerHeaderName string `env:"FRONTAUTH_BEARER_HEADER" envDefault:"Authorization"`

	CookieMode         CookieMode         `env:"FRONTAUTH_COOKIE_MODE" envDefault:"RootPath"`
	CookieSecurePolicy CookieSecurePolicy `env:"FRONTAUTH_COOKIE_SECURE" envDefault:"SameAsRequest"`

	// EntryPath scopes cookies in WebFrontPath mode and gates device-id
	// synthesis there.
	EntryPath string `env:"FRONTAUTH_ENTRY_PATH" envDefault:"/c/"`

	// UseLongTermCookie enables the plaintext long-term (device + unsafe
	// user) cookie.
	UseLongTermCookie bool `env:"FRONTAUTH_USE_LONG_TERM_COOKIE" envDefault:"true"`

	// ExpireTimeSpan is the lifetime of a fresh authentication.
	ExpireTimeSpan time.Duration `env:"FRONTAUTH_EXPIRE_TIMESPAN" envDefault:"6h"`

	// UnsafeExpireTimeSpan is the lifetime of the long-term cookie.
	UnsafeExpireTimeSpan time.Duration `env:"FRONTAUTH_UNSAFE_EXPIRE_TIMESPAN" envDefault:"8760h"`

	// SlidingExpirationTime enables sliding renewal when positive.
	SlidingExpirationTime time.Duration `env:"FRONTAUTH_SLIDING_EXPIRATION" envDefault:"0"`

	// AllowedReturnURLs lists the allowed returnUrl prefixes
	// (exact ordinal prefix match).
	AllowedReturnURLs []string `env:"FRONTAUTH_ALLOWED_RETURN_URLS" envSeparator:","`

	// SchemesCriticalTimeSpan maps scheme names to critical-level
	// lifetimes. Code-level only, no env form.
	SchemesCriticalTimeSpan map[string]time.Duration `env:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AuthCookieName:       ".frontAuth",
		BearerHeaderName:     "Authorization",
		CookieMode:           CookieModeRootPath,
		CookieSecurePolicy:   CookieSecureSameAsRequest,
		EntryPath:            "/c/",
		UseLongTermCookie:    true,
		ExpireTimeSpan:       6 * time.Hour,
		UnsafeExpireTimeSpan: 365 * 24 * time.Hour,
	}
}

// DynamicOptions are the settings re-read on each operation.
type DynamicOptions struct {
	ExpireTimeSpan          time.Duration
	SlidingExpirationTime   time.Duration
	UnsafeExpireTimeSpan    time.Duration
	UseLongTermCookie       bool
	SchemesCriticalTimeSpan map[string]time.Duration
}

// OptionsProvider supplies the dynamic options for one operation.
// Implementations must be safe for concurrent use; a provider backed by a
// monitored configuration source enables hot reload without restarting.
type OptionsProvider func() DynamicOptions

func (c Config) dynamicOptions() DynamicOptions {
	return DynamicOptions{
		ExpireTimeSpan:          c.ExpireTimeSpan,
		SlidingExpirationTime:   c.SlidingExpirationTime,
		UnsafeExpireTimeSpan:    c.UnsafeExpireTimeSpan,
		UseLongTermCookie:       c.UseLongTermCookie,
		SchemesCriticalTimeSpan: c.SchemesCriticalTimeSpan,
	}
}
