package frontauth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/frontauth/core/config"
	"github.com/dmitrymomot/frontauth/core/frontauth"
)

func TestConfig_LoadFromEnvironment(t *testing.T) {
	t.Setenv("FRONTAUTH_COOKIE_NAME", ".myAuth")
	t.Setenv("FRONTAUTH_COOKIE_MODE", "WebFrontPath")
	t.Setenv("FRONTAUTH_COOKIE_SECURE", "Always")
	t.Setenv("FRONTAUTH_EXPIRE_TIMESPAN", "2h")
	t.Setenv("FRONTAUTH_SLIDING_EXPIRATION", "30m")
	t.Setenv("FRONTAUTH_ALLOWED_RETURN_URLS", "https://a.example.com/,https://b.example.com/")

	var cfg frontauth.Config
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, ".myAuth", cfg.AuthCookieName)
	assert.Equal(t, "Authorization", cfg.BearerHeaderName, "default kept")
	assert.Equal(t, frontauth.CookieModeWebFrontPath, cfg.CookieMode)
	assert.Equal(t, frontauth.CookieSecureAlways, cfg.CookieSecurePolicy)
	assert.Equal(t, "/c/", cfg.EntryPath)
	assert.True(t, cfg.UseLongTermCookie)
	assert.Equal(t, 2*time.Hour, cfg.ExpireTimeSpan)
	assert.Equal(t, 30*time.Minute, cfg.SlidingExpirationTime)
	assert.Equal(t, []string{"https://a.example.com/", "https://b.example.com/"}, cfg.AllowedReturnURLs)
}

func TestCookieMode_UnmarshalText(t *testing.T) {
	var m frontauth.CookieMode

	require.NoError(t, m.UnmarshalText([]byte("RootPath")))
	assert.Equal(t, frontauth.CookieModeRootPath, m)
	assert.Equal(t, "RootPath", m.String())

	require.NoError(t, m.UnmarshalText([]byte("None")))
	assert.Equal(t, frontauth.CookieModeNone, m)

	assert.Error(t, m.UnmarshalText([]byte("Sideways")))
}

func TestCookieSecurePolicy_UnmarshalText(t *testing.T) {
	var p frontauth.CookieSecurePolicy

	require.NoError(t, p.UnmarshalText([]byte("SameAsRequest")))
	assert.Equal(t, frontauth.CookieSecureSameAsRequest, p)
	assert.Equal(t, "SameAsRequest", p.String())

	assert.Error(t, p.UnmarshalText([]byte("Maybe")))
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := frontauth.DefaultConfig()

	assert.Equal(t, ".frontAuth", cfg.AuthCookieName)
	assert.Equal(t, frontauth.CookieModeRootPath, cfg.CookieMode)
	assert.Equal(t, frontauth.CookieSecureSameAsRequest, cfg.CookieSecurePolicy)
	assert.Equal(t, 6*time.Hour, cfg.ExpireTimeSpan)
	assert.Equal(t, 365*24*time.Hour, cfg.UnsafeExpireTimeSpan)
	assert.Zero(t, cfg.SlidingExpirationTime, "sliding is opt-in")
}
