package frontauth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/core/frontauth"
)

func setCookies(svc *frontauth.Service, front authinfo.FrontInfo) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	svc.SetCookies(w, httptest.NewRequest(http.MethodGet, "/", nil), front)
	return w
}

func longTermJSON(t *testing.T, c *http.Cookie) map[string]any {
	t.Helper()
	raw, err := url.QueryUnescape(c.Value)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

// Long-term cookie tests

func TestSetCookies_RememberedUserInLongTerm(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), &fakeLogin{loginFn: succeedWith(alice)})

	user := authinfo.UserInfo{ID: 7, Name: "alice", Schemes: []authinfo.Scheme{{Name: "Basic", LastUsed: now}}}
	w := setCookies(svc, authinfo.FrontInfo{
		Info:       authinfo.New(user, now.Add(time.Hour), time.Time{}, testDevice),
		RememberMe: true,
	})

	lt := responseCookie(w, longTermCookie)
	require.NotNil(t, lt)
	assert.True(t, lt.HttpOnly)
	assert.False(t, lt.Secure, "long-term cookie is deliberately not Secure")
	assert.WithinDuration(t, now.Add(365*24*time.Hour), lt.Expires, time.Minute)

	payload := longTermJSON(t, lt)
	assert.Equal(t, float64(7), payload["userId"])
	assert.Equal(t, "alice", payload["userName"])
	assert.Equal(t, testDevice, payload["deviceId"])
	require.Contains(t, payload, "schemes")
}

func TestSetCookies_NoRememberKeepsDeviceOnly(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), &fakeLogin{loginFn: succeedWith(alice)})

	w := setCookies(svc, normalFront(alice, false))

	lt := responseCookie(w, longTermCookie)
	require.NotNil(t, lt)
	payload := longTermJSON(t, lt)
	assert.NotContains(t, payload, "userId", "without remember-me no identity leaks into plaintext")
	assert.Equal(t, testDevice, payload["deviceId"])
}

func TestSetCookies_ImpersonationStoresActualUser(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), &fakeLogin{loginFn: succeedWith(alice)})

	w := setCookies(svc, authinfo.FrontInfo{
		Info:       authinfo.New(alice, now.Add(time.Hour), time.Time{}, testDevice).Impersonate(bob),
		RememberMe: true,
	})

	payload := longTermJSON(t, responseCookie(w, longTermCookie))
	assert.Equal(t, float64(7), payload["userId"], "the long-term cookie records the operator, not the impersonated user")
}

func TestSetCookies_LongTermDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.UseLongTermCookie = false
	svc, _ := newTestService(t, cfg, &fakeLogin{loginFn: succeedWith(alice)})

	w := setCookies(svc, normalFront(alice, true))

	lt := responseCookie(w, longTermCookie)
	require.NotNil(t, lt)
	assert.Equal(t, -1, lt.MaxAge, "disabled long-term cookie is actively cleared")
}

// Session cookie tests

func TestSetCookies_SessionCookieAttributes(t *testing.T) {
	svc, codec := newTestService(t, testConfig(), &fakeLogin{loginFn: succeedWith(alice)})

	w := setCookies(svc, normalFront(alice, true))

	session := responseCookie(w, cookieName)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, "/", session.Path)
	assert.False(t, session.Expires.IsZero())

	back, err := codec.UnprotectCookie(session.Value)
	require.NoError(t, err)
	assert.Equal(t, alice, back.Info.User)
}

func TestSetCookies_SessionScopedWithoutRemember(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), &fakeLogin{loginFn: succeedWith(alice)})

	w := setCookies(svc, normalFront(alice, false))

	session := responseCookie(w, cookieName)
	require.NotNil(t, session)
	assert.True(t, session.Expires.IsZero(), "session-scoped cookie has no Expires")
	assert.Equal(t, 0, session.MaxAge)
}

func TestSetCookies_BelowNormalClearsSession(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), &fakeLogin{loginFn: succeedWith(alice)})

	// Unsafe-level info: identity without live expiration.
	w := setCookies(svc, authinfo.FrontInfo{
		Info: authinfo.New(alice, time.Time{}, time.Time{}, testDevice),
	})

	session := responseCookie(w, cookieName)
	require.NotNil(t, session)
	assert.Equal(t, -1, session.MaxAge)
}

func TestSetCookies_WebFrontPathScope(t *testing.T) {
	cfg := testConfig()
	cfg.CookieMode = frontauth.CookieModeWebFrontPath
	svc, _ := newTestService(t, cfg, &fakeLogin{loginFn: succeedWith(alice)})

	w := setCookies(svc, normalFront(alice, true))

	assert.Equal(t, "/c/", responseCookie(w, cookieName).Path)
	assert.Equal(t, "/c/", responseCookie(w, longTermCookie).Path)
}

func TestSetCookies_SecureAlways(t *testing.T) {
	cfg := testConfig()
	cfg.CookieSecurePolicy = frontauth.CookieSecureAlways
	svc, _ := newTestService(t, cfg, &fakeLogin{loginFn: succeedWith(alice)})

	w := setCookies(svc, normalFront(alice, true))

	assert.True(t, responseCookie(w, cookieName).Secure)
	assert.False(t, responseCookie(w, longTermCookie).Secure, "long-term stays non-Secure even under Always")
}

// Logout tests

func TestLogout_ClearsBothCookies(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), &fakeLogin{loginFn: succeedWith(alice)})

	w := httptest.NewRecorder()
	svc.Logout(w, httptest.NewRequest(http.MethodPost, "/", nil))

	session := responseCookie(w, cookieName)
	require.NotNil(t, session)
	assert.Equal(t, -1, session.MaxAge)

	lt := responseCookie(w, longTermCookie)
	require.NotNil(t, lt)
	assert.Equal(t, -1, lt.MaxAge)
}

// Constructor tests

func TestNew_RequiresCodecAndLogin(t *testing.T) {
	_, err := frontauth.New(nil, &fakeLogin{}, testConfig())
	assert.ErrorIs(t, err, frontauth.ErrNilCodec)

	_, codec := newTestService(t, testConfig(), &fakeLogin{loginFn: succeedWith(alice)})
	_, err = frontauth.New(codec, nil, testConfig())
	assert.ErrorIs(t, err, frontauth.ErrNilLoginService)
}

// Dynamic options tests

func TestOptionsProvider_HotReload(t *testing.T) {
	cfg := testConfig()
	expire := 6 * time.Hour
	provider := func() frontauth.DynamicOptions {
		return frontauth.DynamicOptions{
			ExpireTimeSpan:       expire,
			UnsafeExpireTimeSpan: cfg.UnsafeExpireTimeSpan,
			UseLongTermCookie:    true,
		}
	}
	svc, _ := newTestService(t, cfg, &fakeLogin{loginFn: succeedWith(alice)},
		frontauth.WithOptionsProvider(provider))

	r := httptest.NewRequest(http.MethodPost, "/c/login", nil)
	_, after := runLogin(svc, r, frontauth.LoginRequest{Scheme: "Basic"}, directLogin(alice))
	assert.Equal(t, now.Add(6*time.Hour), after.Info.Expires)

	// Change the provider's answer: the next operation sees it, no restart.
	expire = 2 * time.Hour
	r = httptest.NewRequest(http.MethodPost, "/c/login", nil)
	_, after = runLogin(svc, r, frontauth.LoginRequest{Scheme: "Basic"}, directLogin(alice))
	assert.Equal(t, now.Add(2*time.Hour), after.Info.Expires)
}
