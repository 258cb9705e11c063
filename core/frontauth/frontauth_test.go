package frontauth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/core/envelope"
	"github.com/dmitrymomot/frontauth/core/frontauth"
	"github.com/dmitrymomot/frontauth/pkg/protector"
)

const (
	testSecret     = "test-secret-0123456789abcdef0123456789"
	cookieName     = ".frontAuth"
	longTermCookie = ".frontAuthLT"
	testDevice     = "AAAAAAAAAAAAAAAAAAAAAA"
)

var (
	now   = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	alice = authinfo.UserInfo{ID: 7, Name: "alice"}
	bob   = authinfo.UserInfo{ID: 8, Name: "bob"}
)

// fakeLogin is a scriptable LoginService.
type fakeLogin struct {
	payloadErr error
	loginFn    func(ctx context.Context, scheme string, payload any, actualLogin bool) (frontauth.UserLoginResult, error)
	calls      []bool // actualLogin flag per Login call
}

func (f *fakeLogin) CreatePayload(r *http.Request, scheme string) (any, error) {
	if f.payloadErr != nil {
		return nil, f.payloadErr
	}
	return scheme, nil
}

func (f *fakeLogin) Login(ctx context.Context, scheme string, payload any, actualLogin bool) (frontauth.UserLoginResult, error) {
	f.calls = append(f.calls, actualLogin)
	return f.loginFn(ctx, scheme, payload, actualLogin)
}

// fakeBasicLogin adds the BasicLoginService capability.
type fakeBasicLogin struct {
	fakeLogin
	basicFn func(ctx context.Context, userName, password string, actualLogin bool) (frontauth.UserLoginResult, error)
}

func (f *fakeBasicLogin) BasicLogin(ctx context.Context, userName, password string, actualLogin bool) (frontauth.UserLoginResult, error) {
	return f.basicFn(ctx, userName, password, actualLogin)
}

func succeedWith(user authinfo.UserInfo) func(context.Context, string, any, bool) (frontauth.UserLoginResult, error) {
	return func(context.Context, string, any, bool) (frontauth.UserLoginResult, error) {
		u := user
		return frontauth.UserLoginResult{UserInfo: &u}, nil
	}
}

func failWith(code int, reason string) func(context.Context, string, any, bool) (frontauth.UserLoginResult, error) {
	return func(context.Context, string, any, bool) (frontauth.UserLoginResult, error) {
		return frontauth.UserLoginResult{FailureCode: code, FailureReason: reason}, nil
	}
}

func testConfig() frontauth.Config {
	cfg := frontauth.DefaultConfig()
	cfg.AllowedReturnURLs = []string{"https://app.example.com/"}
	return cfg
}

func newTestService(t *testing.T, cfg frontauth.Config, login frontauth.LoginService, opts ...frontauth.Option) (*frontauth.Service, *envelope.Codec) {
	t.Helper()

	root, err := protector.New([]string{testSecret})
	require.NoError(t, err)
	codec := envelope.NewCodec(root)

	base := []frontauth.Option{
		frontauth.WithClock(func() time.Time { return now }),
		frontauth.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	svc, err := frontauth.New(codec, login, cfg, append(base, opts...)...)
	require.NoError(t, err)
	return svc, codec
}

// resolveOnce runs one resolution through the middleware and reports the
// resolved info plus everything written to the response.
func resolveOnce(svc *frontauth.Service, r *http.Request) (authinfo.FrontInfo, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var front authinfo.FrontInfo
	svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		front = svc.EnsureAuthenticationInfo(w, r)
	})).ServeHTTP(w, r)
	return front, w
}

// sessionCookie builds a valid protected session cookie for the request.
func sessionCookie(t *testing.T, codec *envelope.Codec, front authinfo.FrontInfo) *http.Cookie {
	t.Helper()
	value, err := codec.ProtectCookie(front)
	require.NoError(t, err)
	return &http.Cookie{Name: cookieName, Value: value}
}

// responseCookie returns the last Set-Cookie entry with the given name,
// or nil when absent.
func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func normalFront(user authinfo.UserInfo, rememberMe bool) authinfo.FrontInfo {
	return authinfo.FrontInfo{
		Info:       authinfo.New(user, now.Add(time.Hour), time.Time{}, testDevice),
		RememberMe: rememberMe,
	}
}
