package frontauth

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/core/envelope"
	"github.com/dmitrymomot/frontauth/core/logger"
	"github.com/dmitrymomot/frontauth/pkg/deviceid"
)

// LoginMode distinguishes direct API logins from redirect-based flows.
type LoginMode int

const (
	// ModeDirect is an API login (basic, refresh, token exchange): the
	// response is plain JSON and no return target is required.
	ModeDirect LoginMode = iota
	// ModeStartLogin is a redirect-based flow: exactly one of returnUrl
	// and callerOrigin must be provided.
	ModeStartLogin
)

// LoginRequest carries the parameters of one login attempt.
type LoginRequest struct {
	Scheme                string
	Mode                  LoginMode
	ReturnURL             string
	CallerOrigin          string
	RememberMe            bool
	ImpersonateActualUser bool
	InitialScheme         string
	UserData              envelope.Extra
}

// LoginContext is the mutable state of one login attempt, handed to the
// validator and the auto-bind / auto-create services. It lives on the
// handling goroutine only.
type LoginContext struct {
	Scheme                string
	Mode                  LoginMode
	ReturnURL             string
	CallerOrigin          string
	RememberMe            bool
	ImpersonateActualUser bool
	InitialScheme         string
	UserData              envelope.Extra

	// Initial is the authentication resolved at the start of the request.
	Initial authinfo.FrontInfo

	// Result is the backend outcome of the dry-run call, available to the
	// validator.
	Result UserLoginResult

	errID   string
	errText string
	failure *UserLoginResult
}

// SetError records a client-facing error. The first error wins; later
// calls are ignored so services cannot mask the original cause.
func (lc *LoginContext) SetError(id, text string) {
	if lc.errID != "" {
		return
	}
	lc.errID = id
	lc.errText = text
}

// HasError reports whether an error was recorded.
func (lc *LoginContext) HasError() bool {
	return lc.errID != ""
}

// LoginFn wraps one backend login attempt. It is invoked with
// actualLogin=false for the dry run (validator configured) and
// actualLogin=true to commit.
type LoginFn func(ctx context.Context, actualLogin bool) (UserLoginResult, error)

// UnifiedLogin runs the login state machine for every login-producing
// path: validate parameters, call the backend (dry run when a validator
// exists), consult the validator, fall back to auto-bind or auto-create
// on unregistered users, then commit the new authentication, update the
// cookies and write the response.
//
// The backend, validator and auto services are the only suspension
// points; no lock is held across them, and request cancellation
// propagates through the context.
func (s *Service) UnifiedLogin(w http.ResponseWriter, r *http.Request, req LoginRequest, loginFn LoginFn) {
	initial := s.EnsureAuthenticationInfo(w, r)

	lc := &LoginContext{
		Scheme:                req.Scheme,
		Mode:                  req.Mode,
		ReturnURL:             req.ReturnURL,
		CallerOrigin:          req.CallerOrigin,
		RememberMe:            req.RememberMe,
		ImpersonateActualUser: req.ImpersonateActualUser,
		InitialScheme:         req.InitialScheme,
		UserData:              req.UserData,
		Initial:               initial,
	}

	// Parameter validation short-circuits without touching the current
	// authentication.
	if !s.validateCoreParameters(lc) {
		s.writeError(w, r, lc, initial)
		return
	}

	ctx := r.Context()

	u, ok := s.safeCallLogin(ctx, lc, loginFn, s.validator == nil)
	if !ok {
		s.failLogin(w, r, lc, initial)
		return
	}

	if u.IsSuccess() && s.validator != nil {
		lc.Result = u
		if err := s.validator.ValidateLogin(ctx, lc); err != nil {
			lc.SetError(errTypeName(err), err.Error())
		}
		if lc.HasError() {
			s.failLogin(w, r, lc, initial)
			return
		}
		// Approved: commit with the real login.
		if u, ok = s.safeCallLogin(ctx, lc, loginFn, true); !ok {
			s.failLogin(w, r, lc, initial)
			return
		}
	}

	if !u.IsSuccess() {
		u = s.handleLoginFailure(ctx, lc, initial, u)
		if lc.HasError() || !u.IsSuccess() {
			if !u.IsSuccess() && lc.failure == nil && !lc.HasError() {
				lc.failure = &u
			}
			s.failLogin(w, r, lc, initial)
			return
		}
	}

	s.commitSuccess(w, r, lc, initial, u)
}

// validateCoreParameters applies the request-level rules. It records at
// most one error on the context and reports overall validity.
func (s *Service) validateCoreParameters(lc *LoginContext) bool {
	// Only start-login flows require a response target; direct logins may
	// carry any combination, including both (returnUrl wins on write).
	if lc.Mode == ModeStartLogin {
		if (lc.ReturnURL == "") == (lc.CallerOrigin == "") {
			lc.SetError(ErrIDReturnXOrCaller,
				"One and only one of returnUrl and callerOrigin must be provided.")
		}
	}

	if lc.Initial.Info.IsImpersonated() && !lc.ImpersonateActualUser {
		lc.SetError(ErrIDLoginWhileImpersonation,
			"Login is not allowed while impersonating.")
	}

	if lc.ReturnURL != "" && !s.isAllowedReturnURL(lc.ReturnURL) {
		lc.SetError(ErrIDDisallowedReturnUrl, "")
	}

	return !lc.HasError()
}

// isAllowedReturnURL requires an exact ordinal prefix match against the
// configured list. No normalization on purpose: the list is trusted
// configuration, the url is not.
func (s *Service) isAllowedReturnURL(u string) bool {
	for _, prefix := range s.allowedReturnURLs {
		if strings.HasPrefix(u, prefix) {
			return true
		}
	}
	return false
}

// safeCallLogin invokes the backend, converting panics and errors into
// context errors and enforcing the backend contract: a result must carry
// a user or failure information.
func (s *Service) safeCallLogin(ctx context.Context, lc *LoginContext, loginFn LoginFn, actualLogin bool) (UserLoginResult, bool) {
	u, err := func() (u UserLoginResult, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("login backend panic: %v", rec)
			}
		}()
		return loginFn(ctx, actualLogin)
	}()

	if err != nil {
		s.log.Error("login backend failed",
			logger.Component("login"), logger.Scheme(lc.Scheme), logger.Error(err))
		lc.SetError(errTypeName(err), err.Error())
		return UserLoginResult{}, false
	}

	if !u.IsSuccess() && !u.IsUnregistered && u.FailureCode == 0 && u.FailureReason == "" {
		s.log.Error("login backend returned no outcome",
			logger.Component("login"), logger.Scheme(lc.Scheme))
		lc.SetError(ErrIDInternalError, "")
		return UserLoginResult{}, false
	}

	return u, true
}

// handleLoginFailure runs the failure branches: impersonation propagates
// as-is, unregistered users go through auto-bind (someone logged in) or
// auto-create (nobody logged in), everything else is a plain failure.
func (s *Service) handleLoginFailure(ctx context.Context, lc *LoginContext, initial authinfo.FrontInfo, u UserLoginResult) UserLoginResult {
	if lc.ImpersonateActualUser || !u.IsUnregistered {
		lc.failure = &u
		return u
	}

	if initial.Info.User.ID != 0 {
		if s.autoBind == nil {
			lc.SetError(ErrIDAutoBindingDisabled, "")
			return u
		}
		return s.callAutoService(ctx, lc, u, ErrIDAutoBindingDisabled, s.autoBind.BindAccount)
	}

	if s.autoCreate == nil {
		lc.SetError(ErrIDAutoRegistrationDisabled, "")
		return u
	}
	return s.callAutoService(ctx, lc, u, ErrIDAutoRegistrationDisabled, s.autoCreate.CreateAccountAndLogin)
}

// callAutoService applies the shared null/non-null semantics of the auto
// services: nil result means not handled, a failed result becomes the
// error, a successful result replaces the backend outcome.
func (s *Service) callAutoService(
	ctx context.Context,
	lc *LoginContext,
	u UserLoginResult,
	disabledID string,
	call func(context.Context, *LoginContext) (*UserLoginResult, error),
) UserLoginResult {
	res, err := call(ctx, lc)
	if err != nil {
		s.log.Error("auto service failed",
			logger.Component("login"), logger.Scheme(lc.Scheme), logger.Error(err))
		lc.SetError(errTypeName(err), err.Error())
		return u
	}
	if res == nil {
		lc.SetError(disabledID, "")
		return u
	}
	if !res.IsSuccess() {
		lc.failure = res
	}
	return *res
}

// commitSuccess builds the new authentication, writes the request slot
// and the cookies, then responds.
func (s *Service) commitSuccess(w http.ResponseWriter, r *http.Request, lc *LoginContext, initial authinfo.FrontInfo, u UserLoginResult) {
	opts := s.options()
	now := s.now()

	deviceID := initial.Info.DeviceID
	if deviceID == "" {
		id, err := deviceid.New()
		if err != nil {
			s.log.Error("device id generation failed",
				logger.Component("login"), logger.Error(err))
		} else {
			deviceID = id
		}
	}

	expires := now.Add(opts.ExpireTimeSpan)
	var criticalExpires time.Time
	if span := opts.SchemesCriticalTimeSpan[lc.Scheme]; span > 0 {
		criticalExpires = now.Add(span)
		if expires.Before(criticalExpires) {
			expires = criticalExpires
		}
	}

	var info authinfo.Info
	if initial.Info.ActualUser.ID != 0 && u.UserInfo.ID != 0 && initial.Info.ActualUser.ID != u.UserInfo.ID {
		// Logging in as a distinct user while authenticated is an
		// impersonation: keep the initial identity, swap the effective
		// user.
		// TODO: apply the scheme critical time span to criticalExpires on
		// this path too; today it only raises expires.
		info = initial.Info.Impersonate(*u.UserInfo).SetExpires(expires)
	} else {
		user := u.UserInfo.WithSchemeUsed(lc.Scheme, now)
		info = authinfo.New(user, expires, criticalExpires, deviceID)
	}

	front := authinfo.FrontInfo{Info: info, RememberMe: lc.RememberMe}
	s.commit(r, front, sourceCookie)
	s.SetCookies(w, r, front)
	s.writeSuccess(w, r, lc, front)

	s.log.Info("login succeeded",
		logger.Component("login"),
		logger.Scheme(lc.Scheme),
		logger.UserID(info.User.ID),
		logger.DeviceID(info.DeviceID),
		logger.Level(info.LevelAt(now).String()))
}

// failLogin discards the current authentication, keeping only the device
// identity, so callers are never misled by residual state.
func (s *Service) failLogin(w http.ResponseWriter, r *http.Request, lc *LoginContext, initial authinfo.FrontInfo) {
	front := authinfo.FrontInfo{Info: authinfo.Info{DeviceID: initial.Info.DeviceID}}
	s.commit(r, front, sourceNone)
	s.SetCookies(w, r, front)
	s.writeError(w, r, lc, front)

	s.log.Info("login failed",
		logger.Component("login"),
		logger.Scheme(lc.Scheme),
		logger.ErrorID(lc.errID),
		logger.DeviceID(front.Info.DeviceID))
}

// errTypeName reports the concrete error type for client-facing errorIds.
func errTypeName(err error) string {
	t := reflect.TypeOf(err)
	if t == nil {
		return ErrIDInternalError
	}
	return strings.TrimPrefix(t.String(), "*")
}
