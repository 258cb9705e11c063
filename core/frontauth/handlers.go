package frontauth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/core/logger"
)

// BasicLoginHandler authenticates a user name and password through the
// login service. The login service must implement BasicLoginService;
// otherwise every request fails with InternalError.
//
// Request body: {"userName": "...", "password": "...", "rememberMe": bool}.
func (s *Service) BasicLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserName   string `json:"userName"`
			Password   string `json:"password"`
			RememberMe bool   `json:"rememberMe"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeJSON(w, http.StatusBadRequest, AuthResponse{
				ErrorID:   ErrIDInternalError,
				ErrorText: "request body is not valid JSON",
			})
			return
		}

		basic, ok := s.login.(BasicLoginService)
		if !ok {
			s.log.Error("basic login requested but not supported",
				logger.Component("handlers"), logger.Error(ErrBasicLoginNotSupported))
			s.writeJSON(w, http.StatusNotImplemented, AuthResponse{ErrorID: ErrIDInternalError})
			return
		}

		req := LoginRequest{
			Scheme:     "Basic",
			Mode:       ModeDirect,
			RememberMe: body.RememberMe,
		}
		s.UnifiedLogin(w, r, req, func(ctx context.Context, actualLogin bool) (UserLoginResult, error) {
			return basic.BasicLogin(ctx, body.UserName, body.Password, actualLogin)
		})
	}
}

// RefreshHandler returns the current authentication as JSON with a fresh
// bearer token. Sliding expiration happens inside the resolver, so a
// refresh near the expiration threshold also renews the cookies.
// The scheme list is omitted unless ?full is given.
func (s *Service) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		front := s.EnsureAuthenticationInfo(w, r)

		resp := s.authResponse(front)
		if resp.Info != nil && !r.URL.Query().Has("full") {
			trimmed := *resp.Info
			trimmed.User.Schemes = nil
			trimmed.ActualUser.Schemes = nil
			resp.Info = &trimmed
		}
		s.writeJSON(w, http.StatusOK, resp)
	}
}

// LogoutHandler clears both authentication cookies and resets the request
// slot to an anonymous info that keeps the device identity.
func (s *Service) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		front := s.EnsureAuthenticationInfo(w, r)

		s.Logout(w, r)

		out := authinfo.FrontInfo{Info: authinfo.Info{DeviceID: front.Info.DeviceID}}
		s.commit(r, out, sourceNone)
		s.writeJSON(w, http.StatusOK, s.authResponse(out))
	}
}

// TokenHandler returns a bearer token for the current session, for
// clients that authenticate follow-up API calls with the header instead
// of cookies. Requires a live Normal-or-better authentication.
func (s *Service) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		front := s.EnsureAuthenticationInfo(w, r)
		if front.Info.LevelAt(s.now()) < authinfo.LevelNormal {
			s.writeJSON(w, http.StatusUnauthorized, s.authResponse(front))
			return
		}
		s.writeJSON(w, http.StatusOK, s.authResponse(front))
	}
}

// ImpersonateHandler switches the effective user to the requested target,
// subject to the configured ImpersonationService. An anonymous target
// (userId 0) ends the current impersonation instead.
//
// Request body: {"userId": 123, "userName": "..."}.
func (s *Service) ImpersonateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID   int64  `json:"userId"`
			UserName string `json:"userName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeJSON(w, http.StatusBadRequest, AuthResponse{
				ErrorID:   ErrIDInternalError,
				ErrorText: "request body is not valid JSON",
			})
			return
		}

		front := s.EnsureAuthenticationInfo(w, r)
		now := s.now()

		if front.Info.LevelAt(now) < authinfo.LevelNormal {
			s.writeJSON(w, http.StatusUnauthorized, s.authResponse(front))
			return
		}

		if body.UserID == 0 {
			front.Info = front.Info.ClearImpersonation()
			s.commit(r, front, sourceCookie)
			s.SetCookies(w, r, front)
			s.writeJSON(w, http.StatusOK, s.authResponse(front))
			return
		}

		if s.impersonation == nil {
			s.log.Error("impersonation requested but not configured",
				logger.Component("handlers"), logger.Error(ErrImpersonationNotSupported))
			s.writeJSON(w, http.StatusNotImplemented, AuthResponse{ErrorID: ErrIDInternalError})
			return
		}

		target, err := s.impersonation.Impersonate(r.Context(), front.Info.ActualUser, body.UserID, body.UserName)
		if err != nil {
			s.log.Error("impersonation failed",
				logger.Component("handlers"),
				logger.UserID(front.Info.ActualUser.ID),
				logger.Error(err))
			resp := s.authResponse(front)
			resp.ErrorID = errTypeName(err)
			resp.ErrorText = err.Error()
			s.writeJSON(w, http.StatusBadRequest, resp)
			return
		}
		if target == nil {
			resp := s.authResponse(front)
			resp.ErrorID = ErrIDInternalError
			resp.ErrorText = "impersonation denied"
			s.writeJSON(w, http.StatusForbidden, resp)
			return
		}

		front.Info = front.Info.Impersonate(*target)
		s.commit(r, front, sourceCookie)
		s.SetCookies(w, r, front)
		s.writeJSON(w, http.StatusOK, s.authResponse(front))

		s.log.Info("impersonation started",
			logger.Component("handlers"),
			logger.UserID(front.Info.ActualUser.ID),
			logger.DeviceID(front.Info.DeviceID))
	}
}

// LoginHandler runs a scheme login through the login service's payload
// factory: scheme and flow parameters come from the query, the payload
// from the scheme-specific request content.
//
// Query: scheme (required), returnUrl, callerOrigin, rememberMe,
// impersonateActualUser plus any propagated flow properties.
func (s *Service) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		props := s.DecodeProperties(q)

		scheme := q.Get("scheme")
		req := LoginRequest{
			Scheme:                scheme,
			Mode:                  ModeStartLogin,
			ReturnURL:             q.Get("returnUrl"),
			CallerOrigin:          q.Get("callerOrigin"),
			RememberMe:            q.Get("rememberMe") == "true",
			ImpersonateActualUser: q.Get("impersonateActualUser") == "true" || props.ImpersonateActualUser,
			InitialScheme:         props.InitialScheme,
			UserData:              props.UserData,
		}
		if req.ReturnURL == "" {
			req.ReturnURL = props.ReturnURL
		}
		if req.CallerOrigin == "" {
			req.CallerOrigin = props.CallerOrigin
		}
		if req.InitialScheme == "" {
			req.InitialScheme = scheme
		}

		payload, err := s.login.CreatePayload(r, scheme)
		if err != nil {
			s.log.Error("payload creation failed",
				logger.Component("handlers"), logger.Scheme(scheme), logger.Error(err))
			s.writeJSON(w, http.StatusBadRequest, AuthResponse{
				ErrorID:   errTypeName(err),
				ErrorText: err.Error(),
			})
			return
		}

		s.UnifiedLogin(w, r, req, func(ctx context.Context, actualLogin bool) (UserLoginResult, error) {
			return s.login.Login(ctx, scheme, payload, actualLogin)
		})
	}
}
