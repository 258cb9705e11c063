package frontauth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/core/cookie"
	"github.com/dmitrymomot/frontauth/core/logger"
)

// SetCookies updates both authentication cookies to reflect front.
// A cookie whose emission precondition fails is explicitly cleared with
// matching attributes so the browser discards it.
func (s *Service) SetCookies(w http.ResponseWriter, r *http.Request, front authinfo.FrontInfo) {
	opts := s.options()
	now := s.now()

	s.setLongTermCookie(w, front, opts, now)
	s.setSessionCookie(w, r, front, now)
}

// Logout clears both authentication cookies. The request slot is left
// untouched; callers decide whether to reset it.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	s.clearLongTermCookie(w)
	s.clearSessionCookie(w, r)
}

// setLongTermCookie emits the plaintext device + unsafe-user cookie.
// Emitted when remembering a real user or when a device id exists.
func (s *Service) setLongTermCookie(w http.ResponseWriter, front authinfo.FrontInfo, opts DynamicOptions, now time.Time) {
	info := front.Info
	remember := front.RememberMe && info.ActualUser.ID != 0

	if !opts.UseLongTermCookie || (!remember && info.DeviceID == "") {
		s.clearLongTermCookie(w)
		return
	}

	var p longTermPayload
	if remember {
		p.UserID = info.ActualUser.ID
		p.UserName = info.ActualUser.Name
		p.Schemes = info.ActualUser.Schemes
	}
	if info.DeviceID != "" {
		p.DeviceID = info.DeviceID
	}

	raw, err := json.Marshal(p)
	if err != nil {
		s.log.Error("long-term cookie marshal failed",
			logger.Component("cookies"), logger.Error(err))
		return
	}

	err = s.cookies.Set(w, s.longTermName(), url.QueryEscape(string(raw)),
		cookie.WithPath(s.cookiePath()),
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(false),
		cookie.WithExpires(now.Add(opts.UnsafeExpireTimeSpan)),
	)
	if err != nil {
		s.log.Error("long-term cookie write failed",
			logger.Component("cookies"), logger.Error(err))
	}
}

// setSessionCookie emits the protected envelope cookie.
// Emitted only for a live Normal-or-better authentication.
func (s *Service) setSessionCookie(w http.ResponseWriter, r *http.Request, front authinfo.FrontInfo, now time.Time) {
	if s.cookieMode == CookieModeNone {
		return
	}
	if front.Info.LevelAt(now) < authinfo.LevelNormal {
		s.clearSessionCookie(w, r)
		return
	}

	value, err := s.codec.ProtectCookie(front)
	if err != nil {
		s.log.Error("session cookie protect failed",
			logger.Component("cookies"), logger.Error(err))
		return
	}

	opts := []cookie.Option{
		cookie.WithPath(s.cookiePath()),
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(s.secureFlag(r)),
		cookie.WithEssential(),
	}
	// Without remember-me the cookie is session-scoped: no Expires, the
	// browser drops it on close while the envelope itself still expires.
	if front.RememberMe {
		opts = append(opts, cookie.WithExpires(front.Info.Expires))
	}

	if err := s.cookies.Set(w, s.cookieName, value, opts...); err != nil {
		s.log.Error("session cookie write failed",
			logger.Component("cookies"), logger.Error(err))
	}
}

func (s *Service) clearLongTermCookie(w http.ResponseWriter) {
	s.cookies.Delete(w, s.longTermName(),
		cookie.WithPath(s.cookiePath()),
		cookie.WithSecure(false),
	)
}

func (s *Service) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	if s.cookieMode == CookieModeNone {
		return
	}
	s.cookies.Delete(w, s.cookieName,
		cookie.WithPath(s.cookiePath()),
		cookie.WithSecure(s.secureFlag(r)),
	)
}

// secureFlag resolves the Secure attribute per the configured policy.
func (s *Service) secureFlag(r *http.Request) bool {
	switch s.securePolicy {
	case CookieSecureAlways:
		return true
	case CookieSecureSameAsRequest:
		return r != nil && r.TLS != nil
	default:
		return false
	}
}
