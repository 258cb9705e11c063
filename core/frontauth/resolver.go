package frontauth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/core/logger"
	"github.com/dmitrymomot/frontauth/pkg/deviceid"
)

const bearerPrefix = "Bearer "

// EnsureAuthenticationInfo resolves the caller's authentication for this
// request. Resolution order: bearer header, session cookie, long-term
// cookie, synthesized device identity, the distinguished None. The result
// is cached on the request slot, so re-entrant calls return the same info
// without re-decoding.
//
// Decode failures are logged and treated as an absent envelope, never as
// an authentication failure. Cookie writes scheduled here (device-id
// synthesis, sliding renewal) are emitted immediately, before any body.
func (s *Service) EnsureAuthenticationInfo(w http.ResponseWriter, r *http.Request) authinfo.FrontInfo {
	st := stateFrom(r)
	if st != nil && st.resolved {
		return st.front
	}

	opts := s.options()
	front, src := s.resolve(r, opts)

	switch src {
	case sourceSynthesized:
		s.SetCookies(w, r, front)
	case sourceCookie:
		if renewed, ok := s.slide(front, opts); ok {
			front = renewed
			s.SetCookies(w, r, front)
		}
	}

	if st != nil {
		st.front = front
		st.source = src
		st.resolved = true
	}
	return front
}

// resolve walks the three credential tiers and the synthesize/none fallbacks.
func (s *Service) resolve(r *http.Request, opts DynamicOptions) (authinfo.FrontInfo, credentialSource) {
	// Bearer path: wins over cookies, never falls through on success.
	if h := r.Header.Get(s.bearerHeader); h != "" {
		if token, ok := cutBearer(h); ok {
			front, err := s.codec.UnprotectToken(token)
			if err == nil {
				return front, sourceBearer
			}
			s.log.Debug("bearer envelope rejected",
				logger.Component("resolver"), logger.Error(err))
		}
	}

	// Session cookie path.
	if s.cookieMode != CookieModeNone {
		if v, err := s.cookies.Get(r, s.cookieName); err == nil {
			front, err := s.codec.UnprotectCookie(v)
			if err == nil {
				return front, sourceCookie
			}
			s.log.Debug("session cookie envelope rejected",
				logger.Component("resolver"), logger.Error(err))
		}
	}

	// Long-term cookie path: plaintext, yields at most Unsafe level.
	if opts.UseLongTermCookie {
		if v, err := s.cookies.Get(r, s.longTermName()); err == nil {
			if front, ok := s.parseLongTerm(v); ok {
				return front, sourceLongTerm
			}
		}
	}

	// Synthesize path: mint a device identity on first contact, but only
	// where a cookie write makes sense.
	if s.cookieMode == CookieModeRootPath ||
		(s.cookieMode == CookieModeWebFrontPath && strings.HasPrefix(r.URL.Path, s.entryPath)) {
		id, err := deviceid.New()
		if err == nil {
			info := authinfo.Info{DeviceID: id}
			return authinfo.FrontInfo{Info: info}, sourceSynthesized
		}
		s.log.Error("device id generation failed",
			logger.Component("resolver"), logger.Error(err))
	}

	return authinfo.FrontInfo{Info: authinfo.None}, sourceNone
}

// slide applies sliding expiration to session-cookie-derived info.
// Renewal triggers when less than half the sliding window remains.
func (s *Service) slide(front authinfo.FrontInfo, opts DynamicOptions) (authinfo.FrontInfo, bool) {
	if s.cookieMode != CookieModeRootPath || opts.SlidingExpirationTime <= 0 {
		return front, false
	}

	now := s.now()
	if front.Info.LevelAt(now) < authinfo.LevelNormal {
		return front, false
	}

	halfSliding := opts.SlidingExpirationTime / 2
	if front.Info.Expires.After(now.Add(halfSliding)) {
		return front, false
	}

	front.Info = front.Info.SetExpires(now.Add(opts.SlidingExpirationTime))
	return front, true
}

// longTermPayload is the plaintext JSON carried by the long-term cookie.
// Key names are part of the client contract (the TypeScript SDK inspects
// this payload), do not rename. An entry with only deviceId is valid.
type longTermPayload struct {
	UserID   int64             `json:"userId,omitempty"`
	UserName string            `json:"userName,omitempty"`
	Schemes  []authinfo.Scheme `json:"schemes,omitempty"`
	DeviceID string            `json:"deviceId,omitempty"`
}

// parseLongTerm decodes the long-term cookie into an unsafe-level info.
// The JSON travels URL-escaped since raw JSON is not a valid cookie value.
func (s *Service) parseLongTerm(value string) (authinfo.FrontInfo, bool) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		raw = value
	}

	var p longTermPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.log.Debug("long-term cookie rejected",
			logger.Component("resolver"), logger.Error(err))
		return authinfo.FrontInfo{}, false
	}

	// The device id is carried verbatim; it is an opaque client value.
	dev := p.DeviceID

	user, err := authinfo.NewUserInfo(p.UserID, p.UserName, p.Schemes)
	if err != nil {
		s.log.Debug("long-term cookie user rejected",
			logger.Component("resolver"), logger.Error(err))
		return authinfo.FrontInfo{}, false
	}

	if user.IsAnonymous() && dev == "" {
		return authinfo.FrontInfo{}, false
	}

	// No expiration: the restored identity is at most Unsafe. Anonymous
	// entries never remember; downstream code relies on that.
	info := authinfo.New(user, time.Time{}, time.Time{}, dev)
	return authinfo.FrontInfo{Info: info, RememberMe: !user.IsAnonymous()}, true
}

// cutBearer extracts the token after a case-insensitive "Bearer " prefix.
func cutBearer(header string) (string, bool) {
	if len(header) < len(bearerPrefix) {
		return "", false
	}
	if !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
