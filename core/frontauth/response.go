package frontauth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/core/envelope"
	"github.com/dmitrymomot/frontauth/core/logger"
)

// AuthResponse is the JSON body returned by every authentication
// operation. Error fields are populated only on failures; a
// scheme-specific login failure carries loginFailureCode / Reason without
// an errorId.
type AuthResponse struct {
	Info        *authinfo.Info `json:"info"`
	Token       string         `json:"token,omitempty"`
	Refreshable bool           `json:"refreshable"`
	RememberMe  bool           `json:"rememberMe"`

	ErrorID            string         `json:"errorId,omitempty"`
	ErrorText          string         `json:"errorText,omitempty"`
	InitialScheme      string         `json:"initialScheme,omitempty"`
	CallingScheme      string         `json:"callingScheme,omitempty"`
	UserData           envelope.Extra `json:"userData,omitempty"`
	LoginFailureCode   int            `json:"loginFailureCode,omitempty"`
	LoginFailureReason string         `json:"loginFailureReason,omitempty"`
}

// authResponse builds the success portion of the response from the
// current authentication.
func (s *Service) authResponse(front authinfo.FrontInfo) AuthResponse {
	opts := s.options()
	now := s.now()

	resp := AuthResponse{RememberMe: front.RememberMe}

	if !front.Info.ActualUser.IsAnonymous() || front.Info.DeviceID != "" {
		info := front.Info
		resp.Info = &info
	}

	if front.Info.LevelAt(now) >= authinfo.LevelNormal {
		token, err := s.codec.ProtectToken(front)
		if err != nil {
			s.log.Error("token protect failed",
				logger.Component("response"), logger.Error(err))
		} else {
			resp.Token = token
		}
		resp.Refreshable = opts.SlidingExpirationTime > 0
	}

	return resp
}

// writeSuccess delivers a successful login outcome through the channel
// the request asked for: redirect, postMessage page, or plain JSON.
func (s *Service) writeSuccess(w http.ResponseWriter, r *http.Request, lc *LoginContext, front authinfo.FrontInfo) {
	resp := s.authResponse(front)

	switch {
	case lc.ReturnURL != "":
		http.Redirect(w, r, lc.ReturnURL, http.StatusFound)
	case lc.CallerOrigin != "":
		s.writePostMessage(w, lc.CallerOrigin, resp)
	default:
		s.writeJSON(w, http.StatusOK, resp)
	}
}

// writeError delivers a failed outcome. The error is reported over the
// same channel the success would have used, so redirect-based flows
// land back on the application even when the returnUrl itself was the
// problem.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, lc *LoginContext, front authinfo.FrontInfo) {
	resp := s.authResponse(front)
	resp.ErrorID = lc.errID
	if lc.errText != "" && lc.errText != lc.errID {
		resp.ErrorText = lc.errText
	}
	resp.InitialScheme = lc.InitialScheme
	resp.CallingScheme = lc.Scheme
	resp.UserData = lc.UserData
	if lc.failure != nil {
		resp.LoginFailureCode = lc.failure.FailureCode
		resp.LoginFailureReason = lc.failure.FailureReason
	}

	switch {
	case lc.ReturnURL != "":
		http.Redirect(w, r, appendErrorParams(lc.ReturnURL, resp), http.StatusFound)
	case lc.CallerOrigin != "":
		s.writePostMessage(w, lc.CallerOrigin, resp)
	default:
		status := http.StatusBadRequest
		if resp.ErrorID == "" {
			status = http.StatusUnauthorized
		}
		s.writeJSON(w, status, resp)
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, resp AuthResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("response write failed",
			logger.Component("response"), logger.Error(err))
	}
}

// postMessagePage posts the outcome to the opener window and closes the
// popup. json.Marshal escapes < and >, so the payload is safe to embed
// in the script element.
const postMessagePage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Signing in...</title></head>
<body>
<script>
(function () {
	var payload = %s;
	var origin = %s;
	if (window.opener) {
		window.opener.postMessage(payload, origin);
	}
	window.close();
})();
</script>
</body>
</html>
`

func (s *Service) writePostMessage(w http.ResponseWriter, origin string, resp AuthResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("postMessage payload marshal failed",
			logger.Component("response"), logger.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, AuthResponse{ErrorID: ErrIDInternalError})
		return
	}
	originJS, err := json.Marshal(origin)
	if err != nil {
		s.log.Error("postMessage origin marshal failed",
			logger.Component("response"), logger.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, AuthResponse{ErrorID: ErrIDInternalError})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, postMessagePage, payload, originJS)
}

// appendErrorParams folds the error fields into the redirect target as
// query parameters.
func appendErrorParams(target string, resp AuthResponse) string {
	params := url.Values{}
	if resp.ErrorID != "" {
		params.Set("errorId", resp.ErrorID)
	}
	if resp.ErrorText != "" {
		params.Set("errorText", resp.ErrorText)
	}
	if resp.LoginFailureCode != 0 {
		params.Set("loginFailureCode", strconv.Itoa(resp.LoginFailureCode))
	}
	if resp.InitialScheme != "" {
		params.Set("initialScheme", resp.InitialScheme)
	}
	if resp.CallingScheme != "" {
		params.Set("callingScheme", resp.CallingScheme)
	}
	if len(params) == 0 {
		return target
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + params.Encode()
}
