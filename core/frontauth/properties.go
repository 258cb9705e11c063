package frontauth

import (
	"net/url"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/core/envelope"
	"github.com/dmitrymomot/frontauth/core/logger"
)

// Authentication-property keys carried through redirect-based flows
// (external scheme round trips). These names are a wire contract shared
// with the client SDK, do not rename.
const (
	// PropEnvelope carries the protected current authentication envelope.
	PropEnvelope = "WFA2C"
	// PropInitialScheme carries the scheme that started the flow.
	PropInitialScheme = "WFA2S"
	// PropCallerOrigin carries the popup caller origin.
	PropCallerOrigin = "WFA2O"
	// PropReturnURL carries the return url.
	PropReturnURL = "WFA2R"
	// PropUserData carries the protected extra-data bag.
	PropUserData = "WFA2D"
	// PropImpersonate flags impersonate-actual-user. Presence is the
	// signal; the value is empty.
	PropImpersonate = "WFA2I"
)

// Properties is the state a redirect-based login flow carries across the
// external round trip.
type Properties struct {
	Front                 authinfo.FrontInfo
	HasFront              bool
	InitialScheme         string
	CallerOrigin          string
	ReturnURL             string
	UserData              envelope.Extra
	ImpersonateActualUser bool
}

// EncodeProperties serializes the flow state into query values. The
// envelope and the user data travel protected; the rest is plain.
func (s *Service) EncodeProperties(p Properties) (url.Values, error) {
	values := url.Values{}

	if p.HasFront {
		sealed, err := s.codec.ProtectToken(p.Front)
		if err != nil {
			return nil, err
		}
		values.Set(PropEnvelope, sealed)
	}
	if p.InitialScheme != "" {
		values.Set(PropInitialScheme, p.InitialScheme)
	}
	if p.CallerOrigin != "" {
		values.Set(PropCallerOrigin, p.CallerOrigin)
	}
	if p.ReturnURL != "" {
		values.Set(PropReturnURL, p.ReturnURL)
	}
	if len(p.UserData) > 0 {
		sealed, err := s.codec.ProtectExtra(p.UserData)
		if err != nil {
			return nil, err
		}
		values.Set(PropUserData, sealed)
	}
	if p.ImpersonateActualUser {
		values.Set(PropImpersonate, "")
	}

	return values, nil
}

// DecodeProperties restores the flow state from query values. Protected
// entries that fail to decode are dropped and logged, mirroring the
// resolver's graceful degradation.
func (s *Service) DecodeProperties(values url.Values) Properties {
	p := Properties{
		InitialScheme: values.Get(PropInitialScheme),
		CallerOrigin:  values.Get(PropCallerOrigin),
		ReturnURL:     values.Get(PropReturnURL),
	}
	_, p.ImpersonateActualUser = values[PropImpersonate]

	if sealed := values.Get(PropEnvelope); sealed != "" {
		front, err := s.codec.UnprotectToken(sealed)
		if err != nil {
			s.log.Debug("flow envelope rejected",
				logger.Component("properties"), logger.Error(err))
		} else {
			p.Front = front
			p.HasFront = true
		}
	}

	if sealed := values.Get(PropUserData); sealed != "" {
		extra, err := s.codec.UnprotectExtra(sealed)
		if err != nil {
			s.log.Debug("flow user data rejected",
				logger.Component("properties"), logger.Error(err))
		} else {
			p.UserData = extra
		}
	}

	return p
}
