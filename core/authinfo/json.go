package authinfo

import (
	"encoding/json"
	"time"
)

// infoJSON is the wire shape of Info. Key names are part of the client
// contract (the TypeScript SDK inspects them), do not rename.
type infoJSON struct {
	User       UserInfo   `json:"user"`
	ActualUser *UserInfo  `json:"actualUser,omitempty"`
	Exp        *time.Time `json:"exp,omitempty"`
	Cexp       *time.Time `json:"cexp,omitempty"`
	DeviceID   string     `json:"deviceId,omitempty"`
}

// MarshalJSON encodes the info with actualUser omitted when it equals user.
func (a Info) MarshalJSON() ([]byte, error) {
	out := infoJSON{
		User:     a.User,
		DeviceID: a.DeviceID,
	}
	if !a.ActualUser.Equal(a.User) {
		actual := a.ActualUser
		out.ActualUser = &actual
	}
	if !a.Expires.IsZero() {
		exp := a.Expires
		out.Exp = &exp
	}
	if !a.CriticalExpires.IsZero() {
		cexp := a.CriticalExpires
		out.Cexp = &cexp
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the info, defaulting actualUser to user when absent.
func (a *Info) UnmarshalJSON(data []byte) error {
	var in infoJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	a.User = in.User
	if in.ActualUser != nil {
		a.ActualUser = *in.ActualUser
	} else {
		a.ActualUser = in.User
	}
	a.Expires = time.Time{}
	if in.Exp != nil {
		a.Expires = normalize(*in.Exp)
	}
	a.CriticalExpires = time.Time{}
	if in.Cexp != nil {
		a.CriticalExpires = normalize(*in.Cexp)
	}
	a.DeviceID = in.DeviceID
	return nil
}
