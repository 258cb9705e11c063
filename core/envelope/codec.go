package envelope

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/dmitrymomot/frontauth/core/authinfo"
	"github.com/dmitrymomot/frontauth/pkg/protector"
)

// Purpose strings for the three protector scopes. The version suffix is
// bumped whenever the binary layout changes, invalidating old envelopes
// instead of carrying an in-band version byte.
const (
	purposeCookie  = "Cookie"
	purposeToken   = "Token"
	purposeExtra   = "Extra"
	purposeVersion = "v1"
)

// Codec serializes authentication envelopes and wraps them with
// purpose-scoped protectors. An envelope protected for the cookie purpose
// cannot be unprotected as a bearer token and vice versa.
type Codec struct {
	cookie *protector.Protector
	token  *protector.Protector
	extra  *protector.Protector
}

// NewCodec derives the three purpose protectors from the root protector.
func NewCodec(root *protector.Protector) *Codec {
	return &Codec{
		cookie: root.Derive(purposeCookie, purposeVersion),
		token:  root.Derive(purposeToken, purposeVersion),
		extra:  root.Derive(purposeExtra, purposeVersion),
	}
}

// ProtectCookie encodes and protects an envelope for the session cookie.
func (c *Codec) ProtectCookie(f authinfo.FrontInfo) (string, error) {
	data, err := encodeFront(f)
	if err != nil {
		return "", err
	}
	return c.cookie.Protect(data)
}

// UnprotectCookie unprotects and decodes a session cookie envelope.
func (c *Codec) UnprotectCookie(s string) (authinfo.FrontInfo, error) {
	data, err := c.cookie.Unprotect(s)
	if err != nil {
		return authinfo.FrontInfo{}, err
	}
	return decodeFront(data)
}

// ProtectToken encodes and protects an envelope for the bearer token.
func (c *Codec) ProtectToken(f authinfo.FrontInfo) (string, error) {
	data, err := encodeFront(f)
	if err != nil {
		return "", err
	}
	return c.token.Protect(data)
}

// UnprotectToken unprotects and decodes a bearer token envelope.
func (c *Codec) UnprotectToken(s string) (authinfo.FrontInfo, error) {
	data, err := c.token.Unprotect(s)
	if err != nil {
		return authinfo.FrontInfo{}, err
	}
	return decodeFront(data)
}

// ProtectExtra protects the extra-data bag for cross-redirect carry.
func (c *Codec) ProtectExtra(e Extra) (string, error) {
	data, err := encodeExtra(e)
	if err != nil {
		return "", err
	}
	return c.extra.Protect(data)
}

// UnprotectExtra unprotects and decodes an extra-data bag.
func (c *Codec) UnprotectExtra(s string) (Extra, error) {
	data, err := c.extra.Unprotect(s)
	if err != nil {
		return nil, err
	}
	return decodeExtra(data)
}

// Binary layout, little-endian throughout:
//
//	actualUser, user:  int64 id, string name, uint16 n, n × (string name, int64 lastUsed ms)
//	expires, criticalExpires: flag byte, int64 unix ms when flag is 1
//	deviceId: string
//	rememberMe: byte
//
// Strings are uint16 length-prefixed UTF-8. A string or scheme list that
// does not fit the uint16 frame fails with ErrFieldTooLong rather than
// encoding a clipped envelope.

func encodeFront(f authinfo.FrontInfo) ([]byte, error) {
	var b []byte
	var err error
	if b, err = appendUser(b, f.Info.ActualUser); err != nil {
		return nil, err
	}
	if b, err = appendUser(b, f.Info.User); err != nil {
		return nil, err
	}
	b = appendTime(b, f.Info.Expires)
	b = appendTime(b, f.Info.CriticalExpires)
	if b, err = appendString(b, f.Info.DeviceID); err != nil {
		return nil, err
	}
	if f.RememberMe {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	return b, nil
}

func decodeFront(data []byte) (authinfo.FrontInfo, error) {
	r := reader{data: data}

	actual, err := r.user()
	if err != nil {
		return authinfo.FrontInfo{}, err
	}
	user, err := r.user()
	if err != nil {
		return authinfo.FrontInfo{}, err
	}
	expires, err := r.timestamp()
	if err != nil {
		return authinfo.FrontInfo{}, err
	}
	criticalExpires, err := r.timestamp()
	if err != nil {
		return authinfo.FrontInfo{}, err
	}
	deviceID, err := r.str()
	if err != nil {
		return authinfo.FrontInfo{}, err
	}
	remember, err := r.byte()
	if err != nil {
		return authinfo.FrontInfo{}, err
	}
	if !r.empty() {
		return authinfo.FrontInfo{}, ErrMalformed
	}

	return authinfo.FrontInfo{
		Info: authinfo.Info{
			ActualUser:      actual,
			User:            user,
			Expires:         expires,
			CriticalExpires: criticalExpires,
			DeviceID:        deviceID,
		},
		RememberMe: remember == 1,
	}, nil
}

func appendUser(b []byte, u authinfo.UserInfo) ([]byte, error) {
	b = binary.LittleEndian.AppendUint64(b, uint64(u.ID))
	b, err := appendString(b, u.Name)
	if err != nil {
		return nil, err
	}
	if len(u.Schemes) > math.MaxUint16 {
		return nil, ErrFieldTooLong
	}
	b = binary.LittleEndian.AppendUint16(b, uint16(len(u.Schemes)))
	for _, s := range u.Schemes {
		if b, err = appendString(b, s.Name); err != nil {
			return nil, err
		}
		b = binary.LittleEndian.AppendUint64(b, uint64(s.LastUsed.UnixMilli()))
	}
	return b, nil
}

func appendTime(b []byte, t time.Time) []byte {
	if t.IsZero() {
		return append(b, 0)
	}
	b = append(b, 1)
	return binary.LittleEndian.AppendUint64(b, uint64(t.UnixMilli()))
}

func appendString(b []byte, s string) ([]byte, error) {
	if len(s) > math.MaxUint16 {
		return nil, ErrFieldTooLong
	}
	b = binary.LittleEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...), nil
}

// reader consumes the binary form, failing on any truncation so that a
// clipped envelope (including a missing rememberMe byte) never decodes.
type reader struct {
	data []byte
	off  int
}

func (r *reader) take(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, ErrMalformed
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) empty() bool {
	return r.off == len(r.data)
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) int64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (r *reader) str() (string, error) {
	n, err := r.uint16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) timestamp() (time.Time, error) {
	flag, err := r.byte()
	if err != nil {
		return time.Time{}, err
	}
	if flag == 0 {
		return time.Time{}, nil
	}
	ms, err := r.int64()
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func (r *reader) user() (authinfo.UserInfo, error) {
	id, err := r.int64()
	if err != nil {
		return authinfo.UserInfo{}, err
	}
	if id < 0 {
		return authinfo.UserInfo{}, ErrMalformed
	}
	name, err := r.str()
	if err != nil {
		return authinfo.UserInfo{}, err
	}
	n, err := r.uint16()
	if err != nil {
		return authinfo.UserInfo{}, err
	}
	var schemes []authinfo.Scheme
	for i := uint16(0); i < n; i++ {
		sname, err := r.str()
		if err != nil {
			return authinfo.UserInfo{}, err
		}
		ms, err := r.int64()
		if err != nil {
			return authinfo.UserInfo{}, err
		}
		schemes = append(schemes, authinfo.Scheme{Name: sname, LastUsed: time.UnixMilli(ms).UTC()})
	}
	return authinfo.UserInfo{ID: id, Name: name, Schemes: schemes}, nil
}
