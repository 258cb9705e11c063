// Package deviceid mints per-browser device identifiers.
//
// A device id is the URL-safe base64 encoding of a fresh UUIDv4's 16 raw
// bytes, with padding stripped (22 characters). It is minted on first
// contact and persisted in the long-term cookie, giving each browser a
// stable identity across sessions without identifying the user. Ids
// presented back by a client are treated as opaque strings.
package deviceid

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// New mints a fresh device identifier from a UUIDv4.
func New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(id[:]), nil
}
