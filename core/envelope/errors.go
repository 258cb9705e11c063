package envelope

import "errors"

// ErrMalformed indicates a decoded envelope payload was truncated or
// otherwise structurally invalid. Like protector.ErrUnprotectFailed,
// callers treat it as an absent envelope.
var ErrMalformed = errors.New("malformed envelope payload")

// ErrFieldTooLong indicates a string or collection exceeds the uint16
// frame and cannot be encoded without loss.
var ErrFieldTooLong = errors.New("envelope field exceeds frame size")
