package protector

import "errors"

var (
	// ErrNoSecret indicates no secret was provided for the protector.
	ErrNoSecret = errors.New("no secret provided for protector")

	// ErrSecretTooShort indicates the secret doesn't meet minimum length requirements.
	// Secrets must be at least 32 characters for AES-256 encryption.
	ErrSecretTooShort = errors.New("secret must be at least 32 characters long")

	// ErrUnprotectFailed indicates the protected value couldn't be decrypted
	// or failed integrity verification. Callers treat this as an absent
	// envelope, never as an authentication failure.
	ErrUnprotectFailed = errors.New("failed to unprotect value")
)
