package protector

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// minSecretLength is the minimum secret length for AES-256.
	minSecretLength = 32
	// keySize is the derived AES-256 key size in bytes.
	keySize = 32
)

// Protector provides purpose-scoped authenticated encryption.
// It produces URL-safe strings from byte slices using AES-256-GCM.
// Multiple secrets enable key rotation: the first secret encrypts,
// all secrets are tried on decryption.
type Protector struct {
	keys [][]byte
}

// New creates a root protector from the given secrets.
// Each secret must be at least 32 bytes. Empty secrets are removed.
func New(secrets []string) (*Protector, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	keys := make([][]byte, 0, len(secrets))
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d",
				ErrSecretTooShort, i, len(s), minSecretLength)
		}
		keys = append(keys, deriveKey([]byte(s), ""))
	}

	return &Protector{keys: keys}, nil
}

// Derive returns a protector bound to the given purpose chain.
// Envelopes protected under one purpose cannot be unprotected under
// another, even with the same root secrets.
func (p *Protector) Derive(purpose ...string) *Protector {
	info := strings.Join(purpose, ":")
	keys := make([][]byte, len(p.keys))
	for i, k := range p.keys {
		keys[i] = deriveKey(k, info)
	}
	return &Protector{keys: keys}
}

// Protect encrypts and authenticates data, returning a URL-safe string.
func (p *Protector) Protect(data []byte) (string, error) {
	gcm, err := newGCM(p.keys[0])
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Unprotect decrypts and verifies a protected string.
// Any format or integrity failure returns ErrUnprotectFailed; callers
// are expected to treat it as an absent envelope.
func (p *Protector) Unprotect(s string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrUnprotectFailed
	}

	// Try all keys for rotation support.
	for _, key := range p.keys {
		gcm, err := newGCM(key)
		if err != nil {
			continue
		}
		if len(ciphertext) < gcm.NonceSize() {
			continue
		}
		nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
		plaintext, err := gcm.Open(nil, nonce, sealed, nil)
		if err == nil {
			return plaintext, nil
		}
	}

	return nil, ErrUnprotectFailed
}

// deriveKey expands material into an AES-256 key via HKDF-SHA256.
func deriveKey(material []byte, info string) []byte {
	key := make([]byte, keySize)
	r := hkdf.New(sha256.New, material, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		// HKDF cannot fail for a 32-byte read with SHA-256.
		panic(err)
	}
	return key
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
