package protector_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/frontauth/pkg/protector"
)

const (
	testSecret    = "test-secret-0123456789abcdef0123456789"
	rotatedSecret = "rotated-secret-0123456789abcdef012345"
)

// Constructor tests

func TestNew_Success(t *testing.T) {
	p, err := protector.New([]string{testSecret})

	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestNew_NoSecrets(t *testing.T) {
	_, err := protector.New(nil)
	assert.ErrorIs(t, err, protector.ErrNoSecret)

	_, err = protector.New([]string{"", ""})
	assert.ErrorIs(t, err, protector.ErrNoSecret)
}

func TestNew_SecretTooShort(t *testing.T) {
	_, err := protector.New([]string{"too-short"})

	require.Error(t, err)
	assert.ErrorIs(t, err, protector.ErrSecretTooShort)
}

func TestNew_SkipsEmptySecrets(t *testing.T) {
	p, err := protector.New([]string{"", testSecret, ""})

	require.NoError(t, err)

	sealed, err := p.Protect([]byte("payload"))
	require.NoError(t, err)

	got, err := p.Unprotect(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

// Roundtrip tests

func TestProtect_Roundtrip(t *testing.T) {
	p, err := protector.New([]string{testSecret})
	require.NoError(t, err)

	for _, data := range [][]byte{
		nil,
		{},
		[]byte("x"),
		[]byte("hello world"),
		[]byte(strings.Repeat("long payload ", 500)),
		{0x00, 0xff, 0x7f, 0x80},
	} {
		sealed, err := p.Protect(data)
		require.NoError(t, err)
		assert.NotContains(t, sealed, "+")
		assert.NotContains(t, sealed, "/")
		assert.NotContains(t, sealed, "=")

		got, err := p.Unprotect(sealed)
		require.NoError(t, err)
		assert.Equal(t, len(data), len(got))
		assert.Equal(t, string(data), string(got))
	}
}

func TestProtect_FreshNoncePerCall(t *testing.T) {
	p, err := protector.New([]string{testSecret})
	require.NoError(t, err)

	a, err := p.Protect([]byte("same payload"))
	require.NoError(t, err)
	b, err := p.Protect([]byte("same payload"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

// Tamper detection tests

func TestUnprotect_TamperAnyByte(t *testing.T) {
	p, err := protector.New([]string{testSecret})
	require.NoError(t, err)

	sealed, err := p.Protect([]byte("sensitive payload"))
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)

	// Flipping any byte (nonce, ciphertext, or tag) must fail decode.
	for i := range raw {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err := p.Unprotect(base64.RawURLEncoding.EncodeToString(tampered))
		assert.ErrorIs(t, err, protector.ErrUnprotectFailed, "byte %d", i)
	}
}

func TestUnprotect_GarbageInput(t *testing.T) {
	p, err := protector.New([]string{testSecret})
	require.NoError(t, err)

	for _, s := range []string{"", "not base64!!!", "dG9vLXNob3J0", "AAAA"} {
		_, err := p.Unprotect(s)
		assert.ErrorIs(t, err, protector.ErrUnprotectFailed)
	}
}

func TestUnprotect_WrongSecret(t *testing.T) {
	a, err := protector.New([]string{testSecret})
	require.NoError(t, err)
	b, err := protector.New([]string{rotatedSecret})
	require.NoError(t, err)

	sealed, err := a.Protect([]byte("payload"))
	require.NoError(t, err)

	_, err = b.Unprotect(sealed)
	assert.ErrorIs(t, err, protector.ErrUnprotectFailed)
}

// Key rotation tests

func TestUnprotect_KeyRotation(t *testing.T) {
	old, err := protector.New([]string{testSecret})
	require.NoError(t, err)
	sealed, err := old.Protect([]byte("issued under the old key"))
	require.NoError(t, err)

	// New secret first: encrypts new envelopes, old ones still decode.
	rotated, err := protector.New([]string{rotatedSecret, testSecret})
	require.NoError(t, err)

	got, err := rotated.Unprotect(sealed)
	require.NoError(t, err)
	assert.Equal(t, "issued under the old key", string(got))

	fresh, err := rotated.Protect([]byte("fresh"))
	require.NoError(t, err)
	_, err = old.Unprotect(fresh)
	assert.ErrorIs(t, err, protector.ErrUnprotectFailed, "fresh envelopes must use the new key")
}

// Purpose derivation tests

func TestDerive_PurposeSeparation(t *testing.T) {
	root, err := protector.New([]string{testSecret})
	require.NoError(t, err)

	cookie := root.Derive("Cookie", "v1")
	token := root.Derive("Token", "v1")

	sealed, err := cookie.Protect([]byte("cookie scoped"))
	require.NoError(t, err)

	_, err = token.Unprotect(sealed)
	assert.ErrorIs(t, err, protector.ErrUnprotectFailed)

	_, err = root.Unprotect(sealed)
	assert.ErrorIs(t, err, protector.ErrUnprotectFailed)

	got, err := cookie.Unprotect(sealed)
	require.NoError(t, err)
	assert.Equal(t, "cookie scoped", string(got))
}

func TestDerive_Deterministic(t *testing.T) {
	root, err := protector.New([]string{testSecret})
	require.NoError(t, err)

	a := root.Derive("Cookie", "v1")
	b := root.Derive("Cookie", "v1")

	sealed, err := a.Protect([]byte("payload"))
	require.NoError(t, err)

	got, err := b.Unprotect(sealed)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestDerive_VersionSeparation(t *testing.T) {
	root, err := protector.New([]string{testSecret})
	require.NoError(t, err)

	v1 := root.Derive("Cookie", "v1")
	v2 := root.Derive("Cookie", "v2")

	sealed, err := v1.Protect([]byte("payload"))
	require.NoError(t, err)

	_, err = v2.Unprotect(sealed)
	assert.ErrorIs(t, err, protector.ErrUnprotectFailed)
}
