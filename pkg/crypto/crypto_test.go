package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewCipherKeyLength(t *testing.T) {
	_, err := NewCipher("short")
	assert.Error(t, err)

	_, err = NewCipher(testKey)
	assert.NoError(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	inputs := []string{
		"secret",
		"",
		"exactly 16 bytes",
		strings.Repeat("long payload ", 100),
		"unicode: пароль 密码 🚀",
	}

	for _, in := range inputs {
		encrypted, err := c.Encrypt(in)
		require.NoError(t, err)
		assert.Contains(t, encrypted, ":")

		decrypted, err := c.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, in, decrypted)
	}
}

func TestEncryptProducesFreshIV(t *testing.T) {
	c, _ := NewCipher(testKey)

	a, err := c.Encrypt("same input")
	require.NoError(t, err)
	b, err := c.Encrypt("same input")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsMalformedPayload(t *testing.T) {
	c, _ := NewCipher(testKey)

	tests := []string{
		"no-delimiter",
		"deadbeef:zzzz",
		"zzzz:deadbeef",
		":",
		"deadbeef:",
	}

	for _, in := range tests {
		_, err := c.Decrypt(in)
		assert.Error(t, err, "input %q should fail", in)
	}
}

func TestHashSHA256(t *testing.T) {
	// Known vector for "abc".
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		HashSHA256("abc"))
	assert.Equal(t, HashSHA256("x"), HashSHA256("x"))
}

func TestRandomToken(t *testing.T) {
	a := RandomToken(16)
	b := RandomToken(16)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
