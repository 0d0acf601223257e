package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key := make([]byte, aesKeyLength)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return NewCipher(base64.StdEncoding.EncodeToString(key), "")
}

func TestEncryptAtRest_RoundTrip(t *testing.T) {
	c := testCipher(t)

	tests := []string{
		"110-234-567890",
		"bank-login",
		"비밀번호1234!",
		strings.Repeat("x", 100),
	}

	for _, plaintext := range tests {
		encrypted, err := c.EncryptAtRest(plaintext)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encrypted, encryptedPrefix))
		assert.NotContains(t, encrypted[len(encryptedPrefix):], plaintext)

		decrypted, err := c.DecryptAtRest(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptAtRest_Idempotent(t *testing.T) {
	c := testCipher(t)

	encrypted, err := c.EncryptAtRest("secret")
	require.NoError(t, err)

	again, err := c.EncryptAtRest(encrypted)
	require.NoError(t, err)
	assert.Equal(t, encrypted, again)
}

func TestEncryptAtRest_BlankPassthrough(t *testing.T) {
	c := testCipher(t)

	for _, input := range []string{"", "   "} {
		out, err := c.EncryptAtRest(input)
		require.NoError(t, err)
		assert.Equal(t, input, out)
	}
}

func TestDecryptAtRest_UnmarkedPassthrough(t *testing.T) {
	c := testCipher(t)

	out, err := c.DecryptAtRest("legacy-plaintext-row")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plaintext-row", out)
}

func TestDecryptAtRest_CorruptCiphertext(t *testing.T) {
	c := testCipher(t)

	_, err := c.DecryptAtRest(encryptedPrefix + "not-base64!!!")
	assert.ErrorIs(t, err, ErrEncryption)

	_, err = c.DecryptAtRest(encryptedPrefix + base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrEncryption)
}

func TestCipher_RandomIV(t *testing.T) {
	c := testCipher(t)

	first, err := c.EncryptAtRest("same input")
	require.NoError(t, err)
	second, err := c.EncryptAtRest("same input")
	require.NoError(t, err)

	// fresh IV per call means distinct ciphertexts
	assert.NotEqual(t, first, second)
}

func TestCipher_MissingKey(t *testing.T) {
	c := NewCipher("", "")

	_, err := c.EncryptAtRest("secret")
	assert.ErrorIs(t, err, ErrEncryption)
}

func TestCipher_MalformedKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "not base64", key: "%%%"},
		{name: "wrong length", key: base64.StdEncoding.EncodeToString([]byte("tooshort"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCipher(tt.key, "")
			_, err := c.EncryptAtRest("secret")
			assert.ErrorIs(t, err, ErrEncryption)
		})
	}
}

func TestCipher_PassphraseKey(t *testing.T) {
	c := NewCipher("", "local-dev-passphrase")

	encrypted, err := c.EncryptAtRest("secret")
	require.NoError(t, err)

	decrypted, err := c.DecryptAtRest(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "secret", decrypted)
}

func TestEncryptForTransit(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)
	publicKeyBase64 := base64.StdEncoding.EncodeToString(der)

	encrypted, err := EncryptForTransit("bank-password", publicKeyBase64)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)

	decrypted, err := rsa.DecryptPKCS1v15(rand.Reader, privateKey, raw)
	require.NoError(t, err)
	assert.Equal(t, "bank-password", string(decrypted))
}

func TestEncryptForTransit_BadKey(t *testing.T) {
	_, err := EncryptForTransit("secret", "not-a-key")
	assert.ErrorIs(t, err, ErrEncryption)

	_, err = EncryptForTransit("", "whatever")
	assert.ErrorIs(t, err, ErrEncryption)
}
