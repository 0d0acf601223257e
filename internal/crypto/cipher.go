package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// ErrEncryption wraps every cryptographic failure in this package so callers
// can match one error kind regardless of the underlying cause.
var ErrEncryption = errors.New("encryption failure")

const (
	// encryptedPrefix marks ciphertext produced by EncryptAtRest. Values
	// without it are treated as plaintext and passed through unchanged.
	encryptedPrefix = "ENC:"

	aesKeyLength = 32
	aesIVLength  = 16

	kdfIterations = 4096
	kdfSalt       = "finlink-credential-key"
)

// Cipher protects bank credentials: AES-256-CBC for columns at rest and
// RSA PKCS#1 v1.5 for handing secrets to the aggregator in transit.
//
// Key material comes from configuration. It is resolved lazily on first use;
// a missing or malformed key surfaces as ErrEncryption then, not at startup.
type Cipher struct {
	keyBase64  string
	passphrase string

	once   sync.Once
	key    []byte
	keyErr error
}

func NewCipher(keyBase64, passphrase string) *Cipher {
	return &Cipher{
		keyBase64:  keyBase64,
		passphrase: passphrase,
	}
}

func (c *Cipher) aesKey() ([]byte, error) {
	c.once.Do(func() {
		switch {
		case c.keyBase64 != "":
			key, err := base64.StdEncoding.DecodeString(c.keyBase64)
			if err != nil {
				c.keyErr = fmt.Errorf("%w: invalid base64 AES key: %v", ErrEncryption, err)
				return
			}
			if len(key) != aesKeyLength {
				c.keyErr = fmt.Errorf("%w: AES key must be %d bytes, got %d", ErrEncryption, aesKeyLength, len(key))
				return
			}
			c.key = key
		case c.passphrase != "":
			c.key = pbkdf2.Key([]byte(c.passphrase), []byte(kdfSalt), kdfIterations, aesKeyLength, sha256.New)
		default:
			c.keyErr = fmt.Errorf("%w: no AES key configured", ErrEncryption)
		}
	})
	return c.key, c.keyErr
}

// EncryptAtRest encrypts a credential value for storage. Blank input and
// input already carrying the marker are returned unchanged, which makes the
// function idempotent under double application.
func (c *Cipher) EncryptAtRest(plaintext string) (string, error) {
	if strings.TrimSpace(plaintext) == "" || strings.HasPrefix(plaintext, encryptedPrefix) {
		return plaintext, nil
	}

	key, err := c.aesKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: create cipher: %v", ErrEncryption, err)
	}

	iv := make([]byte, aesIVLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("%w: generate IV: %v", ErrEncryption, err)
	}

	padded := pad([]byte(plaintext), block.BlockSize())
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, padded)

	return encryptedPrefix + base64.StdEncoding.EncodeToString(append(iv, encrypted...)), nil
}

// DecryptAtRest inverts EncryptAtRest. Input without the marker is returned
// unchanged: it is either a legacy plaintext row or already decrypted.
func (c *Cipher) DecryptAtRest(ciphertext string) (string, error) {
	if strings.TrimSpace(ciphertext) == "" || !strings.HasPrefix(ciphertext, encryptedPrefix) {
		return ciphertext, nil
	}

	key, err := c.aesKey()
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: decode ciphertext: %v", ErrEncryption, err)
	}
	if len(raw) < aesIVLength || (len(raw)-aesIVLength)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext too short or misaligned", ErrEncryption)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: create cipher: %v", ErrEncryption, err)
	}

	iv, encrypted := raw[:aesIVLength], raw[aesIVLength:]
	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(decrypted, encrypted)

	plaintext, err := unpad(decrypted, block.BlockSize())
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptForTransit encrypts a secret with the aggregator's RSA public key
// (base64 DER, PKIX). The plaintext never outlives this call on our side.
func EncryptForTransit(plaintext, publicKeyBase64 string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: empty plaintext for transit encryption", ErrEncryption)
	}

	der, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		return "", fmt.Errorf("%w: decode public key: %v", ErrEncryption, err)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return "", fmt.Errorf("%w: parse public key: %v", ErrEncryption, err)
	}
	publicKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("%w: public key is not RSA", ErrEncryption)
	}

	encrypted, err := rsa.EncryptPKCS1v15(rand.Reader, publicKey, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("%w: rsa encrypt: %v", ErrEncryption, err)
	}
	return base64.StdEncoding.EncodeToString(encrypted), nil
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", ErrEncryption)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrEncryption)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrEncryption)
		}
	}
	return data[:len(data)-n], nil
}
