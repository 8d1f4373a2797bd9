package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrCiphertextInvalid indicates the stored value could not be decrypted.
var ErrCiphertextInvalid = errors.New("cipher: invalid ciphertext")

// SecretCipher performs AES-256-GCM envelope encryption for sensitive
// columns (the 2FA secret). It is applied at the repository boundary:
// encrypt before persist, decrypt after load. The stored form is
// base64(nonce):base64(ciphertext).
type SecretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher builds a cipher from a 32-byte AES-256 key.
func NewSecretCipher(key []byte) (*SecretCipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("cipher: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: init aes: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher: init gcm: %w", err)
	}

	return &SecretCipher{aead: aead}, nil
}

// Encrypt seals the plaintext. Empty input passes through unchanged so
// absent secrets stay absent.
func (c *SecretCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cipher: generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(nonce) + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *SecretCipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	parts := strings.SplitN(encoded, ":", 2)
	if len(parts) != 2 {
		return "", ErrCiphertextInvalid
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", ErrCiphertextInvalid
	}

	sealed, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrCiphertextInvalid
	}

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrCiphertextInvalid
	}

	return string(plaintext), nil
}
