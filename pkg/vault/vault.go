// Package vault decrypts per-device admin credentials at rest.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
)

// Vault seals and opens credential strings with AES-256-GCM.
// Ciphertexts are base64(nonce || sealed).
type Vault struct {
	aead cipher.AEAD
}

// New builds a Vault from a hex-encoded 32-byte key.
func New(hexKey string) (*Vault, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.New("vault key must be hex encoded")
	}
	if len(key) != 32 {
		return nil, errors.New("vault key must be 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Vault{aead: aead}, nil
}

// FromEnv builds a Vault from the required VAULT_KEY variable.
func FromEnv() (*Vault, error) {
	return New(env.MustGetEnvString("VAULT_KEY"))
}

func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.New("ciphertext is not valid base64")
	}
	if len(raw) < v.aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	plain, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.New("credential decryption failed")
	}
	return string(plain), nil
}
