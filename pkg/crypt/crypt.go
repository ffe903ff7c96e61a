// Package crypt encrypts small secrets (storage provider credentials) at
// rest with AES-256-GCM. Output is base64url(nonce || ciphertext || tag).
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shashiranjanraj/uniformhub/config"
)

// Prefix marks values produced by Encrypt so callers can tell them apart
// from legacy plaintext.
const Prefix = "enc:"

var ErrDecrypt = errors.New("crypt: decryption failed")

func aead() (cipher.AEAD, error) {
	secret := config.Get("APP_KEY", config.JWTSecret())
	if secret == "" {
		return nil, errors.New("crypt: APP_KEY not configured")
	}
	k := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt returns Prefix + base64url ciphertext. Empty input stays empty.
func Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values without Prefix are returned unchanged.
func Decrypt(encoded string) (string, error) {
	if !IsEncrypted(encoded) {
		return encoded, nil
	}
	data, err := base64.URLEncoding.DecodeString(strings.TrimPrefix(encoded, Prefix))
	if err != nil {
		return "", ErrDecrypt
	}
	gcm, err := aead()
	if err != nil {
		return "", err
	}
	n := gcm.NonceSize()
	if len(data) < n {
		return "", ErrDecrypt
	}
	plain, err := gcm.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func IsEncrypted(s string) bool { return strings.HasPrefix(s, Prefix) }
