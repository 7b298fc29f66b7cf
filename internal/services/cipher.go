package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// encryptedPrefix marks records written by this codec. Anything without it
// is treated as a legacy plaintext record and passed through on decrypt.
const encryptedPrefix = "gcm:"

// AESMessageCipher encrypts message bodies with AES-256-GCM. The key is
// derived from a single shared secret; a fresh nonce per call means the same
// plaintext never produces the same ciphertext twice.
type AESMessageCipher struct {
	aead cipher.AEAD
}

func NewAESMessageCipher(secret string) (*AESMessageCipher, error) {
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &AESMessageCipher{aead: aead}, nil
}

func (c *AESMessageCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt is fail-open: corrupt data, a foreign key, or a record written
// before encryption existed all come back unchanged. Callers cannot tell a
// legacy plaintext from a failed decrypt, which is the compatibility policy
// the store has always had.
func (c *AESMessageCipher) Decrypt(ciphertext string) string {
	if !strings.HasPrefix(ciphertext, encryptedPrefix) {
		return ciphertext
	}

	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, encryptedPrefix))
	if err != nil || len(sealed) < c.aead.NonceSize() {
		return ciphertext
	}

	nonce, data := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, data, nil)
	if err != nil {
		return ciphertext
	}
	return string(plaintext)
}
