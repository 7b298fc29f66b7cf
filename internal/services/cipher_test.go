package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCipher_RoundTrip(t *testing.T) {
	cipher, err := NewAESMessageCipher("test-secret")
	assert.NoError(t, err)

	plaintexts := []string{
		"hello world",
		"",
		"п р и в е т",
		"a much longer message with punctuation, numbers 12345 and emoji 🚀",
	}

	for _, plaintext := range plaintexts {
		ciphertext, err := cipher.Encrypt(plaintext)
		assert.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)
		assert.Equal(t, plaintext, cipher.Decrypt(ciphertext))
	}
}

func TestCipher_NonDeterministic(t *testing.T) {
	cipher, err := NewAESMessageCipher("test-secret")
	assert.NoError(t, err)

	first, err := cipher.Encrypt("same message")
	assert.NoError(t, err)
	second, err := cipher.Encrypt("same message")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCipher_FailOpen(t *testing.T) {
	cipher, err := NewAESMessageCipher("test-secret")
	assert.NoError(t, err)

	ts := []struct {
		name  string
		input string
	}{
		{name: "Legacy plaintext record", input: "not-valid-ciphertext"},
		{name: "Prefixed but not base64", input: "gcm:!!!not base64!!!"},
		{name: "Prefixed but truncated", input: "gcm:QQ=="},
		{name: "Empty string", input: ""},
	}

	for _, tt := range ts {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.input, cipher.Decrypt(tt.input))
		})
	}
}

func TestCipher_WrongKeyFallsBackToInput(t *testing.T) {
	first, err := NewAESMessageCipher("key-one")
	assert.NoError(t, err)
	second, err := NewAESMessageCipher("key-two")
	assert.NoError(t, err)

	ciphertext, err := first.Encrypt("secret message")
	assert.NoError(t, err)

	assert.Equal(t, ciphertext, second.Decrypt(ciphertext))
}
