package ports

// IMessageCipher protects message bodies at rest. Decrypt never fails:
// anything that cannot be decrypted (corrupt data, foreign key, records
// written before encryption existed) is returned unchanged. This
// legacy-plaintext compatibility mode is a deliberate policy, not a bug.
type IMessageCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) string
}
