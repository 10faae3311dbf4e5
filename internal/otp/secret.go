package otp

import "crypto/rand"

// SecretBytes is the entropy of a generated secret (160 bits)
const SecretBytes = 20

// GenerateSecret draws a fresh random secret and returns it base32
// encoded without padding. Each attendance session gets its own
// secret; secrets are never reused across sessions.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return encoding.EncodeToString(buf), nil
}
