package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// tokenAlphabet has 32 symbols so that b>>3 indexes it directly. l, o, 0 and 1
// are left out.
const tokenAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

const tokenBytes = 24

// GenerateSecureRandomString returns a 24 character identifier drawn from
// crypto/rand. Session ids and session secrets both come from here.
func GenerateSecureRandomString() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random string: %w", err)
	}

	out := make([]byte, tokenBytes)
	for i, b := range buf {
		out[i] = tokenAlphabet[b>>3]
	}
	return string(out), nil
}

// HashSecret returns the lowercase hex SHA-256 of secret. It is unsalted and
// only suitable for high-entropy input.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual compares a and b in time that depends only on their
// length. A length mismatch returns early.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var acc byte
	for i := 0; i < len(a); i++ {
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}
