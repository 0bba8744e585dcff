package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// NewSalt returns a fresh random salt as a hex string. Salts are generated
// once per secret and never re-derived.
func NewSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashSecret produces the one-way hash used for passwords and security
// answers alike. The secret is salted and pre-hashed so inputs of any length
// stay under bcrypt's 72 byte limit.
func HashSecret(secret, salt string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(preHash(secret, salt), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// CompareSecret verifies a candidate secret against a stored hash using the
// same derivation as HashSecret.
func CompareSecret(hash, secret, salt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), preHash(secret, salt)) == nil
}

func preHash(secret, salt string) []byte {
	sum := sha256.Sum256([]byte(secret + salt))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}

// NormalizeAnswer canonicalizes a security answer before hashing or
// comparing: answers are case-insensitive and ignore surrounding whitespace.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
