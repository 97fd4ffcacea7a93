package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies an ordered token list. Two vocabularies share a
// fingerprint only when they list the same tokens in the same order.
func Fingerprint(tokens []string) string {
	hasher := sha256.New()
	for _, tok := range tokens {
		hasher.Write([]byte(tok))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16] // Use first 16 chars of the hash
}
