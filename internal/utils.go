package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash256Hex returns the hex-encoded SHA-256 digest of s. Used to key
// persistent embedding cache entries by text content.
func Hash256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
