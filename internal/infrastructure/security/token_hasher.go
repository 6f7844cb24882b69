package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns the SHA-256 hex digest of a raw token value. The digest
// is deliberately unsalted: lookups must recompute the same digest from a
// presented raw token to find the stored row. Refresh tokens are
// high-entropy random values, so a rainbow table buys an attacker nothing.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
