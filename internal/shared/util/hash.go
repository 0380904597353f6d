package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey returns a path-safe namespace for a user id. Exports are keyed
// by it so bucket listings do not leak account ids.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte("fitgap-export:" + s))
	return hex.EncodeToString(sum[:16])
}
