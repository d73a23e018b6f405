package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashSessionKey returns a filesystem-safe namespace for a session id so raw
// cookie values never appear in storage keys.
func HashSessionKey(sessionID string) string {
	sum := sha256.Sum256([]byte("session:" + sessionID))
	return hex.EncodeToString(sum[:])
}
