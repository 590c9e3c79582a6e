package adapter

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// seed derives a stable number from the joined parts so simulated providers
// answer the same way for the same input.
func seed(parts ...string) uint64 {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return binary.BigEndian.Uint64(h[:8])
}

func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:6])
}

// normalizeAddress lowercases and collapses whitespace.
func normalizeAddress(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
