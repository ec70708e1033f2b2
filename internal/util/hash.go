package util

import (
	"crypto/sha256"
	"fmt"
)

// Fingerprint creates a SHA256 hex digest of a raw byte buffer. The clipboard
// monitor fingerprints image payloads with it so a change check does not need
// to hold two full pixel buffers.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
