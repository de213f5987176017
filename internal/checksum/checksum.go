// Package checksum fingerprints tag documents so that external edits can be
// told apart from the application's own writes.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Changed reports whether data no longer matches a previously taken sum.
// An empty sum means nothing was recorded and counts as changed.
func Changed(sum string, data []byte) bool {
	return sum == "" || Sum(data) != sum
}
