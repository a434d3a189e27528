// Package idhash derives deterministic identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeLaunchID computes a deterministic launch_id using SHA256.
// Formula: SHA256(mint|creation_signature)
// Returns hex-encoded hash (64 characters).
func ComputeLaunchID(mint, creationSignature string) string {
	data := fmt.Sprintf("%s|%s", mint, creationSignature)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
