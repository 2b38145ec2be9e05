package store

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies a ciphertext by its BLAKE2b-256 digest.
func Fingerprint(ct []byte) [32]byte {
	return blake2b.Sum256(ct)
}

// FormatFingerprint returns the hex form of fp.
func FormatFingerprint(fp [32]byte) string {
	return hex.EncodeToString(fp[:])
}

// ParseFingerprint parses a hex fingerprint, as printed by FormatFingerprint.
func ParseFingerprint(s string) ([32]byte, error) {
	var fp [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return fp, fmt.Errorf("parse fingerprint: %w", err)
	}
	if len(b) != len(fp) {
		return fp, fmt.Errorf("parse fingerprint: %d bytes, want %d", len(b), len(fp))
	}
	copy(fp[:], b)
	return fp, nil
}
