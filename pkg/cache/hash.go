package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// hashKey returns "prefix:" followed by the SHA-256 of parts. Each part is
// length-prefixed, so ("ab", "c") and ("a", "bc") hash differently.
func hashKey(prefix string, parts ...string) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Analyzer reports are keyed by the
// hash of their raw bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
