package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns a hex string built from size random bytes, so the
// result is size*2 characters long. Used for request IDs and similar opaque
// identifiers.
func MakeRandHexString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// WipeByteArray zeroes the buffer in place. Nil-safe. Used to scrub
// plaintext passwords once they are no longer needed.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
