package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes, so the resulting
// string is twice as long. It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to drop plaintext passwords read from a terminal once they are hashed.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
