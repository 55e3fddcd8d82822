package common

import "crypto/rand"

// GenerateRandByteArray returns n bytes read from crypto/rand.
// It panics if the system random source fails, which is not recoverable.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. Used for passwords read from the
// terminal once they have been handed to the session store.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
