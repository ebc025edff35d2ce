package random

import (
	"crypto/rand"
	"io"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// String generates a random string of the given length from the given alphabet,
	// sampling each character uniformly
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct {
	reader io.Reader
}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{reader: rand.Reader}
}

// Intn returns a cryptographically random int in [0, n).
// Uses rejection sampling over single bytes, so n must be at most 256.
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 || n > 256 {
		return 0
	}
	// Largest multiple of n that fits in a byte; bytes above it would bias the result
	limit := 256 - (256 % n)
	var b [1]byte
	for {
		if _, err := io.ReadFull(r.reader, b[:]); err != nil {
			return 0
		}
		if int(b[0]) < limit {
			return int(b[0]) % n
		}
	}
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}
