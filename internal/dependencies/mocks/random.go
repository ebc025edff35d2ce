package mocks

import (
	"github.com/mcoot/buzzrelay/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int

	// generated counts fallback strings so each one differs
	generated int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result. Once the queue is drained it
// returns distinct deterministic strings built from the alphabet.
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex < len(r.StringResults) {
		result := r.StringResults[r.stringIndex]
		r.stringIndex++
		return result
	}
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	n := r.generated
	for i := length - 1; i >= 0; i-- {
		result[i] = alphabet[n%len(alphabet)]
		n /= len(alphabet)
	}
	r.generated++
	return string(result)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}
