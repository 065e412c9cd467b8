package testfixtures

import (
	"fmt"
	"sync"
)

// RegistrationGenerator yields unique registration numbers for tests.
type RegistrationGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewRegistrationGenerator constructs a generator whose numbers start with
// prefix. When prefix is empty, "RA" is used.
func NewRegistrationGenerator(prefix string) *RegistrationGenerator {
	if prefix == "" {
		prefix = "RA"
	}
	return &RegistrationGenerator{prefix: prefix}
}

// Next returns the next registration number in the sequence.
func (g *RegistrationGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s%05d", g.prefix, g.counter)
}

// Reset restarts the sequence.
func (g *RegistrationGenerator) Reset() {
	g.mu.Lock()
	g.counter = 0
	g.mu.Unlock()
}
