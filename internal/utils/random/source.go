// Package random supplies the entropy sources of the contract host.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
	"sync"
)

// Source draws 64-bit values from the operating system CSPRNG.
type Source struct{}

func (Source) RandomU64() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// Seeded is a reproducible source for tests and simulations. It is
// predictable and must never back a live deployment.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) RandomU64() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint64(), nil
}

// Fixed returns the same value on every draw.
type Fixed uint64

func (f Fixed) RandomU64() (uint64, error) {
	return uint64(f), nil
}
