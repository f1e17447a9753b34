// Package random provides Random implementations.
package random

import (
	"crypto/rand"
	"encoding/hex"
)

// Real uses crypto/rand for secure randomness.
type Real struct{}

// Bytes generates n cryptographically secure random bytes.
func (Real) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// String generates a random hex string of n characters.
func (r Real) String(n int) (string, error) {
	b, err := r.Bytes((n + 1) / 2)
	if err != nil {
		return "", err
	}
	s := hex.EncodeToString(b)
	if len(s) > n {
		s = s[:n]
	}
	return s, nil
}

// Fake returns deterministic values for testing.
type Fake struct {
	counter byte
}

// Bytes returns bytes derived from an incrementing counter.
func (f *Fake) Bytes(n int) ([]byte, error) {
	f.counter++
	b := make([]byte, n)
	for i := range b {
		b[i] = f.counter + byte(i)
	}
	return b, nil
}

// String returns a deterministic hex string of n characters.
func (f *Fake) String(n int) (string, error) {
	b, err := f.Bytes((n + 1) / 2)
	if err != nil {
		return "", err
	}
	s := hex.EncodeToString(b)
	if len(s) > n {
		s = s[:n]
	}
	return s, nil
}
