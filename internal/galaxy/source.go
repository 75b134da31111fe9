package galaxy

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/rand"
)

// NewSeededSource returns a deterministic RandomSource. Two sources built
// from the same seed produce the same stream.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// NewSeed draws a fresh seed from the operating system.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
