package id

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"

	"github.com/google/uuid"
)

// UUID generates a random UUID v4 string.
func UUID() string {
	return uuid.NewString()
}

// FromRand builds a version 4 UUID from 16 bytes drawn from rng.
func FromRand(rng *mathrand.Rand) uuid.UUID {
	var u uuid.UUID
	for i := 0; i < 16; i += 8 {
		binary.LittleEndian.PutUint64(u[i:], rng.Uint64())
	}
	// Set version (4) and variant bits per RFC 4122
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return u
}

// Seed returns a random 64-bit seed from crypto/rand.
func Seed() uint64 {
	var b [8]byte
	// crypto/rand.Read never returns an error.
	rand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}
