package id

import (
	mathrand "math/rand/v2"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var uuidV4 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestUUID_Format(t *testing.T) {
	assert.Regexp(t, uuidV4, UUID())
}

func TestFromRand_Format(t *testing.T) {
	rng := mathrand.New(mathrand.NewPCG(1, 0))
	for i := 0; i < 100; i++ {
		u := FromRand(rng)
		assert.Regexp(t, uuidV4, u.String())
		assert.EqualValues(t, 4, u.Version())
	}
}

func TestFromRand_Deterministic(t *testing.T) {
	a := mathrand.New(mathrand.NewPCG(42, 0))
	b := mathrand.New(mathrand.NewPCG(42, 0))
	for i := 0; i < 10; i++ {
		assert.Equal(t, FromRand(a), FromRand(b))
	}

	c := mathrand.New(mathrand.NewPCG(43, 0))
	assert.NotEqual(t, FromRand(mathrand.New(mathrand.NewPCG(42, 0))), FromRand(c))
}

func TestSeed_Varies(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 50; i++ {
		seen[Seed()] = true
	}
	assert.Greater(t, len(seen), 45)
}
