package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(7)
	b := NewRNG(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestRNGReset(t *testing.T) {
	r := NewRNG(7)
	first := make([]int, 10)
	for i := range first {
		first[i] = r.Intn(1000)
	}
	r.Reset()
	for i := range first {
		assert.Equal(t, first[i], r.Intn(1000))
	}
	assert.Equal(t, int64(7), r.Seed())
}

func TestRandomQueryReproducible(t *testing.T) {
	a := RandomQuery(NewRNG(11), 3)
	b := RandomQuery(NewRNG(11), 3)
	assert.Equal(t, a.String(), b.String())
}

func TestRandomDocument(t *testing.T) {
	doc := RandomDocument(NewRNG(3), "d1", 20)
	assert.Equal(t, "d1", doc.ID())
	assert.Greater(t, doc.NumTerms(), 0)
	assert.LessOrEqual(t, doc.NumTerms(), 20)
}
