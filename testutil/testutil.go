package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/querymon/querymon/document"
	"github.com/querymon/querymon/query"
)

// Vocabulary is the shared term set for random queries and documents.
// Small on purpose so random queries and documents overlap often.
var Vocabulary = []string{
	"alpha", "beta", "gamma", "delta", "epsilon",
	"zeta", "eta", "theta", "iota", "kappa",
}

// Field is the field random terms are generated under.
const Field = "body"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Word returns a random vocabulary word.
func (r *RNG) Word() string {
	return Vocabulary[r.Intn(len(Vocabulary))]
}

// RandomTerm returns a random single-term query over Field.
func RandomTerm(rng *RNG) query.Query {
	return query.NewTerm(Field, rng.Word())
}

// RandomQuery returns a random query tree of at most the given depth.
// Leaves are term queries; interior nodes are conjunctions or
// disjunctions of two or three children. Negation and match-all are
// left out so every generated query is term-driven.
func RandomQuery(rng *RNG, depth int) query.Query {
	if depth <= 0 || rng.Intn(3) == 0 {
		return RandomTerm(rng)
	}

	n := 2 + rng.Intn(2)
	children := make([]query.Query, n)
	for i := range children {
		children[i] = RandomQuery(rng, depth-1)
	}
	if rng.Intn(2) == 0 {
		return query.NewAnd(children...)
	}
	return query.NewOr(children...)
}

// RandomDocument returns a document with the given id holding numTerms
// random vocabulary terms under Field. Duplicate terms collapse, so
// the document may end up with fewer distinct terms.
func RandomDocument(rng *RNG, id string, numTerms int) *document.Document {
	doc := document.New(id)
	for i := 0; i < numTerms; i++ {
		doc.AddTerm(Field, rng.Word())
	}
	return doc
}

// QueryID formats a stable query id for test corpora.
func QueryID(i int) string {
	return fmt.Sprintf("q-%04d", i)
}
