// Package testutil provides testing utilities for querymon.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG plus generators for random queries and
// documents over a small shared vocabulary, used for soundness
// property tests (a matching query must never be missed).
//
//	rng := testutil.NewRNG(seed)
//	q := testutil.RandomQuery(rng, 3)
//	doc := testutil.RandomDocument(rng, "doc-1", 12)
package testutil
