package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymon/querymon/query"
)

func term(text string) query.Term {
	return query.NewTerm("body", text)
}

func TestDecomposeTerm(t *testing.T) {
	d := New()

	subs := d.Decompose(term("alpha"))
	require.Len(t, subs, 1)
	assert.False(t, subs[0].Any)
	assert.Equal(t, []query.Term{term("alpha")}, subs[0].Terms)
}

func TestDecomposeSplitsDisjunction(t *testing.T) {
	d := New()

	subs := d.Decompose(query.NewOr(term("alpha"), term("beta")))
	require.Len(t, subs, 2)
	assert.Equal(t, []query.Term{term("alpha")}, subs[0].Terms)
	assert.Equal(t, []query.Term{term("beta")}, subs[1].Terms)
}

func TestDecomposeSplitsNestedDisjunction(t *testing.T) {
	d := New()

	q := query.NewOr(
		query.NewOr(term("alpha"), term("beta")),
		term("gamma"),
	)
	subs := d.Decompose(q)
	require.Len(t, subs, 3, "nested disjunctions flatten")
}

func TestDecomposeConjunctionUnion(t *testing.T) {
	d := New()

	subs := d.Decompose(query.NewAnd(term("alpha"), term("beta")))
	require.Len(t, subs, 1)
	assert.False(t, subs[0].Any)
	assert.ElementsMatch(t, []query.Term{term("alpha"), term("beta")}, subs[0].Terms)
}

func TestDecomposeConjunctionSkipsAnyChild(t *testing.T) {
	d := New()

	q := query.NewAnd(term("alpha"), query.NewNot(term("beta")))
	subs := d.Decompose(q)
	require.Len(t, subs, 1)
	assert.False(t, subs[0].Any)
	assert.Equal(t, []query.Term{term("alpha")}, subs[0].Terms)
}

func TestDecomposeNestedDisjunctionIntersection(t *testing.T) {
	d := New()

	// Every disjunct requires "alpha", so "alpha" is required overall.
	q := query.NewAnd(
		query.NewOr(
			query.NewAnd(term("alpha"), term("beta")),
			query.NewAnd(term("alpha"), term("gamma")),
		),
	)
	subs := d.Decompose(q)
	require.Len(t, subs, 1)
	assert.False(t, subs[0].Any)
	assert.Equal(t, []query.Term{term("alpha")}, subs[0].Terms)
}

func TestDecomposeNestedDisjunctionNoCommonTerms(t *testing.T) {
	d := New()

	q := query.NewAnd(
		query.NewOr(term("alpha"), term("beta")),
	)
	subs := d.Decompose(q)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Any, "no term common to all disjuncts")
}

func TestDecomposeUniversal(t *testing.T) {
	d := New()

	for _, q := range []query.Query{
		query.NewNot(term("alpha")),
		query.NewMatchAll(),
		query.NewAnd(),
	} {
		subs := d.Decompose(q)
		require.Len(t, subs, 1, q.String())
		assert.True(t, subs[0].Any, q.String())
	}
}

func TestDecomposeEmptyDisjunction(t *testing.T) {
	d := New()

	assert.Empty(t, d.Decompose(query.NewOr()), "matches nothing, indexes nothing")
}

func TestDecomposeDeduplicatesTerms(t *testing.T) {
	d := New()

	subs := d.Decompose(query.NewAnd(term("alpha"), term("alpha")))
	require.Len(t, subs, 1)
	assert.Equal(t, []query.Term{term("alpha")}, subs[0].Terms)
}

func TestDecomposeDeterministic(t *testing.T) {
	d := New()

	q := query.NewOr(
		query.NewAnd(term("alpha"), term("beta")),
		term("gamma"),
		query.NewNot(term("delta")),
	)
	first := d.Decompose(q)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.Decompose(q))
	}
}
