package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymon/querymon/document"
)

func TestTermMatches(t *testing.T) {
	doc := document.New("d1").AddTerms("body", "alpha", "beta")

	assert.True(t, NewTerm("body", "alpha").Matches(doc))
	assert.False(t, NewTerm("body", "gamma").Matches(doc))
	assert.False(t, NewTerm("title", "alpha").Matches(doc), "field must match too")
}

func TestAndMatches(t *testing.T) {
	doc := document.New("d1").AddTerms("body", "alpha", "beta")

	assert.True(t, NewAnd(NewTerm("body", "alpha"), NewTerm("body", "beta")).Matches(doc))
	assert.False(t, NewAnd(NewTerm("body", "alpha"), NewTerm("body", "gamma")).Matches(doc))
	assert.True(t, NewAnd().Matches(doc), "empty conjunction matches everything")
}

func TestOrMatches(t *testing.T) {
	doc := document.New("d1").AddTerms("body", "alpha")

	assert.True(t, NewOr(NewTerm("body", "alpha"), NewTerm("body", "gamma")).Matches(doc))
	assert.False(t, NewOr(NewTerm("body", "gamma"), NewTerm("body", "delta")).Matches(doc))
	assert.False(t, NewOr().Matches(doc), "empty disjunction matches nothing")
}

func TestNotMatches(t *testing.T) {
	doc := document.New("d1").AddTerms("body", "alpha")

	assert.False(t, NewNot(NewTerm("body", "alpha")).Matches(doc))
	assert.True(t, NewNot(NewTerm("body", "gamma")).Matches(doc))
}

func TestMatchAll(t *testing.T) {
	assert.True(t, NewMatchAll().Matches(document.New("d1")))
	assert.True(t, NewMatchAll().Matches(nil))
}

func TestCompile(t *testing.T) {
	m, err := Compile(NewAnd(NewTerm("body", "alpha"), NewNot(NewTerm("body", "beta"))))
	require.NoError(t, err)

	doc := document.New("d1").AddTerm("body", "alpha")
	assert.True(t, m.Matches(doc))

	doc.AddTerm("body", "beta")
	assert.False(t, m.Matches(doc))
}

func TestCompileNil(t *testing.T) {
	_, err := Compile(nil)
	assert.ErrorIs(t, err, ErrNilQuery)
}

func TestCompileEmptyField(t *testing.T) {
	_, err := Compile(NewTerm("", "alpha"))
	assert.Error(t, err)

	_, err = Compile(NewOr(NewTerm("body", "alpha"), NewTerm("", "beta")))
	assert.Error(t, err, "validation recurses into clauses")
}

func TestNodeRoundTrip(t *testing.T) {
	q := NewOr(
		NewAnd(NewTerm("body", "alpha"), NewTerm("body", "beta")),
		NewNot(NewTerm("body", "gamma")),
		NewMatchAll(),
	)

	n, err := ToNode(q)
	require.NoError(t, err)

	back, err := n.Query()
	require.NoError(t, err)
	assert.Equal(t, q.String(), back.String())
}

type opaqueQuery struct{}

func (opaqueQuery) Matches(*document.Document) bool { return false }
func (opaqueQuery) String() string                  { return "opaque" }

func TestToNodeUnsupported(t *testing.T) {
	_, err := ToNode(opaqueQuery{})
	assert.ErrorIs(t, err, ErrUnsupportedQuery)

	_, err = ToNode(NewAnd(NewTerm("body", "alpha"), opaqueQuery{}))
	assert.ErrorIs(t, err, ErrUnsupportedQuery, "conversion recurses into clauses")
}
