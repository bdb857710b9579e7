package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTerms(t *testing.T) {
	doc := New("d1").
		AddTerm("body", "alpha").
		AddTerms("body", "beta", "alpha").
		AddTerm("title", "gamma")

	assert.Equal(t, "d1", doc.ID())
	assert.True(t, doc.HasTerm("body", "alpha"))
	assert.True(t, doc.HasTerm("title", "gamma"))
	assert.False(t, doc.HasTerm("body", "gamma"))
	assert.Equal(t, 3, doc.NumTerms(), "duplicate terms collapse")
	assert.Equal(t, []string{"body", "title"}, doc.Fields())
}

func TestDocumentTermsIterationDeterministic(t *testing.T) {
	doc := New("d1").
		AddTerms("body", "gamma", "alpha", "beta").
		AddTerm("author", "zeta")

	collect := func() [][2]string {
		var out [][2]string
		for f, term := range doc.Terms() {
			out = append(out, [2]string{f, term})
		}
		return out
	}

	first := collect()
	require.Len(t, first, 4)
	assert.Equal(t, [2]string{"author", "zeta"}, first[0], "fields iterate in sorted order")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, collect())
	}
}

func TestAddText(t *testing.T) {
	doc := New("d1").AddText("body", "Alpha, beta; ALPHA!", Simple{})

	assert.True(t, doc.HasTerm("body", "alpha"))
	assert.True(t, doc.HasTerm("body", "beta"))
	assert.Equal(t, 2, doc.NumTerms())
}

func TestSimpleAnalyzer(t *testing.T) {
	terms := Simple{}.Analyze("Hello, World! 42x")
	assert.Equal(t, []string{"hello", "world", "42x"}, terms)
}

func TestWhitespaceAnalyzer(t *testing.T) {
	terms := Whitespace{}.Analyze("  Hello  World\tagain ")
	assert.Equal(t, []string{"Hello", "World", "again"}, terms)
}

func TestNewBatch(t *testing.T) {
	b := NewBatch(New("d1"), New("d2"))
	require.Len(t, b, 2)
	assert.Equal(t, "d1", b[0].ID())
}
