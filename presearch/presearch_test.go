package presearch_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymon/querymon/cache"
	"github.com/querymon/querymon/decompose"
	"github.com/querymon/querymon/document"
	"github.com/querymon/querymon/index"
	"github.com/querymon/querymon/presearch"
	"github.com/querymon/querymon/query"
	"github.com/querymon/querymon/testutil"
)

func TestBuildFilterNilDocument(t *testing.T) {
	_, err := presearch.New().BuildFilter(nil, nil)
	assert.ErrorIs(t, err, presearch.ErrNilDocument)
}

func TestConjunctionVersusDisjunctionCandidates(t *testing.T) {
	x := index.New()
	d := decompose.New()

	and := query.NewAnd(
		query.NewTerm("body", "alpha"),
		query.NewTerm("body", "beta"),
	)
	or := query.NewOr(
		query.NewTerm("body", "alpha"),
		query.NewTerm("body", "beta"),
	)
	require.NoError(t, x.Commit([]index.Entry{
		{ID: "and", Query: and, Subqueries: d.Decompose(and)},
		{ID: "or", Query: or, Subqueries: d.Decompose(or)},
	}))

	// A document with only one of the two terms satisfies the
	// disjunction but not the conjunction.
	doc := document.New("d1").AddTerm("body", "alpha")
	assert.Equal(t, []string{"or"}, matchedIDs(t, x, doc))

	both := document.New("d2").AddTerms("body", "alpha", "beta")
	assert.ElementsMatch(t, []string{"and", "or"}, matchedIDs(t, x, both))
}

// Soundness: for random queries and documents, every query that
// matches a document by direct evaluation must be reported by the
// index path. False positives are filtered by evaluation; false
// negatives are bugs.
func TestRandomizedSoundness(t *testing.T) {
	rng := testutil.NewRNG(42)
	d := decompose.New()

	const numQueries = 150
	const numDocs = 60

	queries := make(map[string]query.Query, numQueries)
	entries := make([]index.Entry, 0, numQueries)
	for i := 0; i < numQueries; i++ {
		id := testutil.QueryID(i)
		q := testutil.RandomQuery(rng, 3)
		queries[id] = q
		entries = append(entries, index.Entry{
			ID:         id,
			Query:      q,
			Subqueries: d.Decompose(q),
		})
	}

	x := index.New()
	require.NoError(t, x.Commit(entries))

	for i := 0; i < numDocs; i++ {
		doc := testutil.RandomDocument(rng, fmt.Sprintf("doc-%03d", i), 1+rng.Intn(8))

		got := make(map[string]struct{})
		for _, id := range matchedIDs(t, x, doc) {
			got[id] = struct{}{}
		}

		for id, q := range queries {
			if q.Matches(doc) {
				_, reported := got[id]
				assert.True(t, reported,
					"query %s (%s) matches %s but was not reported", id, q, doc.ID())
			}
		}
	}
}

func matchedIDs(t *testing.T, x *index.Index, doc *document.Document) []string {
	t.Helper()
	rec := &matchRecorder{doc: doc}
	require.NoError(t, x.Search(docFilter{doc: doc}, rec))
	return rec.ids
}

type docFilter struct {
	doc *document.Document
}

func (f docFilter) BuildFilter(accept index.TermAcceptor) (index.Filter, error) {
	return presearch.New().BuildFilter(f.doc, accept)
}

type matchRecorder struct {
	doc *document.Document
	ids []string
}

func (r *matchRecorder) MatchQuery(id string, e *cache.Entry) (bool, error) {
	if e.Matches(r.doc) {
		r.ids = append(r.ids, id)
	}
	return true, nil
}

func (r *matchRecorder) ScoreMode() index.ScoreMode { return index.CompleteNoScores }
