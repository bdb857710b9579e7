package querymon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymon/querymon/blobstore"
	"github.com/querymon/querymon/codec"
	"github.com/querymon/querymon/document"
	"github.com/querymon/querymon/query"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	src := newTestMonitor(t)
	require.NoError(t, src.Register(ctx,
		mq("and", query.NewAnd(query.NewTerm("body", "alpha"), query.NewTerm("body", "beta"))),
		mq("or", query.NewOr(query.NewTerm("body", "alpha"), query.NewTerm("body", "gamma"))),
		MonitorQuery{
			ID:       "meta",
			Query:    query.NewTerm("body", "delta"),
			Metadata: map[string]string{"owner": "alerts"},
		},
	))
	require.NoError(t, src.Export(ctx, store, "corpus-1"))

	dst := newTestMonitor(t)
	require.NoError(t, dst.Import(ctx, store, "corpus-1"))
	assert.Equal(t, 3, dst.GetQueryCacheStats().Queries)

	// Imported queries behave like the originals.
	c := CollectMatches()
	doc := document.New("d1").AddTerms("body", "alpha", "beta")
	require.NoError(t, dst.Search(ctx, c, doc))
	assert.Equal(t, []string{"and", "or"}, c.Matches("d1"))

	var meta map[string]string
	require.NoError(t, dst.ScanQueries(ctx, func(q MonitorQuery) bool {
		if q.ID == "meta" {
			meta = q.Metadata
		}
		return true
	}))
	assert.Equal(t, "alerts", meta["owner"])
}

func TestExportPartitioning(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	m := newTestMonitor(t, WithExportPartSize(2))
	require.NoError(t, m.Register(ctx,
		mq("q1", query.NewTerm("body", "alpha")),
		mq("q2", query.NewTerm("body", "beta")),
		mq("q3", query.NewTerm("body", "gamma")),
		mq("q4", query.NewTerm("body", "delta")),
		mq("q5", query.NewTerm("body", "epsilon")),
	))
	require.NoError(t, m.Export(ctx, store, "corpus"))

	names, err := store.List(ctx, "corpus/part-")
	require.NoError(t, err)
	assert.Len(t, names, 3, "5 queries at part size 2")

	dst := newTestMonitor(t)
	require.NoError(t, dst.Import(ctx, store, "corpus"))
	assert.Equal(t, 5, dst.GetQueryCacheStats().Queries)
}

func TestExportCodecRecordedInManifest(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	m := newTestMonitor(t, WithCodec(codec.LZ4{Inner: codec.JSON{}}))
	require.NoError(t, m.Register(ctx, mq("q1", query.NewTerm("body", "alpha"))))
	require.NoError(t, m.Export(ctx, store, "corpus"))

	// A default-configured monitor resolves the codec from the
	// manifest.
	dst := newTestMonitor(t)
	require.NoError(t, dst.Import(ctx, store, "corpus"))
	assert.Equal(t, 1, dst.GetQueryCacheStats().Queries)
}

type opaque struct{}

func (opaque) Matches(*document.Document) bool { return false }
func (opaque) String() string                  { return "opaque" }

func TestExportUnsupportedQuery(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(t)
	require.NoError(t, m.Register(ctx, mq("q1", opaque{})))

	err := m.Export(ctx, blobstore.NewMemoryStore(), "corpus")
	assert.ErrorIs(t, err, query.ErrUnsupportedQuery)
}

func TestImportMissingManifest(t *testing.T) {
	m := newTestMonitor(t)
	err := m.Import(context.Background(), blobstore.NewMemoryStore(), "nope")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestExportEmptyMonitor(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	m := newTestMonitor(t)
	require.NoError(t, m.Export(ctx, store, "empty"))

	dst := newTestMonitor(t)
	require.NoError(t, dst.Import(ctx, store, "empty"))
	assert.Equal(t, 0, dst.GetQueryCacheStats().Queries)
}
