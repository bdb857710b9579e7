// Package querymon is a reverse-search ("query monitor") engine:
// instead of running one query against many documents, it holds a
// corpus of standing queries and, for each incoming document batch,
// reports which queries match it.
//
// Matching is two-phase. Registered queries are decomposed into
// indexable conjuncts and stored in an inverted presearch index; an
// incoming document selects only candidate queries through that index,
// and only candidates are fully evaluated. Candidate selection is a
// sound over-approximation: false positives are filtered by
// evaluation, false negatives cannot occur.
//
// # Quick Start
//
//	m, err := querymon.New()
//	if err != nil { ... }
//	defer m.Close()
//
//	ctx := context.Background()
//	err = m.Register(ctx, querymon.MonitorQuery{
//	    ID:    "q1",
//	    Query: query.NewAnd(query.NewTerm("body", "alpha"), query.NewTerm("body", "beta")),
//	})
//
//	doc := document.New("doc1").AddTerms("body", "alpha", "beta", "gamma")
//	matches := querymon.CollectMatches()
//	err = m.Search(ctx, matches, doc)
//	// matches.Matches("doc1") == ["q1"]
//
// # Lifecycle
//
// Deleted queries are tombstoned so in-flight searches can finish; a
// background purge cycle (interval set by WithPurgeInterval, also
// callable via PurgeCache) reclaims tombstoned index entries and drops
// cached compiled queries with no live backing entry.
//
// Listeners registered with WithUpdateListener observe commits,
// deletes, clears and purges; listener failures are isolated and never
// roll back the triggering operation.
//
// # Export
//
// The live corpus can be exported to and imported from a
// blobstore.Store (memory, local filesystem, MinIO, S3), serialized by
// the configured codec.
package querymon
