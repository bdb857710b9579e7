package querymon

import (
	"sort"
	"sync"

	"github.com/querymon/querymon/cache"
	"github.com/querymon/querymon/document"
	"github.com/querymon/querymon/index"
)

// MatchCollector receives matches during Search. Collect is invoked
// once per (document, matching query) pair and returns false to stop
// the search for the current document early.
//
// Collect may be invoked concurrently for different documents of the
// same batch; implementations must be safe for concurrent use.
type MatchCollector interface {
	// Collect reports that the query identified by id matched doc.
	// entry exposes the compiled matcher and query metadata.
	Collect(id string, entry *cache.Entry, doc *document.Document) bool

	// ScoreMode declares how much work the index should do per
	// candidate. CompleteNoScores skips scoring entirely.
	ScoreMode() index.ScoreMode
}

// CollectedMatches accumulates matches per document id. It is the
// standard collector for callers that just want the final match sets.
type CollectedMatches struct {
	mu      sync.Mutex
	matches map[string][]string
}

// CollectMatches returns an empty CollectedMatches collector.
func CollectMatches() *CollectedMatches {
	return &CollectedMatches{
		matches: make(map[string][]string),
	}
}

// Collect implements MatchCollector.
func (c *CollectedMatches) Collect(id string, _ *cache.Entry, doc *document.Document) bool {
	c.mu.Lock()
	c.matches[doc.ID()] = append(c.matches[doc.ID()], id)
	c.mu.Unlock()
	return true
}

// ScoreMode implements MatchCollector.
func (c *CollectedMatches) ScoreMode() index.ScoreMode {
	return index.CompleteNoScores
}

// Matches returns the ids of queries that matched the given document,
// sorted lexicographically. Returns nil when nothing matched.
func (c *CollectedMatches) Matches(docID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.matches[docID]
	if ids == nil {
		return nil
	}

	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}

// Total returns the number of (document, query) match pairs collected.
func (c *CollectedMatches) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, ids := range c.matches {
		n += len(ids)
	}
	return n
}
