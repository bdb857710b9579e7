package index

import (
	"github.com/querymon/querymon/cache"
	"github.com/querymon/querymon/decompose"
	"github.com/querymon/querymon/internal/bitmap"
	"github.com/querymon/querymon/query"
)

// Entry is one query submitted for commit: the registered query plus
// its decomposed, indexable subqueries.
type Entry struct {
	ID         string
	Query      query.Query
	Metadata   map[string]string
	Subqueries []decompose.Subquery
}

// TermAcceptor restricts which (field, term) pairs are indexed, e.g.
// to skip high-cardinality fields. It applies symmetrically: terms
// rejected at commit time are also ignored when building the
// per-document candidate filter. A nil acceptor accepts everything.
type TermAcceptor func(field, term string) bool

// ScoreMode is the collector's hint for how much evaluation work a
// match needs.
type ScoreMode int

const (
	// CompleteNoScores means match/no-match suffices.
	CompleteNoScores ScoreMode = iota
	// Complete means full scoring is required.
	Complete
)

// Collector receives candidate queries during Search and Scan. It
// decides whether a candidate is a true match; the index only tracks
// presearch terms, not full query semantics.
type Collector interface {
	// MatchQuery is invoked for one candidate. Returning false stops
	// the enumeration early.
	MatchQuery(id string, entry *cache.Entry) (bool, error)

	// ScoreMode hints whether full scoring is required.
	ScoreMode() ScoreMode
}

// Reader gives Filter implementations read access to the presearch
// term space. Methods are only valid for the duration of one
// Candidates call; implementations must not retain the Reader.
type Reader interface {
	// Postings returns the slots whose subqueries require the term,
	// or nil if the term is not indexed.
	Postings(t query.Term) *bitmap.SlotSet

	// AnySlots returns the slots indexed as universal candidates.
	AnySlots() *bitmap.SlotSet

	// Required returns the number of distinct indexed terms slot
	// requires before it becomes a candidate.
	Required(slot uint32) int
}

// Filter selects candidate slots for one document.
type Filter interface {
	Candidates(r Reader) *bitmap.SlotSet
}

// FilterBuilder builds a Filter bound to one document, honoring the
// index's term acceptor.
type FilterBuilder interface {
	BuildFilter(accept TermAcceptor) (Filter, error)
}

// CommitLog is the write-ahead hook for the underlying storage
// primitive. Append is called before a mutation is applied; a non-nil
// error aborts the mutation, leaving the index untouched.
type CommitLog interface {
	Append(op Op, ids []string) error
}

// Op names a mutation recorded in the commit log.
type Op string

const (
	OpCommit Op = "commit"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
	OpPurge  Op = "purge"
)

// NopCommitLog discards all records. It is the default.
type NopCommitLog struct{}

// Append implements CommitLog.
func (NopCommitLog) Append(Op, []string) error { return nil }
