package presearch

import (
	"errors"

	"github.com/querymon/querymon/document"
	"github.com/querymon/querymon/index"
	"github.com/querymon/querymon/internal/bitmap"
	"github.com/querymon/querymon/query"
)

// ErrNilDocument is returned when a filter is requested for a nil
// document.
var ErrNilDocument = errors.New("nil document")

// Presearcher builds the per-document candidate filter over the query
// index's term space: the subset-query algorithm. A slot becomes a
// candidate when every indexed term it requires appears in the
// document; universal slots always qualify. The work is proportional
// to the document's distinct terms and the postings they touch, never
// to the number of registered queries.
//
// The filter over-approximates: a candidate need not be a true match
// (full evaluation decides), but a query whose decomposed term set the
// document satisfies is never excluded.
type Presearcher struct{}

// New creates a Presearcher.
func New() *Presearcher {
	return &Presearcher{}
}

// BuildFilter builds the candidate filter for one document. Terms
// rejected by the acceptor are ignored, mirroring what the index
// skipped at commit time.
func (p *Presearcher) BuildFilter(doc *document.Document, accept index.TermAcceptor) (index.Filter, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	var terms []query.Term
	for f, t := range doc.Terms() {
		if accept != nil && !accept(f, t) {
			continue
		}
		terms = append(terms, query.Term{Field: f, Text: t})
	}
	return &termSubsetFilter{terms: terms}, nil
}

// termSubsetFilter counts, per slot, how many of the slot's required
// terms the document contains and selects slots whose requirement is
// fully covered.
type termSubsetFilter struct {
	terms []query.Term
}

func (f *termSubsetFilter) Candidates(r index.Reader) *bitmap.SlotSet {
	counts := make(map[uint32]int)
	for _, t := range f.terms {
		ps := r.Postings(t)
		if ps == nil {
			continue
		}
		for slot := range ps.Iterator() {
			counts[slot]++
		}
	}

	out := r.AnySlots().Clone()
	for slot, n := range counts {
		if n >= r.Required(slot) {
			out.Add(slot)
		}
	}
	return out
}
