package document

import (
	"iter"
	"sort"
)

// Document is the unit of matching: a bag of (field, term) pairs
// extracted from one input document. Term extraction happens before a
// Document is handed to the monitor, either directly via AddTerm or
// through an Analyzer.
type Document struct {
	id     string
	fields map[string]map[string]struct{}
}

// New creates an empty document with the given caller-assigned ID.
func New(id string) *Document {
	return &Document{
		id:     id,
		fields: make(map[string]map[string]struct{}),
	}
}

// ID returns the caller-assigned document ID.
func (d *Document) ID() string {
	return d.id
}

// AddTerm adds a single (field, term) pair. Duplicates are collapsed.
func (d *Document) AddTerm(field, term string) *Document {
	ts, ok := d.fields[field]
	if !ok {
		ts = make(map[string]struct{})
		d.fields[field] = ts
	}
	ts[term] = struct{}{}
	return d
}

// AddTerms adds several terms for one field.
func (d *Document) AddTerms(field string, terms ...string) *Document {
	for _, t := range terms {
		d.AddTerm(field, t)
	}
	return d
}

// AddText analyzes raw text with the given analyzer and adds the
// resulting tokens to the field. A nil analyzer uses Simple.
func (d *Document) AddText(field, text string, a Analyzer) *Document {
	if a == nil {
		a = Simple{}
	}
	return d.AddTerms(field, a.Analyze(text)...)
}

// HasTerm reports whether the document contains the (field, term) pair.
func (d *Document) HasTerm(field, term string) bool {
	ts, ok := d.fields[field]
	if !ok {
		return false
	}
	_, ok = ts[term]
	return ok
}

// NumTerms returns the number of distinct (field, term) pairs.
func (d *Document) NumTerms() int {
	n := 0
	for _, ts := range d.fields {
		n += len(ts)
	}
	return n
}

// Fields returns the field names in sorted order.
func (d *Document) Fields() []string {
	names := make([]string, 0, len(d.fields))
	for f := range d.fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// Terms iterates all distinct (field, term) pairs in deterministic
// (field-sorted, term-sorted) order.
func (d *Document) Terms() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, f := range d.Fields() {
			ts := d.fields[f]
			terms := make([]string, 0, len(ts))
			for t := range ts {
				terms = append(terms, t)
			}
			sort.Strings(terms)
			for _, t := range terms {
				if !yield(f, t) {
					return
				}
			}
		}
	}
}

// Batch is an ordered sequence of documents matched together. It
// expands into the monitor's variadic Search parameter:
//
//	batch := document.NewBatch(doc1, doc2)
//	err := mon.Search(ctx, collector, batch...)
type Batch []*Document

// NewBatch builds a batch from the given documents.
func NewBatch(docs ...*Document) Batch {
	return Batch(docs)
}
