package query

import (
	"fmt"
	"strings"

	"github.com/querymon/querymon/document"
)

// Query is a boolean query over document (field, term) pairs.
//
// The built-in variants form a small closed set (Term, And, Or, Not,
// MatchAll). Callers may add their own: a custom Query only needs
// Matches; if it also implements TermsProvider, Conjunction or
// Disjunction, the decomposer can index it precisely, otherwise it
// degrades to a universal presearch candidate.
type Query interface {
	// Matches reports whether the query accepts the document.
	Matches(doc *document.Document) bool
	// String returns a debug representation.
	String() string
}

// TermsProvider is implemented by queries that require every term they
// report to be present in a matching document. The decomposer uses it
// to extract indexable terms.
type TermsProvider interface {
	// QueryTerms returns the terms a matching document must contain.
	QueryTerms() []Term
}

// Conjunction is implemented by queries that match only when all their
// clauses match.
type Conjunction interface {
	Conjuncts() []Query
}

// Disjunction is implemented by queries that match when at least one
// clause matches. The decomposer splits these into one indexed entry
// per clause.
type Disjunction interface {
	Disjuncts() []Query
}

// Term matches documents containing a single (field, term) pair.
type Term struct {
	Field string
	Text  string
}

// NewTerm creates a term query.
func NewTerm(field, text string) Term {
	return Term{Field: field, Text: text}
}

// Matches implements Query.
func (t Term) Matches(doc *document.Document) bool {
	return doc.HasTerm(t.Field, t.Text)
}

// QueryTerms implements TermsProvider.
func (t Term) QueryTerms() []Term {
	return []Term{t}
}

func (t Term) String() string {
	return t.Field + ":" + t.Text
}

// And matches documents matching every clause. An And with no clauses
// matches everything.
type And struct {
	Clauses []Query
}

// NewAnd creates a conjunction.
func NewAnd(clauses ...Query) And {
	return And{Clauses: clauses}
}

// Matches implements Query.
func (a And) Matches(doc *document.Document) bool {
	for _, c := range a.Clauses {
		if !c.Matches(doc) {
			return false
		}
	}
	return true
}

// Conjuncts implements Conjunction.
func (a And) Conjuncts() []Query {
	return a.Clauses
}

func (a And) String() string {
	return joinClauses("AND", a.Clauses)
}

// Or matches documents matching at least one clause. An Or with no
// clauses matches nothing.
type Or struct {
	Clauses []Query
}

// NewOr creates a disjunction.
func NewOr(clauses ...Query) Or {
	return Or{Clauses: clauses}
}

// Matches implements Query.
func (o Or) Matches(doc *document.Document) bool {
	for _, c := range o.Clauses {
		if c.Matches(doc) {
			return true
		}
	}
	return false
}

// Disjuncts implements Disjunction.
func (o Or) Disjuncts() []Query {
	return o.Clauses
}

func (o Or) String() string {
	return joinClauses("OR", o.Clauses)
}

// Not matches documents the wrapped clause rejects. Pure negation has
// no extractable terms, so it is always a universal presearch
// candidate.
type Not struct {
	Clause Query
}

// NewNot creates a negation.
func NewNot(clause Query) Not {
	return Not{Clause: clause}
}

// Matches implements Query.
func (n Not) Matches(doc *document.Document) bool {
	return !n.Clause.Matches(doc)
}

func (n Not) String() string {
	return fmt.Sprintf("NOT(%s)", n.Clause)
}

// MatchAll matches every document.
type MatchAll struct{}

// NewMatchAll creates a match-all query.
func NewMatchAll() MatchAll {
	return MatchAll{}
}

// Matches implements Query.
func (MatchAll) Matches(*document.Document) bool {
	return true
}

func (MatchAll) String() string {
	return "*:*"
}

func joinClauses(op string, clauses []Query) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}
