package decompose

import (
	"github.com/querymon/querymon/query"
)

// Subquery is one conjunct of a decomposition: a query that can be
// evaluated on its own, annotated with the set of terms a matching
// document must contain. When Any is true the subquery has no
// extractable terms and is indexed as a universal candidate.
type Subquery struct {
	Query query.Query
	Terms []query.Term
	Any   bool
}

// Decomposer splits a query into indexable subqueries.
//
// Disjunctions are split into one subquery per disjunct, recursively;
// each carries only its own terms. Indexing an OR under its combined
// term set would require a document to contain every disjunct's terms
// to become a candidate, which loses matches, so the split is a
// soundness requirement, not an optimization.
//
// Decomposition is pure and deterministic: the same query always
// yields the same subqueries in the same order.
type Decomposer struct{}

// New creates a Decomposer.
func New() *Decomposer {
	return &Decomposer{}
}

// Decompose splits q into subqueries. An empty result means the query
// can never match (e.g. a disjunction with no clauses).
func (d *Decomposer) Decompose(q query.Query) []Subquery {
	var out []Subquery
	d.split(q, &out)
	return out
}

func (d *Decomposer) split(q query.Query, out *[]Subquery) {
	if dq, ok := q.(query.Disjunction); ok {
		for _, clause := range dq.Disjuncts() {
			d.split(clause, out)
		}
		return
	}
	terms, any := extract(q)
	*out = append(*out, Subquery{Query: q, Terms: terms, Any: any})
}

// extract computes the required term set of q: terms every matching
// document must contain. any=true means no such set exists and the
// query must be a universal candidate.
func extract(q query.Query) (terms []query.Term, any bool) {
	switch v := q.(type) {
	case query.Conjunction:
		// A match satisfies every conjunct, so any child's required
		// terms are required for the whole; take the union and skip
		// children with no extractable terms.
		var acc []query.Term
		allAny := true
		for _, c := range v.Conjuncts() {
			ct, cAny := extract(c)
			if cAny {
				continue
			}
			allAny = false
			acc = append(acc, ct...)
		}
		if allAny {
			return nil, true
		}
		return dedupe(acc), false
	case query.Disjunction:
		// Reached only for an OR nested under an AND. A match
		// satisfies at least one disjunct, so only terms common to
		// every disjunct are guaranteed present.
		clauses := v.Disjuncts()
		if len(clauses) == 0 {
			return nil, true
		}
		common, cAny := extract(clauses[0])
		if cAny {
			return nil, true
		}
		for _, c := range clauses[1:] {
			ct, ctAny := extract(c)
			if ctAny {
				return nil, true
			}
			common = intersect(common, ct)
			if len(common) == 0 {
				return nil, true
			}
		}
		return dedupe(common), false
	case query.TermsProvider:
		ts := v.QueryTerms()
		if len(ts) == 0 {
			return nil, true
		}
		return dedupe(ts), false
	default:
		// Negation, match-all and opaque custom types: no extractable
		// terms, degrade to universal candidate.
		return nil, true
	}
}

func dedupe(terms []query.Term) []query.Term {
	seen := make(map[query.Term]struct{}, len(terms))
	out := make([]query.Term, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func intersect(a, b []query.Term) []query.Term {
	set := make(map[query.Term]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	var out []query.Term
	for _, t := range a {
		if _, ok := set[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
