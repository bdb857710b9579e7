// Package query defines the boolean query model the monitor indexes
// and evaluates: a small closed set of variants (Term, And, Or, Not,
// MatchAll) plus capability interfaces (TermsProvider, Conjunction,
// Disjunction) that let the decomposer extract indexable terms from
// custom query types.
package query
