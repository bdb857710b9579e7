package query

import (
	"errors"
	"fmt"
)

// Kind identifies a node in the serializable query tree.
type Kind string

const (
	KindTerm     Kind = "term"
	KindAnd      Kind = "and"
	KindOr       Kind = "or"
	KindNot      Kind = "not"
	KindMatchAll Kind = "all"
)

// ErrUnsupportedQuery is returned when serializing a query type with no
// tree representation.
var ErrUnsupportedQuery = errors.New("query type cannot be serialized")

// Node is the serializable form of a query tree, used by corpus
// export/import. Custom query types outside the built-in set are not
// serializable.
type Node struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Term    string `json:"term,omitempty"`
	Clauses []Node `json:"clauses,omitempty"`
}

// ToNode converts a query to its serializable form.
func ToNode(q Query) (Node, error) {
	switch v := q.(type) {
	case Term:
		return Node{Kind: KindTerm, Field: v.Field, Term: v.Text}, nil
	case And:
		cs, err := toNodes(v.Clauses)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: KindAnd, Clauses: cs}, nil
	case Or:
		cs, err := toNodes(v.Clauses)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: KindOr, Clauses: cs}, nil
	case Not:
		c, err := ToNode(v.Clause)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: KindNot, Clauses: []Node{c}}, nil
	case MatchAll:
		return Node{Kind: KindMatchAll}, nil
	default:
		return Node{}, fmt.Errorf("%w: %T", ErrUnsupportedQuery, q)
	}
}

// Query rebuilds the query from its serializable form.
func (n Node) Query() (Query, error) {
	switch n.Kind {
	case KindTerm:
		return Term{Field: n.Field, Text: n.Term}, nil
	case KindAnd:
		cs, err := fromNodes(n.Clauses)
		if err != nil {
			return nil, err
		}
		return And{Clauses: cs}, nil
	case KindOr:
		cs, err := fromNodes(n.Clauses)
		if err != nil {
			return nil, err
		}
		return Or{Clauses: cs}, nil
	case KindNot:
		if len(n.Clauses) != 1 {
			return nil, fmt.Errorf("not node requires exactly one clause, got %d", len(n.Clauses))
		}
		c, err := n.Clauses[0].Query()
		if err != nil {
			return nil, err
		}
		return Not{Clause: c}, nil
	case KindMatchAll:
		return MatchAll{}, nil
	default:
		return nil, fmt.Errorf("unknown query node kind %q", n.Kind)
	}
}

func toNodes(clauses []Query) ([]Node, error) {
	out := make([]Node, len(clauses))
	for i, c := range clauses {
		n, err := ToNode(c)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func fromNodes(nodes []Node) ([]Query, error) {
	out := make([]Query, len(nodes))
	for i, n := range nodes {
		q, err := n.Query()
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}
