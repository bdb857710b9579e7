package query

import (
	"errors"

	"github.com/querymon/querymon/document"
)

// ErrNilQuery is returned when compiling a nil query.
var ErrNilQuery = errors.New("nil query")

// Matcher is the compiled, evaluation-ready form of a Query. The query
// cache hands these out; a Matcher is immutable and safe for
// concurrent use as long as the underlying Query is.
type Matcher struct {
	q Query
}

// Compile validates and compiles a query for evaluation.
func Compile(q Query) (*Matcher, error) {
	if q == nil {
		return nil, ErrNilQuery
	}
	if err := validate(q); err != nil {
		return nil, err
	}
	return &Matcher{q: q}, nil
}

// Matches evaluates the compiled query against the document.
func (m *Matcher) Matches(doc *document.Document) bool {
	return m.q.Matches(doc)
}

// Query returns the source query.
func (m *Matcher) Query() Query {
	return m.q
}

func (m *Matcher) String() string {
	return m.q.String()
}

func validate(q Query) error {
	switch v := q.(type) {
	case Term:
		if v.Field == "" {
			return errors.New("term query with empty field")
		}
		return nil
	case And:
		return validateClauses(v.Clauses)
	case Or:
		return validateClauses(v.Clauses)
	case Not:
		if v.Clause == nil {
			return ErrNilQuery
		}
		return validate(v.Clause)
	default:
		// Custom query types validate themselves.
		return nil
	}
}

func validateClauses(clauses []Query) error {
	for _, c := range clauses {
		if c == nil {
			return ErrNilQuery
		}
		if err := validate(c); err != nil {
			return err
		}
	}
	return nil
}
