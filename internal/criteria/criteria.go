// Package criteria implements the filter expression language: a recursive
// AND/OR tree of case-insensitive string predicates over a record's named
// fields, with a small date-range shorthand for date-bearing fields.
package criteria

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedExpression marks structurally invalid criteria. It is
	// surfaced to whoever asked for the evaluation and must never take the
	// scheduler loop down.
	ErrMalformedExpression = errors.New("malformed criteria expression")
)

const (
	OpContains   = "contains"
	OpEquals     = "equals"
	OpStartsWith = "startsWith"
	OpEndsWith   = "endsWith"
)

// Node is one node of a criteria expression and doubles as its persisted
// JSON shape. A node with a non-nil Conditions slice is a composite
// ({"op": ..., "conditions": [...]}); otherwise it is a leaf
// ({"field": ..., "operator": ..., "value": ..., "invert": ...}).
// The shape round-trips through encoding/json unchanged.
type Node struct {
	// composite
	Op         string  `json:"op,omitempty"`
	Conditions []*Node `json:"conditions,omitempty"`

	// leaf
	Field    string `json:"field,omitempty"`
	Operator string `json:"operator,omitempty"`
	Value    string `json:"value,omitempty"`
	Invert   bool   `json:"invert,omitempty"`
}

// IsComposite reports whether the node combines child conditions. Presence
// of the conditions list is the discriminator, matching the wire format.
func (n *Node) IsComposite() bool {
	return n.Conditions != nil
}

// Validate checks the whole tree for structural errors. Unknown logical
// operators are rejected rather than silently treated as OR.
func (n *Node) Validate() error {
	if n == nil {
		return fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}

	if n.IsComposite() {
		op := strings.ToUpper(n.Op)
		if op != "AND" && op != "OR" {
			return fmt.Errorf("%w: unknown logical operator %q", ErrMalformedExpression, n.Op)
		}
		if len(n.Conditions) == 0 {
			return fmt.Errorf("%w: composite node has no conditions", ErrMalformedExpression)
		}
		for _, cond := range n.Conditions {
			if err := cond.Validate(); err != nil {
				return err
			}
		}
		return nil
	}

	if n.Field == "" {
		return fmt.Errorf("%w: leaf node is missing a field", ErrMalformedExpression)
	}
	if n.Operator == "" {
		return fmt.Errorf("%w: leaf node is missing an operator", ErrMalformedExpression)
	}

	return nil
}
