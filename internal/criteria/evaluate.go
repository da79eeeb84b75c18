package criteria

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Record is anything the evaluator can pull named string fields from.
// Absent fields must resolve to the empty string, not an error.
type Record interface {
	Field(name string) string
}

// Relative date tokens and their day-difference thresholds. The vocabulary
// is fixed; filters cannot extend it.
var dateRanges = map[string]int{
	"last_1_day":  1,
	"last_3_days": 3,
	"last_7_days": 7,
}

// Date formats accepted by the date-range shorthand, tried in order.
var dateFormats = []string{
	"1/2/2006 3:04 PM",
	"1/2/2006",
}

// Evaluator evaluates criteria expressions against records. It is stateless
// apart from configuration and safe for concurrent use.
type Evaluator struct {
	dateFields map[string]bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewEvaluator configures which record fields carry dates. now may be nil
// and defaults to time.Now.
func NewEvaluator(dateFields []string, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}

	fields := make(map[string]bool, len(dateFields))
	for _, f := range dateFields {
		fields[f] = true
	}

	return &Evaluator{
		dateFields: fields,
		now:        now,
		logger:     slog.Default(),
	}
}

// Evaluate runs the expression against a record. The tree is validated
// first, so a malformed expression returns ErrMalformedExpression instead of
// a bogus result. Evaluation itself is pure boolean logic and cannot fail.
func (e *Evaluator) Evaluate(node *Node, record Record) (bool, error) {
	if err := node.Validate(); err != nil {
		return false, err
	}

	return e.evaluate(node, record), nil
}

func (e *Evaluator) evaluate(node *Node, record Record) bool {
	if node.IsComposite() {
		if strings.ToUpper(node.Op) == "AND" {
			for _, cond := range node.Conditions {
				if !e.evaluate(cond, record) {
					return false
				}
			}
			return true
		}

		// OR
		for _, cond := range node.Conditions {
			if e.evaluate(cond, record) {
				return true
			}
		}
		return false
	}

	return e.evaluateLeaf(node, record)
}

func (e *Evaluator) evaluateLeaf(node *Node, record Record) bool {
	value := strings.ToLower(node.Value)
	fieldValue := strings.ToLower(record.Field(node.Field))

	result := false

	// The date-range shorthand wins over the string operator whenever both
	// the field and the value belong to the configured vocabularies. Invert
	// still applies afterwards, like any other leaf.
	if threshold, ok := dateRanges[value]; ok && e.dateFields[node.Field] {
		result = e.withinDays(node.Field, record.Field(node.Field), threshold)
	} else {
		switch node.Operator {
		case OpContains:
			result = strings.Contains(fieldValue, value)
		case OpEquals:
			result = fieldValue == value
		case OpStartsWith:
			result = strings.HasPrefix(fieldValue, value)
		case OpEndsWith:
			result = strings.HasSuffix(fieldValue, value)
		}
	}

	if node.Invert {
		return !result
	}
	return result
}

// withinDays reports whether the record's date lies strictly less than
// threshold days before today. Empty or unparsable values evaluate to false;
// that is logged rather than raised so one bad record cannot poison a run.
func (e *Evaluator) withinDays(field, dateStr string, threshold int) bool {
	if dateStr == "" {
		return false
	}

	var date time.Time
	var err error
	for _, format := range dateFormats {
		date, err = time.Parse(format, dateStr)
		if err == nil {
			break
		}
	}
	if err != nil {
		e.logger.Warn("unparsable date in record field", "field", field, "value", dateStr)
		return false
	}

	today := e.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	days := int(today.Sub(date).Hours() / 24)
	return days < threshold
}

// Describe renders a short human-readable form of the expression, used in
// failure reports and logs.
func Describe(node *Node) string {
	if node == nil {
		return "<empty>"
	}

	if node.IsComposite() {
		parts := make([]string, 0, len(node.Conditions))
		for _, cond := range node.Conditions {
			parts = append(parts, Describe(cond))
		}
		return "(" + strings.Join(parts, " "+strings.ToUpper(node.Op)+" ") + ")"
	}

	if node.Invert {
		return fmt.Sprintf("NOT %s %s %q", node.Field, node.Operator, node.Value)
	}
	return fmt.Sprintf("%s %s %q", node.Field, node.Operator, node.Value)
}
