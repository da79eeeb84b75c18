package criteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapRecord map[string]string

func (m mapRecord) Field(name string) string {
	return m[name]
}

func newTestEvaluator(now time.Time) *Evaluator {
	return NewEvaluator([]string{"evp_opendate", "evp_posteddate"}, func() time.Time { return now })
}

func TestEvaluateLeafOperators(t *testing.T) {
	record := mapRecord{
		"evp_name":   "Roof Replacement Project",
		"statuscode": "Open",
	}

	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"contains match", &Node{Field: "evp_name", Operator: OpContains, Value: "replacement"}, true},
		{"contains miss", &Node{Field: "evp_name", Operator: OpContains, Value: "paving"}, false},
		{"equals case-insensitive", &Node{Field: "statuscode", Operator: OpEquals, Value: "OPEN"}, true},
		{"equals miss", &Node{Field: "statuscode", Operator: OpEquals, Value: "closed"}, false},
		{"startsWith match", &Node{Field: "evp_name", Operator: OpStartsWith, Value: "roof"}, true},
		{"startsWith miss", &Node{Field: "evp_name", Operator: OpStartsWith, Value: "project"}, false},
		{"endsWith match", &Node{Field: "evp_name", Operator: OpEndsWith, Value: "Project"}, true},
		{"endsWith miss", &Node{Field: "evp_name", Operator: OpEndsWith, Value: "roof"}, false},
		{"invert flips result", &Node{Field: "statuscode", Operator: OpEquals, Value: "open", Invert: true}, false},
		{"invert on miss", &Node{Field: "statuscode", Operator: OpEquals, Value: "closed", Invert: true}, true},
		{"absent field contains non-empty", &Node{Field: "no_such_field", Operator: OpContains, Value: "x"}, false},
		{"absent field equals empty", &Node{Field: "no_such_field", Operator: OpEquals, Value: ""}, true},
		{"unknown comparison operator is false", &Node{Field: "statuscode", Operator: "matches", Value: "open"}, false},
	}

	e := newTestEvaluator(time.Now())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(tt.node, record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateInvertIsNegation(t *testing.T) {
	record := mapRecord{"evp_name": "Bridge Painting"}
	e := newTestEvaluator(time.Now())

	for _, op := range []string{OpContains, OpEquals, OpStartsWith, OpEndsWith} {
		for _, value := range []string{"bridge", "painting", "bridge painting", "culvert"} {
			plain, err := e.Evaluate(&Node{Field: "evp_name", Operator: op, Value: value}, record)
			require.NoError(t, err)
			inverted, err := e.Evaluate(&Node{Field: "evp_name", Operator: op, Value: value, Invert: true}, record)
			require.NoError(t, err)
			assert.Equal(t, plain, !inverted, "op=%s value=%s", op, value)
		}
	}
}

func TestEvaluateComposite(t *testing.T) {
	record := mapRecord{
		"evp_name":   "HVAC Maintenance",
		"statuscode": "Open",
	}

	isHVAC := &Node{Field: "evp_name", Operator: OpContains, Value: "hvac"}
	isOpen := &Node{Field: "statuscode", Operator: OpEquals, Value: "open"}
	isClosed := &Node{Field: "statuscode", Operator: OpEquals, Value: "closed"}

	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"AND all true", &Node{Op: "AND", Conditions: []*Node{isHVAC, isOpen}}, true},
		{"AND one false", &Node{Op: "AND", Conditions: []*Node{isHVAC, isClosed}}, false},
		{"OR one true", &Node{Op: "OR", Conditions: []*Node{isClosed, isOpen}}, true},
		{"OR all false", &Node{Op: "OR", Conditions: []*Node{isClosed, isClosed}}, false},
		{"lowercase and", &Node{Op: "and", Conditions: []*Node{isHVAC, isOpen}}, true},
		{"mixed-case Or", &Node{Op: "Or", Conditions: []*Node{isClosed, isOpen}}, true},
		{"single child AND", &Node{Op: "AND", Conditions: []*Node{isClosed}}, false},
		{
			"nested composite",
			&Node{Op: "AND", Conditions: []*Node{
				isHVAC,
				{Op: "OR", Conditions: []*Node{isClosed, isOpen}},
			}},
			true,
		},
	}

	e := newTestEvaluator(time.Now())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(tt.node, record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateMalformed(t *testing.T) {
	e := newTestEvaluator(time.Now())
	record := mapRecord{}

	_, err := e.Evaluate(&Node{Op: "NAND", Conditions: []*Node{{Field: "a", Operator: OpEquals}}}, record)
	assert.ErrorIs(t, err, ErrMalformedExpression)

	_, err = e.Evaluate(&Node{Field: "a"}, record)
	assert.ErrorIs(t, err, ErrMalformedExpression)
}

func TestEvaluateDateRange(t *testing.T) {
	// today fixed at 01/03/2024
	now := time.Date(2024, 1, 3, 15, 30, 0, 0, time.Local)
	e := newTestEvaluator(now)

	tests := []struct {
		name   string
		record mapRecord
		node   *Node
		want   bool
	}{
		{
			"two days ago within last_3_days",
			mapRecord{"evp_opendate": "01/01/2024"},
			&Node{Field: "evp_opendate", Operator: OpEquals, Value: "last_3_days"},
			true,
		},
		{
			"two days ago outside last_1_day",
			mapRecord{"evp_opendate": "01/01/2024"},
			&Node{Field: "evp_opendate", Operator: OpEquals, Value: "last_1_day"},
			false,
		},
		{
			"today within last_1_day",
			mapRecord{"evp_opendate": "01/03/2024"},
			&Node{Field: "evp_opendate", Operator: OpEquals, Value: "last_1_day"},
			true,
		},
		{
			"six days ago within last_7_days",
			mapRecord{"evp_posteddate": "12/28/2023"},
			&Node{Field: "evp_posteddate", Operator: OpEquals, Value: "last_7_days"},
			true,
		},
		{
			"seven days ago outside last_7_days",
			mapRecord{"evp_posteddate": "12/27/2023"},
			&Node{Field: "evp_posteddate", Operator: OpEquals, Value: "last_7_days"},
			false,
		},
		{
			"full portal format with time of day",
			mapRecord{"evp_opendate": "1/2/2024 4:15 PM"},
			&Node{Field: "evp_opendate", Operator: OpEquals, Value: "last_3_days"},
			true,
		},
		{
			"empty date field is false",
			mapRecord{"evp_opendate": ""},
			&Node{Field: "evp_opendate", Operator: OpEquals, Value: "last_3_days"},
			false,
		},
		{
			"unparsable date is false",
			mapRecord{"evp_opendate": "soon"},
			&Node{Field: "evp_opendate", Operator: OpEquals, Value: "last_3_days"},
			false,
		},
		{
			"shorthand wins over string operator",
			mapRecord{"evp_opendate": "01/01/2024"},
			&Node{Field: "evp_opendate", Operator: OpContains, Value: "last_3_days"},
			true,
		},
		{
			"inverted shorthand inside window",
			mapRecord{"evp_opendate": "01/01/2024"},
			&Node{Field: "evp_opendate", Operator: OpEquals, Value: "last_3_days", Invert: true},
			false,
		},
		{
			"inverted shorthand outside window",
			mapRecord{"evp_opendate": "01/01/2024"},
			&Node{Field: "evp_opendate", Operator: OpEquals, Value: "last_1_day", Invert: true},
			true,
		},
		{
			"non-date field treats token as plain string",
			mapRecord{"evp_name": "last_3_days"},
			&Node{Field: "evp_name", Operator: OpEquals, Value: "last_3_days"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(tt.node, tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribe(t *testing.T) {
	node := &Node{Op: "AND", Conditions: []*Node{
		{Field: "evp_name", Operator: OpContains, Value: "hvac"},
		{Field: "statuscode", Operator: OpEquals, Value: "closed", Invert: true},
	}}

	assert.Equal(t, `(evp_name contains "hvac" AND NOT statuscode equals "closed")`, Describe(node))
}
