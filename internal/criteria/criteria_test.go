package criteria

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeValidate(t *testing.T) {
	tests := []struct {
		name    string
		node    *Node
		wantErr bool
	}{
		{
			name: "valid leaf",
			node: &Node{Field: "evp_name", Operator: OpContains, Value: "roof"},
		},
		{
			name: "valid composite",
			node: &Node{Op: "AND", Conditions: []*Node{
				{Field: "evp_name", Operator: OpContains, Value: "roof"},
				{Field: "statuscode", Operator: OpEquals, Value: "open"},
			}},
		},
		{
			name: "lowercase logical operator",
			node: &Node{Op: "or", Conditions: []*Node{
				{Field: "evp_name", Operator: OpContains, Value: "roof"},
			}},
		},
		{
			name:    "leaf missing field",
			node:    &Node{Operator: OpContains, Value: "roof"},
			wantErr: true,
		},
		{
			name:    "leaf missing operator",
			node:    &Node{Field: "evp_name", Value: "roof"},
			wantErr: true,
		},
		{
			name:    "composite with no conditions",
			node:    &Node{Op: "AND", Conditions: []*Node{}},
			wantErr: true,
		},
		{
			name: "unknown logical operator rejected",
			node: &Node{Op: "XOR", Conditions: []*Node{
				{Field: "evp_name", Operator: OpContains, Value: "roof"},
			}},
			wantErr: true,
		},
		{
			name: "nested invalid leaf",
			node: &Node{Op: "AND", Conditions: []*Node{
				{Field: "evp_name", Operator: OpContains, Value: "roof"},
				{Op: "OR", Conditions: []*Node{{Operator: OpEquals}}},
			}},
			wantErr: true,
		},
		{
			name:    "nil expression",
			node:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.node.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedExpression)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNodeJSONRoundTrip(t *testing.T) {
	raw := `{"op":"OR","conditions":[{"field":"evp_name","operator":"contains","value":"hvac"},{"op":"AND","conditions":[{"field":"statuscode","operator":"equals","value":"open"},{"field":"evp_description","operator":"startsWith","value":"repair","invert":true}]}]}`

	node := &Node{}
	require.NoError(t, json.Unmarshal([]byte(raw), node))

	assert.True(t, node.IsComposite())
	require.Len(t, node.Conditions, 2)
	assert.False(t, node.Conditions[0].IsComposite())
	assert.True(t, node.Conditions[1].Conditions[1].Invert)

	out, err := json.Marshal(node)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestNodeJSONLeafRoundTrip(t *testing.T) {
	raw := `{"field":"statuscode","operator":"equals","value":"open"}`

	node := &Node{}
	require.NoError(t, json.Unmarshal([]byte(raw), node))
	assert.False(t, node.IsComposite())

	out, err := json.Marshal(node)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}
