package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_TagEnrichment(t *testing.T) {
	type args struct {
		StopPointType string `json:"stop_point_type" description:"A TFL stop point type" enum:"NaptanMetroStation, NaptanRailStation"`
	}
	schemaMap, resolved, err := generateSchema[args](false)
	require.NoError(t, err)
	require.NotNil(t, resolved)

	props, ok := schemaMap["properties"].(map[string]any)
	require.True(t, ok)
	prop, ok := props["stop_point_type"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A TFL stop point type", prop["description"])
	assert.Equal(t, []any{"NaptanMetroStation", "NaptanRailStation"}, prop["enum"])
}

func TestGenerateSchema_StrictMode(t *testing.T) {
	type args struct {
		A string `json:"a"`
		B string `json:"b,omitempty"`
	}
	schemaMap, _, err := generateSchema[args](true)
	require.NoError(t, err)
	assert.Equal(t, false, schemaMap["additionalProperties"])
	assert.Equal(t, []any{"a", "b"}, schemaMap["required"], "strict mode requires every property, sorted")
}

func TestGenerateSchema_StripsIDs(t *testing.T) {
	type args struct {
		A string `json:"a"`
	}
	schemaMap, _, err := generateSchema[args](false)
	require.NoError(t, err)
	_, hasID := schemaMap["$id"]
	assert.False(t, hasID)
}

func TestWalkSchema_VisitsNestedNodes(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"nested": map[string]any{"type": "object", "properties": map[string]any{}},
		},
		"anyOf": []any{
			map[string]any{"type": "string"},
		},
	}
	var visits int
	walkSchema(schema, func(map[string]any) { visits++ })
	assert.Equal(t, 5, visits)
}
