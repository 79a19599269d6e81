package tools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type journeyArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (a journeyArgs) Validate() error {
	if a.From == a.To {
		return errors.New("from and to must differ")
	}
	return nil
}

func TestExtractor_ParseAndValidate(t *testing.T) {
	ext, err := NewExtractor[journeyArgs](false)
	require.NoError(t, err)

	args, err := ext.ParseAndValidate([]byte(`{"from": "940GZZLUCTN", "to": "940GZZLULVT"}`))
	require.NoError(t, err)
	assert.Equal(t, "940GZZLUCTN", args.From)
	assert.Equal(t, "940GZZLULVT", args.To)
}

func TestExtractor_InvalidJSON(t *testing.T) {
	ext, err := NewExtractor[journeyArgs](false)
	require.NoError(t, err)
	_, err = ext.ParseAndValidate([]byte(`not json`))
	require.Error(t, err)
	assert.True(t, IsClientError(err))
}

func TestExtractor_SchemaViolation(t *testing.T) {
	ext, err := NewExtractor[journeyArgs](false)
	require.NoError(t, err)
	_, err = ext.ParseAndValidate([]byte(`{"from": 12, "to": "940GZZLULVT"}`))
	require.Error(t, err)
	assert.True(t, IsClientError(err))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExtractor_Layer2Validation(t *testing.T) {
	ext, err := NewExtractor[journeyArgs](false)
	require.NoError(t, err)
	_, err = ext.ParseAndValidate([]byte(`{"from": "same", "to": "same"}`))
	require.Error(t, err)
	assert.True(t, IsClientError(err))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "from and to must differ")
}

func TestExtractor_Schema(t *testing.T) {
	ext, err := NewExtractor[journeyArgs](false)
	require.NoError(t, err)
	schema := ext.Schema()
	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "from")
	assert.Contains(t, props, "to")
}
