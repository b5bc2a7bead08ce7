package manifest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemaURL = "https://json.schemastore.org/component-detection-manifest.json"

func TestSetSchema(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected map[string]any
	}{
		{
			name:     "adds schema to a simple document",
			input:    `{"a":1}`,
			expected: map[string]any{"$schema": "S", "a": float64(1)},
		},
		{
			name:     "overwrites an existing schema",
			input:    `{"$schema":"old","a":1}`,
			expected: map[string]any{"$schema": "S", "a": float64(1)},
		},
		{
			name:  "keeps nested values",
			input: `{"registrations":[{"component":{"type":"git","git":{"repositoryUrl":"https://example.com/a?b=1&c=2"}}}],"version":1}`,
			expected: map[string]any{
				"$schema": "S",
				"registrations": []any{map[string]any{"component": map[string]any{
					"type": "git",
					"git":  map[string]any{"repositoryUrl": "https://example.com/a?b=1&c=2"},
				}}},
				"version": float64(1),
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := SetSchema([]byte(tc.input), "S")
			require.NoError(t, err)

			var actual map[string]any
			require.NoError(t, json.Unmarshal(out, &actual))
			assert.Equal(t, tc.expected, actual)
			assert.True(t, strings.HasPrefix(string(out), "{\n  \"$schema\":"), "schema must be the first key: %s", out)
			assert.True(t, strings.HasSuffix(string(out), "}\n"))
			assert.NotContains(t, string(out), `\u0026`)
		})
	}
}

func TestSetSchema_StableAcrossKeyOrder(t *testing.T) {
	first, err := SetSchema([]byte(`{"version":1,"registrations":[],"a":{"z":1,"y":2}}`), testSchemaURL)
	require.NoError(t, err)
	second, err := SetSchema([]byte("{\n\t\"a\": {\"z\": 1, \"y\": 2},\n\t\"registrations\": [],\n\t\"version\": 1\n}"), testSchemaURL)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	rerun, err := SetSchema(first, testSchemaURL)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(rerun))

	assert.Less(t, strings.Index(string(first), `"a"`), strings.Index(string(first), `"registrations"`))
	assert.Less(t, strings.Index(string(first), `"registrations"`), strings.Index(string(first), `"version"`))
}

func TestSetSchema_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "invalid json", input: `{"a":`},
		{name: "array", input: `[1,2]`},
		{name: "null", input: `null`},
		{name: "duplicate keys", input: `{"a":1,"a":2}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SetSchema([]byte(tc.input), testSchemaURL)
			assert.Error(t, err)
		})
	}

	_, err := SetSchema([]byte(`"text"`), testSchemaURL)
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestEquivalent(t *testing.T) {
	assert.True(t, Equivalent([]byte(`{"a":1,"b":[1,2]}`), []byte("{\n  \"b\": [1, 2],\n  \"a\": 1\n}\n")))
	assert.False(t, Equivalent([]byte(`{"a":1}`), []byte(`{"$schema":"S","a":1}`)))
}

func TestValidator(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	testCases := []struct {
		name        string
		input       string
		expectError bool
	}{
		{
			name:  "valid manifest",
			input: `{"$schema":"S","registrations":[{"component":{"type":"git","git":{"commitHash":"abc"}}}],"version":1}`,
		},
		{name: "missing registrations", input: `{"version":1}`, expectError: true},
		{name: "component without type", input: `{"registrations":[{"component":{}}]}`, expectError: true},
		{name: "not json", input: `nope`, expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate([]byte(tc.input))
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
