// Package manifest edits component-detection manifests.
package manifest

import (
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// SchemaKey is the top-level key that points editors at the manifest schema.
const SchemaKey = "$schema"

// ErrNotObject is returned when a manifest is valid JSON but not an object.
var ErrNotObject = errors.New("manifest is not a JSON object")

// SetSchema sets the top-level $schema key of content to schemaURL and
// re-serializes the document with two-space indentation, top-level keys in
// sorted order and a trailing newline. Nested values keep their key order.
func SetSchema(content []byte, schemaURL string) ([]byte, error) {
	value := jsontext.Value(content)
	if !value.IsValid() {
		return nil, errors.New("manifest is not valid JSON")
	}
	if value.Kind() != '{' {
		return nil, ErrNotObject
	}

	var document map[string]jsontext.Value
	if err := json.Unmarshal(content, &document); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if document == nil {
		return nil, ErrNotObject
	}

	schema, err := json.Marshal(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema url: %w", err)
	}
	document[SchemaKey] = schema

	out, err := json.Marshal(document,
		json.Deterministic(true),
		jsontext.WithIndent("  "),
		jsontext.SpaceAfterColon(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to format manifest: %w", err)
	}
	return append(out, '\n'), nil
}

// Equivalent reports whether two JSON documents are semantically equal,
// ignoring formatting and key order.
func Equivalent(a, b []byte) bool {
	return jsonpatch.Equal(a, b)
}
