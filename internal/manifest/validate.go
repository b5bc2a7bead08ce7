package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed component-detection-manifest.schema.json
var bundledSchema []byte

const bundledSchemaURL = "component-detection-manifest.schema.json"

// Validator checks manifests against the bundled component-detection schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the bundled schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(bundledSchemaURL, bytes.NewReader(bundledSchema)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	schema, err := compiler.Compile(bundledSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns a descriptive error when content does not match the schema.
func (v *Validator) Validate(content []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	if err := v.schema.Validate(document); err != nil {
		return fmt.Errorf("manifest does not match schema: %w", err)
	}
	return nil
}
