package store

import (
	"encoding/json"
	"fmt"

	"github.com/hecate-project/hecate/internal/herr"
	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator wraps a configured JSON Schema (draft-04) document
// used to validate feature properties, per spec.md §4.1 step 3c and
// §6 ("JSON Schema (draft-04) for property validation"). A nil
// *SchemaValidator means no schema is configured and validation is
// skipped.
type SchemaValidator struct {
	schema *gojsonschema.Schema
	raw    json.RawMessage
}

// LoadSchema parses a JSON Schema document from bytes, the contents
// of the file named by the --schema CLI flag.
func LoadSchema(data []byte) (*SchemaValidator, error) {
	loader := gojsonschema.NewBytesLoader(data)
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}
	return &SchemaValidator{schema: schema, raw: json.RawMessage(data)}, nil
}

// Raw returns the schema document as configured, for GET /api/schema.
func (v *SchemaValidator) Raw() json.RawMessage {
	if v == nil {
		return json.RawMessage(`{}`)
	}
	return v.raw
}

// Validate checks properties against the configured schema. It
// returns a SCHEMA_VIOLATION herr.Error on failure, per spec.md §7.
func (v *SchemaValidator) Validate(properties map[string]interface{}) error {
	if v == nil || v.schema == nil {
		return nil
	}

	doc := gojsonschema.NewGoLoader(properties)
	result, err := v.schema.Validate(doc)
	if err != nil {
		return herr.New(herr.Internal, "schema validation error: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return herr.New(herr.SchemaViolation, "properties failed schema validation").WithDetail(msgs)
	}
	return nil
}
