// Package schema validates persisted shopping-list documents against a JSON
// Schema before they are decoded into items.
package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ItemList is the JSON Schema (draft-07) of a serialized shopping list: an
// array of objects with a string item and an optional string description.
const ItemList = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "item": {"type": "string"},
      "description": {"type": "string"}
    },
    "required": ["item"]
  }
}`

// maxReported caps how many violations end up in one error message.
const maxReported = 3

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

func itemListSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(ItemList))
	})
	return compiled, compileErr
}

// Validate checks a decoded document (the generic value produced by a JSON or
// YAML decoder) against ItemList. Returns nil if the document is valid.
func Validate(doc any) error {
	s, err := itemListSchema()
	if err != nil {
		return fmt.Errorf("compile item list schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	msgs := make([]string, 0, maxReported)
	for i, desc := range errs {
		if i == maxReported {
			break
		}
		msgs = append(msgs, desc.String())
	}
	msg := strings.Join(msgs, "\n- ")
	if len(errs) > maxReported {
		msg += fmt.Sprintf("\n- ... and %d more", len(errs)-maxReported)
	}
	return fmt.Errorf("schema validation failed:\n- %s", msg)
}
