package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	invjs "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Shape is the compiled JSON Schema of a tool's output type.
type Shape struct {
	doc      json.RawMessage
	compiled *jsonschema.Schema
}

// Reflect derives the output shape of T from its struct definition. Fields
// without omitempty are required; slices must be non-nil to pass Check.
func Reflect[T any]() (*Shape, error) {
	r := &invjs.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var zero T
	doc, err := json.Marshal(r.Reflect(zero))
	if err != nil {
		return nil, fmt.Errorf("marshal output schema: %w", err)
	}
	return compileShape(doc)
}

// ParseShape compiles a JSON Schema document.
func ParseShape(doc []byte) (*Shape, error) {
	return compileShape(doc)
}

func compileShape(doc []byte) (*Shape, error) {
	compiled, err := compileDocument("output.json", doc)
	if err != nil {
		return nil, fmt.Errorf("output schema: %w", err)
	}
	return &Shape{doc: json.RawMessage(doc), compiled: compiled}, nil
}

// compileDocument parses and compiles one self-contained JSON Schema document.
func compileDocument(name string, doc []byte) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
}

// Document returns the JSON Schema document.
func (s *Shape) Document() json.RawMessage {
	return s.doc
}

// Check validates v, a Go value, against the shape.
func (s *Shape) Check(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &ShapeError{Err: fmt.Errorf("marshal: %w", err)}
	}
	return s.CheckRaw(raw)
}

// CheckRaw validates an encoded JSON document against the shape.
func (s *Shape) CheckRaw(raw []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ShapeError{Err: fmt.Errorf("parse: %w", err)}
	}
	if err := s.compiled.Validate(inst); err != nil {
		return &ShapeError{Err: err}
	}
	return nil
}
