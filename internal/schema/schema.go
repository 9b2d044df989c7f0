// Package schema declares tool input shapes, validates raw arguments against
// them and renders them as JSON Schema for model-calling runtimes.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Kind is the JSON type of a field.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Field describes one argument. Fields are values: the builder methods return
// modified copies and never touch the receiver.
type Field struct {
	Kind        Kind
	Description string
	Required    bool
	Default     any
	Min         *float64
	Max         *float64
	Enum        []string
	Properties  []Property
	Items       *Field
	MaxItems    int
	// Coerce accepts string encodings of numbers and booleans.
	Coerce bool
}

// Property is a named field of an object.
type Property struct {
	Name  string
	Field Field
}

// Schema is the root object shape of a tool's arguments.
type Schema struct {
	Properties []Property

	// shared by copies made from the same Object call
	compiled *compiledSchema
}

type compiledSchema struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// Object builds a root schema from properties, in declaration order.
func Object(props ...Property) Schema {
	return Schema{Properties: slices.Clone(props), compiled: &compiledSchema{}}
}

// compile returns the JSON Schema validator, compiled once per Object.
func (s Schema) compile() (*jsonschema.Schema, error) {
	if s.compiled == nil {
		return s.build()
	}
	s.compiled.once.Do(func() {
		s.compiled.schema, s.compiled.err = s.build()
	})
	return s.compiled.schema, s.compiled.err
}

func (s Schema) build() (*jsonschema.Schema, error) {
	doc, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}
	compiled, err := compileDocument("input.json", doc)
	if err != nil {
		return nil, fmt.Errorf("input schema: %w", err)
	}
	return compiled, nil
}

// Prop pairs a name with a field.
func Prop(name string, f Field) Property {
	return Property{Name: name, Field: f}
}

func String(desc string) Field  { return Field{Kind: KindString, Description: desc} }
func Number(desc string) Field  { return Field{Kind: KindNumber, Description: desc} }
func Integer(desc string) Field { return Field{Kind: KindInteger, Description: desc} }
func Boolean(desc string) Field { return Field{Kind: KindBoolean, Description: desc} }

// Nested builds an object-valued field.
func Nested(desc string, props ...Property) Field {
	return Field{Kind: KindObject, Description: desc, Properties: slices.Clone(props)}
}

// Array builds an array-valued field whose elements match items.
func Array(desc string, items Field) Field {
	return Field{Kind: KindArray, Description: desc, Items: &items}
}

func (f Field) Require() Field {
	f.Required = true
	return f
}

func (f Field) WithDefault(v any) Field {
	f.Default = v
	return f
}

func (f Field) Between(lo, hi float64) Field {
	f.Min, f.Max = &lo, &hi
	return f
}

func (f Field) AtLeast(lo float64) Field {
	f.Min = &lo
	return f
}

func (f Field) AtMost(hi float64) Field {
	f.Max = &hi
	return f
}

func (f Field) OneOf(values ...string) Field {
	f.Enum = slices.Clone(values)
	return f
}

func (f Field) Limit(n int) Field {
	f.MaxItems = n
	return f
}

func (f Field) Coercible() Field {
	f.Coerce = true
	return f
}

// Check reports declaration mistakes: unknown kinds, enums on non-strings,
// inverted bounds, defaults that do not satisfy their own field, and a root
// that rejects the empty argument set although every field is optional.
func (s Schema) Check() error {
	var errs []FieldError
	checkProps("", s.Properties, &errs)
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	if !s.hasRequired() {
		if _, err := s.Validate(map[string]any{}); err != nil {
			return fmt.Errorf("schema rejects empty arguments: %w", err)
		}
	}
	return nil
}

func (s Schema) hasRequired() bool {
	for _, p := range s.Properties {
		if p.Field.Required && p.Field.Default == nil {
			return true
		}
	}
	return false
}

func checkProps(prefix string, props []Property, errs *[]FieldError) {
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		path := join(prefix, p.Name)
		if p.Name == "" {
			*errs = append(*errs, FieldError{Path: prefix, Reason: "property without a name"})
			continue
		}
		if seen[p.Name] {
			*errs = append(*errs, FieldError{Path: path, Reason: "declared twice"})
		}
		seen[p.Name] = true
		checkField(path, p.Field, errs)
	}
}

func checkField(path string, f Field, errs *[]FieldError) {
	switch f.Kind {
	case KindString, KindBoolean:
	case KindNumber, KindInteger:
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			*errs = append(*errs, FieldError{Path: path, Reason: "minimum is greater than maximum"})
		}
	case KindObject:
		checkProps(path, f.Properties, errs)
	case KindArray:
		if f.Items == nil {
			*errs = append(*errs, FieldError{Path: path, Reason: "array without item shape"})
		} else {
			checkField(path+"[]", *f.Items, errs)
		}
	default:
		*errs = append(*errs, FieldError{Path: path, Reason: fmt.Sprintf("unknown kind %q", f.Kind)})
		return
	}
	if len(f.Enum) > 0 && f.Kind != KindString {
		*errs = append(*errs, FieldError{Path: path, Reason: "enum is only supported on strings"})
	}
	if f.Default != nil {
		bare := f
		bare.Default, bare.Required = nil, false
		_, err := Object(Prop("default", bare)).Validate(map[string]any{"default": f.Default})
		var verr *ValidationError
		if errors.As(err, &verr) {
			for _, e := range verr.Fields {
				*errs = append(*errs, FieldError{Path: path + strings.TrimPrefix(e.Path, "default"), Reason: "default " + e.Reason})
			}
		}
	}
}

// JSONSchema renders the schema as a JSON Schema object document.
func (s Schema) JSONSchema() map[string]any {
	return objectSchema("", s.Properties)
}

func objectSchema(desc string, props []Property) map[string]any {
	properties := make(map[string]any, len(props))
	required := make([]string, 0)
	for _, p := range props {
		properties[p.Name] = fieldSchema(p.Field)
		if p.Field.Required && p.Field.Default == nil {
			required = append(required, p.Name)
		}
	}
	out := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	if desc != "" {
		out["description"] = desc
	}
	return out
}

func fieldSchema(f Field) map[string]any {
	var out map[string]any
	switch f.Kind {
	case KindObject:
		out = objectSchema(f.Description, f.Properties)
	case KindArray:
		out = map[string]any{"type": "array"}
		if f.Items != nil {
			out["items"] = fieldSchema(*f.Items)
		}
		if f.MaxItems > 0 {
			out["maxItems"] = f.MaxItems
		}
	default:
		out = map[string]any{"type": string(f.Kind)}
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	if f.Default != nil {
		out["default"] = f.Default
	}
	if f.Min != nil {
		out["minimum"] = *f.Min
	}
	if f.Max != nil {
		out["maximum"] = *f.Max
	}
	if len(f.Enum) > 0 {
		out["enum"] = slices.Clone(f.Enum)
	}
	return out
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
