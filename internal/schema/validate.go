package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxSafeInteger bounds integers so that they survive a float64 round trip.
const maxSafeInteger = 1 << 53

var printer = message.NewPrinter(language.English)

// Validate returns a normalized copy of raw with defaults filled in, declared
// coercions applied, numbers as float64 and integers as int. A nil raw map is
// treated as empty. Constraints are checked against the compiled JSON Schema
// and every failing field is reported, not just the first.
func (s Schema) Validate(raw map[string]any) (map[string]any, error) {
	compiled, err := s.compile()
	if err != nil {
		return nil, err
	}

	var errs []FieldError
	doc := normalizeObject("", s.Properties, raw, &errs)
	if err := compiled.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("validate arguments: %w", err)
		}
		errs = collect(errs, s.Properties, verr)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: dedupe(errs)}
	}
	finalizeObject(s.Properties, doc)
	return doc, nil
}

// normalizeObject copies raw, dropping explicit nulls on declared fields and
// filling defaults. Undeclared keys are kept so the schema reports them.
func normalizeObject(prefix string, props []Property, raw map[string]any, errs *[]FieldError) map[string]any {
	out := make(map[string]any, len(raw)+len(props))
	for k, v := range raw {
		out[k] = v
	}
	for _, p := range props {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			delete(out, p.Name)
			if p.Field.Default == nil {
				continue
			}
			v = p.Field.Default
		}
		out[p.Name] = normalizeValue(join(prefix, p.Name), p.Field, v, errs)
	}
	return out
}

// normalizeValue converts v to its JSON form. Values that cannot be converted
// are returned unchanged for the schema to reject.
func normalizeValue(path string, f Field, v any, errs *[]FieldError) any {
	switch f.Kind {
	case KindString:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
			return rv.String()
		}

	case KindNumber, KindInteger:
		n, ok := toFloat(v, f.Coerce)
		if !ok {
			return v
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			*errs = append(*errs, FieldError{Path: path, Reason: "must be a finite number"})
			return nil
		}
		if f.Kind == KindInteger && n == math.Trunc(n) && math.Abs(n) > maxSafeInteger {
			*errs = append(*errs, FieldError{Path: path, Reason: "must be an integer in range"})
		}
		return n

	case KindBoolean:
		if s, ok := v.(string); ok && f.Coerce {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}

	case KindObject:
		if m, ok := asMap(v); ok {
			return normalizeObject(path, f.Properties, m, errs)
		}

	case KindArray:
		items, ok := asSlice(v)
		if !ok || f.Items == nil {
			return v
		}
		out := make([]any, len(items))
		for i, item := range items {
			if item != nil {
				item = normalizeValue(fmt.Sprintf("%s[%d]", path, i), *f.Items, item, errs)
			}
			out[i] = item
		}
		return out
	}
	return v
}

func finalizeObject(props []Property, obj map[string]any) {
	for _, p := range props {
		if v, ok := obj[p.Name]; ok {
			obj[p.Name] = finalizeValue(p.Field, v)
		}
	}
}

func finalizeValue(f Field, v any) any {
	switch f.Kind {
	case KindInteger:
		if n, ok := v.(float64); ok {
			return int(n)
		}
	case KindObject:
		if m, ok := v.(map[string]any); ok {
			finalizeObject(f.Properties, m)
		}
	case KindArray:
		if items, ok := v.([]any); ok && f.Items != nil {
			for i := range items {
				items[i] = finalizeValue(*f.Items, items[i])
			}
		}
	}
	return v
}

// collect flattens the schema error tree into field errors.
func collect(errs []FieldError, props []Property, verr *jsonschema.ValidationError) []FieldError {
	if len(verr.Causes) > 0 {
		for _, c := range verr.Causes {
			errs = collect(errs, props, c)
		}
		return errs
	}
	path, f := locate(props, verr.InstanceLocation)
	switch k := verr.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			errs = append(errs, FieldError{Path: join(path, name), Reason: "is required"})
		}
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			errs = append(errs, FieldError{Path: join(path, name), Reason: "is not a declared field"})
		}
	default:
		errs = append(errs, FieldError{Path: path, Reason: reason(verr.ErrorKind, f)})
	}
	return errs
}

// locate renders an instance location as a dotted/indexed path and returns
// the field declared there.
func locate(props []Property, loc []string) (string, Field) {
	cur := Field{Kind: KindObject, Properties: props}
	path := ""
	for _, tok := range loc {
		if cur.Kind == KindArray {
			path += "[" + tok + "]"
			if cur.Items != nil {
				cur = *cur.Items
			} else {
				cur = Field{}
			}
			continue
		}
		path = join(path, tok)
		i := slices.IndexFunc(cur.Properties, func(p Property) bool { return p.Name == tok })
		if i < 0 {
			cur = Field{}
			continue
		}
		cur = cur.Properties[i].Field
	}
	return path, cur
}

func reason(k jsonschema.ErrorKind, f Field) string {
	switch k := k.(type) {
	case *kind.Type:
		if k.Got == "null" {
			return "must not be null"
		}
		switch f.Kind {
		case KindInteger, KindObject, KindArray:
			return "must be an " + string(f.Kind)
		case KindString, KindNumber, KindBoolean:
			return "must be a " + string(f.Kind)
		}
		return "must be " + strings.Join(k.Want, " or ")
	case *kind.Enum:
		return "must be one of " + strings.Join(f.Enum, ", ")
	case *kind.Minimum:
		want, _ := k.Want.Float64()
		return "must be >= " + formatNumber(want)
	case *kind.Maximum:
		want, _ := k.Want.Float64()
		return "must be <= " + formatNumber(want)
	case *kind.MaxItems:
		return fmt.Sprintf("must contain at most %d items", k.Want)
	case *kind.InvalidJsonValue:
		return "is not a JSON value"
	}
	return k.LocalizedString(printer)
}

// dedupe orders errors by path and keeps the first error per path, so a
// normalization failure wins over the schema's report on the same value.
func dedupe(errs []FieldError) []FieldError {
	slices.SortStableFunc(errs, func(a, b FieldError) int { return strings.Compare(a.Path, b.Path) })
	return slices.CompactFunc(errs, func(a, b FieldError) bool { return a.Path == b.Path })
}

func toFloat(v any, coerce bool) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		if !coerce {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32:
		return rv.Float(), true
	}
	return 0, false
}

func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
