package schema_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/schema"
)

func searchSchema() schema.Schema {
	return schema.Object(
		schema.Prop("query", schema.String("A natural language query.").Require()),
		schema.Prop("limit", schema.Integer("Maximum results.").Between(1, 250).WithDefault(10)),
		schema.Prop("unit", schema.String("Unit.").OneOf("C", "F").WithDefault("C")),
		schema.Prop("filters", schema.Array("Filters.", schema.Nested("",
			schema.Prop("available", schema.Boolean("Available for sale.").WithDefault(true)),
			schema.Prop("price", schema.Nested("Price range.",
				schema.Prop("min", schema.Number("Minimum.").AtLeast(0)),
				schema.Prop("max", schema.Number("Maximum.")),
			)),
		)).Limit(3)),
	)
}

func TestValidateAppliesDefaults(t *testing.T) {
	out, err := searchSchema().Validate(map[string]any{"query": "mugs"})
	require.NoError(t, err)
	assert.Equal(t, "mugs", out["query"])
	assert.Equal(t, 10, out["limit"])
	assert.Equal(t, "C", out["unit"])
	_, hasFilters := out["filters"]
	assert.False(t, hasFilters, "optional field without default must stay absent")
}

func TestValidateNestedDefaults(t *testing.T) {
	out, err := searchSchema().Validate(map[string]any{
		"query":   "pans",
		"filters": []any{map[string]any{"price": map[string]any{"min": 10.0}}},
	})
	require.NoError(t, err)
	filters := out["filters"].([]any)
	require.Len(t, filters, 1)
	first := filters[0].(map[string]any)
	assert.Equal(t, true, first["available"])
	assert.Equal(t, 10.0, first["price"].(map[string]any)["min"])
}

func TestValidateReportsEveryField(t *testing.T) {
	_, err := searchSchema().Validate(map[string]any{
		"limit": 500,
		"unit":  "K",
		"filters": []any{
			map[string]any{"price": map[string]any{"min": -1}},
		},
		"extra": true,
	})
	require.Error(t, err)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("query"), "missing required field")
	assert.True(t, verr.Has("limit"), "out of range")
	assert.True(t, verr.Has("unit"), "not in enum")
	assert.True(t, verr.Has("filters[0].price.min"), "nested bound")
	assert.True(t, verr.Has("extra"), "undeclared field")
	assert.Len(t, verr.Fields, 5)
}

func TestValidateReasons(t *testing.T) {
	_, err := searchSchema().Validate(map[string]any{
		"query":   7,
		"limit":   500,
		"unit":    "K",
		"filters": []any{nil},
	})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []schema.FieldError{
		{Path: "filters[0]", Reason: "must not be null"},
		{Path: "limit", Reason: "must be <= 250"},
		{Path: "query", Reason: "must be a string"},
		{Path: "unit", Reason: "must be one of C, F"},
	}, verr.Fields)
}

func TestValidateRejectsUnsafeIntegers(t *testing.T) {
	s := schema.Object(schema.Prop("n", schema.Integer("Unbounded.")))

	for _, n := range []float64{1e20, -1e20, 1<<53 + 2} {
		_, err := s.Validate(map[string]any{"n": n})
		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr, "%v", n)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, schema.FieldError{Path: "n", Reason: "must be an integer in range"}, verr.Fields[0])
	}

	out, err := s.Validate(map[string]any{"n": float64(1 << 53)})
	require.NoError(t, err)
	assert.Equal(t, 1<<53, out["n"])
}

func TestValidateAcceptsGoValues(t *testing.T) {
	s := schema.Object(
		schema.Prop("count", schema.Integer("").Require()),
		schema.Prop("tags", schema.Array("", schema.String(""))),
		schema.Prop("opts", schema.Nested("", schema.Prop("ratio", schema.Number("")))),
	)
	out, err := s.Validate(map[string]any{
		"count": int64(3),
		"tags":  []string{"a", "b"},
		"opts":  map[string]float32{"ratio": 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out["count"])
	assert.Equal(t, []any{"a", "b"}, out["tags"])
	assert.Equal(t, map[string]any{"ratio": 0.5}, out["opts"])
}

func TestValidateRejectsNonFinite(t *testing.T) {
	s := schema.Object(schema.Prop("x", schema.Number("").Require()))
	_, err := s.Validate(map[string]any{"x": math.Inf(1)})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []schema.FieldError{{Path: "x", Reason: "must be a finite number"}}, verr.Fields)
}

func TestValidateIntegerRejectsFraction(t *testing.T) {
	_, err := searchSchema().Validate(map[string]any{"query": "q", "limit": 2.5})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be an integer", verr.Fields[0].Reason)
}

func TestValidateCoercion(t *testing.T) {
	s := schema.Object(
		schema.Prop("a", schema.Number("").Coercible().Require()),
		schema.Prop("b", schema.Number("").Require()),
	)

	out, err := s.Validate(map[string]any{"a": " 7.5 ", "b": 1})
	require.NoError(t, err)
	assert.Equal(t, 7.5, out["a"])

	_, err = s.Validate(map[string]any{"a": 1, "b": "3"})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("b"), "coercion only applies where declared")
}

func TestValidateMaxItems(t *testing.T) {
	_, err := searchSchema().Validate(map[string]any{
		"query":   "q",
		"filters": []any{map[string]any{}, map[string]any{}, map[string]any{}, map[string]any{}},
	})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("filters"))
}

func TestValidateNullIsAbsent(t *testing.T) {
	out, err := searchSchema().Validate(map[string]any{"query": "q", "limit": nil})
	require.NoError(t, err)
	assert.Equal(t, 10, out["limit"])
}

func TestCheckRejectsBadDeclarations(t *testing.T) {
	cases := map[string]schema.Schema{
		"inverted bounds": schema.Object(schema.Prop("n", schema.Number("").Between(5, 1))),
		"enum on number":  schema.Object(schema.Prop("n", schema.Number("").OneOf("a"))),
		"bad default":     schema.Object(schema.Prop("u", schema.String("").OneOf("C", "F").WithDefault("K"))),
		"duplicate":       schema.Object(schema.Prop("a", schema.String("")), schema.Prop("a", schema.String(""))),
		"array no items":  schema.Object(schema.Prop("a", schema.Field{Kind: schema.KindArray})),
		"unknown kind":    schema.Object(schema.Prop("a", schema.Field{Kind: "date"})),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Check())
		})
	}
}

func TestCheckAcceptsEmptyWhenAllOptional(t *testing.T) {
	s := schema.Object(
		schema.Prop("timeZone", schema.String("").WithDefault("UTC")),
		schema.Prop("verbose", schema.Boolean("")),
	)
	require.NoError(t, s.Check())
	out, err := s.Validate(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"timeZone": "UTC"}, out)
}

func TestJSONSchema(t *testing.T) {
	doc := searchSchema().JSONSchema()
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, []string{"query"}, doc["required"])

	props := doc["properties"].(map[string]any)
	limit := props["limit"].(map[string]any)
	assert.Equal(t, "integer", limit["type"])
	assert.Equal(t, 1.0, limit["minimum"])
	assert.Equal(t, 250.0, limit["maximum"])
	assert.Equal(t, 10, limit["default"])

	unit := props["unit"].(map[string]any)
	assert.Equal(t, []string{"C", "F"}, unit["enum"])

	filters := props["filters"].(map[string]any)
	assert.Equal(t, "array", filters["type"])
	assert.Equal(t, 3, filters["maxItems"])
	items := filters["items"].(map[string]any)
	assert.Equal(t, "object", items["type"])
}

func TestDecode(t *testing.T) {
	type price struct {
		Min *float64 `json:"min,omitempty"`
	}
	type filter struct {
		Available bool   `json:"available"`
		Price     *price `json:"price,omitempty"`
	}
	type input struct {
		Query   string   `json:"query"`
		Limit   int      `json:"limit"`
		Unit    string   `json:"unit"`
		Filters []filter `json:"filters,omitempty"`
	}

	out, err := searchSchema().Validate(map[string]any{
		"query":   "pans",
		"filters": []any{map[string]any{"price": map[string]any{"min": 3}}},
	})
	require.NoError(t, err)

	var in input
	require.NoError(t, schema.Decode(out, &in))
	assert.Equal(t, "pans", in.Query)
	assert.Equal(t, 10, in.Limit)
	require.Len(t, in.Filters, 1)
	assert.True(t, in.Filters[0].Available)
	require.NotNil(t, in.Filters[0].Price)
	assert.Equal(t, 3.0, *in.Filters[0].Price.Min)
}
