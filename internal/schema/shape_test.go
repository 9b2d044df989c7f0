package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/schema"
)

type headline struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type headlines struct {
	Topic string     `json:"topic"`
	Items []headline `json:"items"`
}

func TestShapeAcceptsConformingValue(t *testing.T) {
	shape, err := schema.Reflect[headlines]()
	require.NoError(t, err)

	err = shape.Check(headlines{Topic: "AI", Items: []headline{{ID: "1", Title: "t"}}})
	assert.NoError(t, err)
	assert.NotEmpty(t, shape.Document())
}

func TestShapeRejectsNilSlice(t *testing.T) {
	shape, err := schema.Reflect[headlines]()
	require.NoError(t, err)

	err = shape.Check(headlines{Topic: "AI"})
	var serr *schema.ShapeError
	assert.ErrorAs(t, err, &serr)
}

func TestShapeCheckRaw(t *testing.T) {
	shape, err := schema.Reflect[headlines]()
	require.NoError(t, err)

	assert.NoError(t, shape.CheckRaw([]byte(`{"topic":"AI","items":[]}`)))

	var serr *schema.ShapeError
	assert.ErrorAs(t, shape.CheckRaw([]byte(`{"topic":"AI","items":[{"id":1}]}`)), &serr)
	assert.ErrorAs(t, shape.CheckRaw([]byte(`{"items":[]}`)), &serr)
	assert.ErrorAs(t, shape.CheckRaw([]byte(`not json`)), &serr)
}
