package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/catalog"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	items := c.Tools()
	require.Len(t, items, 10)
	assert.Equal(t, "search-products", items[0].Name)
	assert.Equal(t, "qrcode", items[9].Name)

	pack, ok := c.Bundle()
	require.True(t, ok)
	assert.Equal(t, "npx shadcn@latest add https://ai-tools-registry.vercel.app/r/tool-pack.json", pack.Install)
}

func TestLookupIsPermissive(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	_, ok := c.Lookup("does-not-exist")
	assert.False(t, ok)

	it, ok := c.Lookup("weather")
	require.True(t, ok)
	assert.Equal(t, "Weather", it.Title)
	assert.Contains(t, it.OpenInV0, "/r/weather.json")
}

func TestParseRejectsBrokenManifests(t *testing.T) {
	cases := map[string]string{
		"duplicate":     "items:\n  - name: a\n  - name: a\n",
		"nameless":      "items:\n  - title: x\n",
		"not yaml":      "items: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestToolsSkipsMissingItems(t *testing.T) {
	c, err := catalog.Parse([]byte("registry: https://r.example/\norder: [a, ghost]\nitems:\n  - name: a\n    title: A\n"))
	require.NoError(t, err)
	require.Len(t, c.Tools(), 1)
	assert.Equal(t, "npx shadcn@latest add https://r.example/r/a.json", c.Tools()[0].Install)
	_, ok := c.Bundle()
	assert.False(t, ok)
}
