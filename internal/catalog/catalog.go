// Package catalog holds the registry-site metadata shown next to each tool:
// titles, categories, creators and install commands.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var manifest []byte

// Item is one registry entry.
type Item struct {
	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Creators    []string `yaml:"creators" json:"creators,omitempty"`
	Component   bool     `yaml:"component" json:"component"`
	Keywords    []string `yaml:"keywords" json:"-"`
	Install     string   `yaml:"-" json:"install"`
	OpenInV0    string   `yaml:"-" json:"openInV0"`
}

// Catalog is the parsed manifest.
type Catalog struct {
	Registry string   `yaml:"registry"`
	Title    string   `yaml:"title"`
	Docs     string   `yaml:"docs"`
	Pack     string   `yaml:"pack"`
	Order    []string `yaml:"order"`
	Items    []Item   `yaml:"items"`

	byName map[string]int
}

// Default parses the embedded manifest.
func Default() (*Catalog, error) {
	return Parse(manifest)
}

// Parse reads a manifest. Ordered names without an item are tolerated.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c.Registry = strings.TrimRight(c.Registry, "/")
	c.byName = make(map[string]int, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]
		if it.Name == "" {
			return nil, fmt.Errorf("catalog item %d has no name", i)
		}
		if _, dup := c.byName[it.Name]; dup {
			return nil, fmt.Errorf("catalog item %q listed twice", it.Name)
		}
		it.Install = c.InstallCommand(it.Name)
		it.OpenInV0 = "https://v0.dev/chat/api/open?url=" + c.itemURL(it.Name)
		c.byName[it.Name] = i
	}
	return &c, nil
}

func (c *Catalog) itemURL(name string) string {
	return c.Registry + "/r/" + name + ".json"
}

// InstallCommand is the shadcn CLI command that installs name.
func (c *Catalog) InstallCommand(name string) string {
	return "npx shadcn@latest add " + c.itemURL(name)
}

// Lookup returns the item for name. Unknown names are not an error.
func (c *Catalog) Lookup(name string) (Item, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Item{}, false
	}
	return c.Items[i], true
}

// Tools returns the ordered tool items, skipping names without an item.
func (c *Catalog) Tools() []Item {
	out := make([]Item, 0, len(c.Order))
	for _, name := range c.Order {
		if it, ok := c.Lookup(name); ok {
			out = append(out, it)
		}
	}
	return out
}

// Bundle returns the pack item, if the manifest declares one.
func (c *Catalog) Bundle() (Item, bool) {
	if c.Pack == "" {
		return Item{}, false
	}
	return c.Lookup(c.Pack)
}
