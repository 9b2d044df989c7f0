package tools

import (
	"context"
	"strings"

	"github.com/aitools/aitools/internal/schema"
)

type MarkdownInput struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Bullets []string `json:"bullets,omitempty"`
	Quote   string   `json:"quote,omitempty"`
}

type MarkdownResult struct {
	Markdown string `json:"markdown"`
}

// Markdown assembles a small markdown document locally.
func Markdown() (*Tool[MarkdownInput, MarkdownResult], error) {
	return New(Spec[MarkdownInput, MarkdownResult]{
		Name:        "markdown",
		Description: "Render a title, body, bullet list and quote as markdown.",
		Input: schema.Object(
			schema.Prop("title", schema.String("Top level heading.").WithDefault("Hello World")),
			schema.Prop("body", schema.String("Paragraph text; inline markdown is kept.").WithDefault("This is **markdown**.")),
			schema.Prop("bullets", schema.Array("Bullet list items.", schema.String("")).Limit(50)),
			schema.Prop("quote", schema.String("Closing blockquote.")),
		),
		Policy: PolicyFailLoud,
		Execute: func(_ context.Context, in MarkdownInput) (MarkdownResult, error) {
			return MarkdownResult{Markdown: renderMarkdown(in)}, nil
		},
	})
}

func renderMarkdown(in MarkdownInput) string {
	var blocks []string
	if t := strings.TrimSpace(in.Title); t != "" {
		blocks = append(blocks, "# "+t)
	}
	if b := strings.TrimSpace(in.Body); b != "" {
		blocks = append(blocks, b)
	}
	var items []string
	for _, item := range in.Bullets {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, "- "+item)
		}
	}
	if len(items) > 0 {
		blocks = append(blocks, strings.Join(items, "\n"))
	}
	if q := strings.TrimSpace(in.Quote); q != "" {
		lines := strings.Split(q, "\n")
		for i, l := range lines {
			lines[i] = "> " + l
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
