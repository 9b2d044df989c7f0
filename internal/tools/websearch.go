package tools

import (
	"context"

	"github.com/aitools/aitools/internal/schema"
	"github.com/aitools/aitools/internal/service"
)

type WebSearchInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

type WebSearchResult struct {
	Query   string      `json:"query"`
	Results []WebResult `json:"results"`
}

// WebSearch queries a web search API. The fallback is an empty result set.
func WebSearch(svc *service.WebSearchService) (*Tool[WebSearchInput, WebSearchResult], error) {
	return New(Spec[WebSearchInput, WebSearchResult]{
		Name:        "websearch",
		Description: "Search the web and return the top results.",
		Input: schema.Object(
			schema.Prop("query", schema.String("Search query.").Require()),
			schema.Prop("limit", schema.Integer("Maximum number of results.").Between(1, 10).WithDefault(5)),
		),
		Policy: PolicyFallback,
		Execute: func(ctx context.Context, in WebSearchInput) (WebSearchResult, error) {
			hits, err := svc.Search(ctx, in.Query, in.Limit)
			if err != nil {
				return WebSearchResult{}, err
			}
			results := make([]WebResult, 0, len(hits))
			for _, h := range hits {
				results = append(results, WebResult{Title: h.Title, URL: h.URL, Snippet: h.Snippet})
			}
			return WebSearchResult{Query: in.Query, Results: results}, nil
		},
		Fallback: func() WebSearchResult {
			return WebSearchResult{Query: "chatgpt", Results: []WebResult{}}
		},
	})
}
