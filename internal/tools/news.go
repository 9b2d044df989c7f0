package tools

import (
	"context"
	"time"

	"github.com/aitools/aitools/internal/schema"
	"github.com/aitools/aitools/internal/service"
)

type NewsInput struct {
	Topic string `json:"topic"`
	Limit int    `json:"limit"`
}

type NewsItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

type NewsSearchResult struct {
	Topic string     `json:"topic"`
	Items []NewsItem `json:"items"`
}

// News searches recent stories for a topic.
func News(svc *service.NewsService) (*Tool[NewsInput, NewsSearchResult], error) {
	return New(Spec[NewsInput, NewsSearchResult]{
		Name:        "news",
		Description: "Search recent news headlines for a topic.",
		Input: schema.Object(
			schema.Prop("topic", schema.String("Topic to search for, e.g. AI.").Require()),
			schema.Prop("limit", schema.Integer("Maximum number of headlines.").Between(1, 20).WithDefault(5)),
		),
		Policy: PolicyFallback,
		Execute: func(ctx context.Context, in NewsInput) (NewsSearchResult, error) {
			headlines, err := svc.Search(ctx, in.Topic, in.Limit)
			if err != nil {
				return NewsSearchResult{}, err
			}
			items := make([]NewsItem, 0, len(headlines))
			for _, h := range headlines {
				item := NewsItem{ID: h.ID, Title: h.Title, URL: h.URL}
				if !h.PublishedAt.IsZero() {
					item.PublishedAt = h.PublishedAt.UTC().Format(time.RFC3339)
				}
				items = append(items, item)
			}
			return NewsSearchResult{Topic: in.Topic, Items: items}, nil
		},
		Fallback: func() NewsSearchResult {
			now := time.Now().UTC().Format(time.RFC3339)
			return NewsSearchResult{
				Topic: "AI",
				Items: []NewsItem{
					{ID: "ai-1", Title: "AI breakthrough announced", URL: "https://example.com/ai-1", PublishedAt: now},
					{ID: "ai-2", Title: "New model sets benchmark", URL: "https://example.com/ai-2", PublishedAt: now},
					{ID: "ai-3", Title: "Tooling ecosystem expands"},
				},
			}
		},
	})
}
