package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const DefaultWebSearchURL = "https://api.search.brave.com/res/v1/web/search"

// SearchHit is one web search result.
type SearchHit struct {
	Title   string
	URL     string
	Snippet string
}

type braveSearch struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// WebSearchService queries the Brave Search API.
type WebSearchService struct {
	http     *HTTPClient
	endpoint string
	apiKey   string
}

func NewWebSearchService(c *HTTPClient, endpoint, apiKey string) *WebSearchService {
	if endpoint == "" {
		endpoint = DefaultWebSearchURL
	}
	return &WebSearchService{http: c, endpoint: endpoint, apiKey: apiKey}
}

// Configured reports whether an API key is set.
func (s *WebSearchService) Configured() bool { return s.apiKey != "" }

// Search returns up to limit results for query.
func (s *WebSearchService) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if !s.Configured() {
		return nil, &UpstreamError{Service: s.http.Name(), Message: "BRAVE_API_KEY is not set", Err: ErrNotConfigured}
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("count", strconv.Itoa(limit))
	h := http.Header{}
	h.Set("X-Subscription-Token", s.apiKey)

	var raw braveSearch
	if err := s.http.GetJSON(ctx, s.endpoint, q, h, &raw); err != nil {
		return nil, err
	}
	out := make([]SearchHit, 0, len(raw.Web.Results))
	for _, r := range raw.Web.Results {
		out = append(out, SearchHit{Title: r.Title, URL: r.URL, Snippet: r.Description})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
