package service

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

const DefaultNewsURL = "https://hn.algolia.com/api/v1/search_by_date"

// Headline is one news item.
type Headline struct {
	ID          string
	Title       string
	URL         string
	PublishedAt time.Time
}

type algoliaSearch struct {
	Hits []struct {
		ObjectID  string    `json:"objectID"`
		Title     string    `json:"title"`
		StoryTitle string   `json:"story_title"`
		URL       string    `json:"url"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"hits"`
}

// NewsService searches recent stories on the Hacker News Algolia API.
type NewsService struct {
	http     *HTTPClient
	endpoint string
}

func NewNewsService(c *HTTPClient, endpoint string) *NewsService {
	if endpoint == "" {
		endpoint = DefaultNewsURL
	}
	return &NewsService{http: c, endpoint: endpoint}
}

// Search returns up to limit recent stories matching topic.
func (s *NewsService) Search(ctx context.Context, topic string, limit int) ([]Headline, error) {
	q := url.Values{}
	q.Set("query", topic)
	q.Set("tags", "story")
	q.Set("hitsPerPage", strconv.Itoa(limit))

	var raw algoliaSearch
	if err := s.http.GetJSON(ctx, s.endpoint, q, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]Headline, 0, len(raw.Hits))
	for _, h := range raw.Hits {
		title := h.Title
		if title == "" {
			title = h.StoryTitle
		}
		if title == "" {
			continue
		}
		out = append(out, Headline{ID: h.ObjectID, Title: title, URL: h.URL, PublishedAt: h.CreatedAt})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
