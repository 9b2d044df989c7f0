package service

import (
	"context"
	"time"
)

const DefaultQuakeFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary"

// Quake is one earthquake event from the USGS feed.
type Quake struct {
	Magnitude float64
	Place     string
	Time      time.Time
	URL       string
}

// QuakeFeed is a USGS summary feed.
type QuakeFeed struct {
	Title     string
	Generated time.Time
	Quakes    []Quake
}

type usgsFeed struct {
	Metadata struct {
		Title     string `json:"title"`
		Generated int64  `json:"generated"`
		Count     int    `json:"count"`
	} `json:"metadata"`
	Features []struct {
		Properties struct {
			Mag   *float64 `json:"mag"`
			Place string   `json:"place"`
			Time  int64    `json:"time"`
			URL   string   `json:"url"`
		} `json:"properties"`
	} `json:"features"`
}

// StatsService reads the USGS earthquake summary feeds.
type StatsService struct {
	http    *HTTPClient
	baseURL string
}

func NewStatsService(c *HTTPClient, baseURL string) *StatsService {
	if baseURL == "" {
		baseURL = DefaultQuakeFeedURL
	}
	return &StatsService{http: c, baseURL: baseURL}
}

// Feed fetches the summary for a magnitude band ("all", "1.0", "2.5", "4.5",
// "significant") over a period ("hour", "day", "week").
func (s *StatsService) Feed(ctx context.Context, magnitude, period string) (QuakeFeed, error) {
	var raw usgsFeed
	endpoint := s.baseURL + "/" + magnitude + "_" + period + ".geojson"
	if err := s.http.GetJSON(ctx, endpoint, nil, nil, &raw); err != nil {
		return QuakeFeed{}, err
	}
	feed := QuakeFeed{
		Title:     raw.Metadata.Title,
		Generated: time.UnixMilli(raw.Metadata.Generated).UTC(),
		Quakes:    make([]Quake, 0, len(raw.Features)),
	}
	for _, f := range raw.Features {
		if f.Properties.Mag == nil {
			continue
		}
		feed.Quakes = append(feed.Quakes, Quake{
			Magnitude: *f.Properties.Mag,
			Place:     f.Properties.Place,
			Time:      time.UnixMilli(f.Properties.Time).UTC(),
			URL:       f.Properties.URL,
		})
	}
	return feed, nil
}
