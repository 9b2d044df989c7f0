package service

import (
	"context"
	"strings"
)

// TranslateService calls a LibreTranslate-compatible /translate endpoint.
type TranslateService struct {
	http    *HTTPClient
	baseURL string
	apiKey  string
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

// NewTranslateService returns a client; an empty baseURL leaves it unconfigured.
func NewTranslateService(c *HTTPClient, baseURL, apiKey string) *TranslateService {
	return &TranslateService{http: c, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

func (s *TranslateService) Configured() bool { return s.baseURL != "" }

// Translate detects the source language and translates text into target.
func (s *TranslateService) Translate(ctx context.Context, text, target string) (string, error) {
	if !s.Configured() {
		return "", &UpstreamError{Service: s.http.Name(), Message: "translation endpoint is not set", Err: ErrNotConfigured}
	}
	var out libreResponse
	req := libreRequest{Q: text, Source: "auto", Target: target, Format: "text", APIKey: s.apiKey}
	if err := s.http.PostJSON(ctx, s.baseURL+"/translate", req, &out); err != nil {
		return "", err
	}
	if out.TranslatedText == "" {
		return "", &UpstreamError{Service: s.http.Name(), Message: "empty translation"}
	}
	return out.TranslatedText, nil
}
