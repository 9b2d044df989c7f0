package agent_test

import (
	"testing"

	"github.com/aitools/aitools/internal/agent"
	"github.com/aitools/aitools/internal/catalog"
)

func defaultRouter(t *testing.T) *agent.ToolRouter {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	return agent.NewToolRouter(c.Tools())
}

func TestToolRouter_TopMatch(t *testing.T) {
	r := defaultRouter(t)

	cases := map[string]string{
		"What's the weather forecast in Paris?":   "weather",
		"Translate good morning to Spanish":       "translate",
		"Make a QR code for my website":           "qrcode",
		"Any earthquake over magnitude 4 today?":  "stats",
		"Find me a cast iron skillet in the shop": "search-products",
		"What is 7 plus 3":                        "calculator",
		"latest headlines about AI":               "news",
	}
	for prompt, want := range cases {
		res := r.Route(prompt)
		if len(res.Matches) == 0 {
			t.Errorf("no match for %q", prompt)
			continue
		}
		if got := res.Matches[0].Tool; got != want {
			t.Errorf("Route(%q) top = %q, want %q (%s)", prompt, got, want, res.Reasoning)
		}
		if res.Confidence <= 0 || res.Confidence > 1 {
			t.Errorf("confidence out of range for %q: %.2f", prompt, res.Confidence)
		}
	}
}

func TestToolRouter_NoKeywords(t *testing.T) {
	r := defaultRouter(t)

	res := r.Route("hello there")
	if len(res.Matches) != 0 {
		t.Errorf("expected no matches, got %v", res.Tools())
	}
	if res.Reasoning == "" {
		t.Error("reasoning should not be empty")
	}
}

func TestToolRouter_WholeWords(t *testing.T) {
	r := defaultRouter(t)

	// "sometimes" contains "time" but is not the word.
	for _, m := range r.Route("sometimes I wonder").Matches {
		if m.Tool == "time" {
			t.Error("keyword matched inside another word")
		}
	}
}

func TestToolRouter_MultipleTools(t *testing.T) {
	r := defaultRouter(t)

	res := r.Route("weather in Tokyo and translate it to French")
	tools := res.Tools()
	if len(tools) < 2 {
		t.Fatalf("expected two tools, got %v", tools)
	}
	seen := map[string]bool{}
	for _, name := range tools {
		seen[name] = true
	}
	if !seen["weather"] || !seen["translate"] {
		t.Errorf("expected weather and translate, got %v", tools)
	}
}
