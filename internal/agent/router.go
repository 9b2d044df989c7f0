package agent

import (
	"sort"
	"strings"
	"unicode"

	"github.com/aitools/aitools/internal/catalog"
)

// Match is one tool whose keywords appear in a prompt.
type Match struct {
	Tool  string
	Score int
}

// RoutingResult ranks the tools relevant to a prompt.
type RoutingResult struct {
	Matches    []Match
	Confidence float64
	Reasoning  string
}

// Tools returns the matched tool names, best first.
func (r RoutingResult) Tools() []string {
	out := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Tool
	}
	return out
}

// ToolRouter narrows the tool set offered to the model using the catalog
// keywords of each tool.
type ToolRouter struct {
	order    []string
	keywords map[string][]string
}

func NewToolRouter(items []catalog.Item) *ToolRouter {
	r := &ToolRouter{keywords: make(map[string][]string, len(items))}
	for _, it := range items {
		if len(it.Keywords) == 0 {
			continue
		}
		r.order = append(r.order, it.Name)
		kws := make([]string, 0, len(it.Keywords))
		for _, kw := range it.Keywords {
			kws = append(kws, strings.ToLower(kw))
		}
		r.keywords[it.Name] = kws
	}
	return r
}

// Route scores every tool against prompt. Ties keep catalog order.
func (r *ToolRouter) Route(prompt string) RoutingResult {
	lower := strings.ToLower(prompt)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	}) {
		words[w] = true
	}

	var matches []Match
	total := 0
	for _, name := range r.order {
		score := 0
		for _, kw := range r.keywords[name] {
			if isWord(kw) {
				if words[kw] {
					score++
				}
			} else if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, Match{Tool: name, Score: score})
			total += score
		}
	}

	if total == 0 {
		return RoutingResult{Reasoning: "no tool keywords, offering every tool"}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return RoutingResult{
		Matches:    matches,
		Confidence: float64(matches[0].Score) / float64(total),
		Reasoning:  "prompt mentions " + matches[0].Tool + " keywords",
	}
}

func isWord(s string) bool {
	for _, c := range s {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return s != ""
}
