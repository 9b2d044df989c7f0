package demo

// Preset is the argument set a demo card invokes its tool with.
type Preset struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// DefaultPresets are the homepage cards, in display order.
func DefaultPresets() []Preset {
	return []Preset{
		{Tool: "search-products", Arguments: map[string]any{"query": "cast iron skillet", "context": "Shopping for cookware"}},
		{Tool: "stats", Arguments: map[string]any{"magnitude": "2.5", "period": "day"}},
		{Tool: "weather", Arguments: map[string]any{"location": "San Francisco", "unit": "C"}},
		{Tool: "news", Arguments: map[string]any{"topic": "AI", "limit": 5}},
		{Tool: "calculator", Arguments: map[string]any{"a": 7, "b": 3, "operator": "+"}},
		{Tool: "translate", Arguments: map[string]any{"text": "Hello, world!", "targetLanguage": "es"}},
		{Tool: "time", Arguments: map[string]any{"timeZone": "UTC"}},
		{Tool: "websearch", Arguments: map[string]any{"query": "chatgpt", "limit": 5}},
		{Tool: "markdown", Arguments: map[string]any{
			"title":   "Hello World",
			"body":    "This is **markdown**.",
			"bullets": []any{"Item one", "Item two"},
			"quote":   "Tip: You can copy the tool code from the left.",
		}},
		{Tool: "qrcode", Arguments: map[string]any{"data": "https://ai-tools-registry.vercel.app", "size": 300}},
	}
}
