package agent

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/aitools/aitools/internal/tools"
)

// ToolParams converts descriptors into Anthropic tool definitions. The input
// schema is passed through unchanged.
func ToolParams(descs []tools.Descriptor) []anthropic.ToolUnionUnionParam {
	out := make([]anthropic.ToolUnionUnionParam, len(descs))
	for i, d := range descs {
		out[i] = anthropic.ToolParam{
			Name:        anthropic.String(d.Name()),
			Description: anthropic.String(d.Description()),
			InputSchema: anthropic.F[interface{}](d.InputSchema()),
		}
	}
	return out
}

// resultContent renders an invocation result as tool_result content.
func resultContent(res tools.Result) (string, bool) {
	if res.Error != nil {
		body, err := json.Marshal(map[string]any{"error": res.Error})
		if err != nil {
			return fmt.Sprintf("error: %s", res.Error.Message), true
		}
		return string(body), true
	}
	body, err := json.Marshal(res.Output)
	if err != nil {
		return fmt.Sprintf("error: encode output: %v", err), true
	}
	return string(body), false
}
