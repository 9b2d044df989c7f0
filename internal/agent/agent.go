// Package agent relays a chat prompt to the Anthropic Messages API and runs
// the tools the model asks for through the registry.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/aitools/aitools/internal/security"
	"github.com/aitools/aitools/internal/tools"
)

const (
	DefaultModel         = "claude-sonnet-4-6"
	DefaultMaxTokens     = 4096
	DefaultMaxIterations = 8
)

const DefaultSystemPrompt = `You are a helpful assistant with access to a small set of tools.
Call a tool when it can answer the question better than you can. Use the tool
output as the source of truth and answer in plain language. If a tool returns
an error, say so briefly instead of guessing.`

var (
	// ErrPromptRejected is returned when the prompt fails screening.
	ErrPromptRejected = errors.New("prompt rejected")
	// ErrBudgetExceeded is returned when the caller's token budget is spent.
	ErrBudgetExceeded = errors.New("token budget exceeded")
)

// Options configures an Agent.
type Options struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxTokens     int
	MaxIterations int
	SystemPrompt  string
	RouteTools    bool
	HTTPOptions   []option.RequestOption
}

// ToolUse describes one tool call made during a chat.
type ToolUse struct {
	Tool         string          `json:"tool"`
	InvocationID string          `json:"invocationId"`
	Fallback     bool            `json:"fallback,omitempty"`
	ErrorKind    tools.ErrorKind `json:"errorKind,omitempty"`
	DurationMs   int64           `json:"durationMs"`
}

// Usage is the token usage summed over the chat.
type Usage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
}

// Reply is the outcome of a chat.
type Reply struct {
	Text       string    `json:"text"`
	ToolsUsed  []ToolUse `json:"toolsUsed"`
	Iterations int       `json:"iterations"`
	Usage      Usage     `json:"usage"`
}

// Agent runs a bounded tool-calling loop. Tools run in live mode.
type Agent struct {
	client    *anthropic.Client
	registry  *tools.Registry
	router    *ToolRouter
	validator *security.PromptValidator
	costs     *security.CostTracker

	model        string
	maxTokens    int
	maxIter      int
	systemPrompt string
	routeTools   bool
}

// New builds an Agent. router, validator and costs may be nil.
func New(opts Options, registry *tools.Registry, router *ToolRouter, validator *security.PromptValidator, costs *security.CostTracker) *Agent {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	reqOpts = append(reqOpts, opts.HTTPOptions...)

	return &Agent{
		client:       anthropic.NewClient(reqOpts...),
		registry:     registry,
		router:       router,
		validator:    validator,
		costs:        costs,
		model:        opts.Model,
		maxTokens:    opts.MaxTokens,
		maxIter:      opts.MaxIterations,
		systemPrompt: opts.SystemPrompt,
		routeTools:   opts.RouteTools,
	}
}

// Chat answers prompt, dispatching tool_use blocks through the registry.
// caller is recorded on every invocation.
func (a *Agent) Chat(ctx context.Context, prompt, caller string) (Reply, error) {
	start := time.Now()
	if a.validator != nil {
		if v := a.validator.Validate(prompt); !v.Valid {
			return Reply{}, fmt.Errorf("%w: %s", ErrPromptRejected, v.Message)
		}
	}
	if a.costs != nil {
		if ok, msg := a.costs.CheckLimits(caller); !ok {
			return Reply{}, fmt.Errorf("%w: %s", ErrBudgetExceeded, msg)
		}
	}

	toolParams := ToolParams(a.offeredTools(prompt))
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	var reply Reply
	defer func() {
		if a.costs != nil {
			a.costs.Record(prompt, caller, reply.Usage.InputTokens, reply.Usage.OutputTokens, time.Since(start).Milliseconds())
		}
	}()

	for iter := 0; iter < a.maxIter; iter++ {
		reply.Iterations = iter + 1
		last := iter == a.maxIter-1

		params := anthropic.MessageNewParams{
			Model:     anthropic.F(anthropic.Model(a.model)),
			MaxTokens: anthropic.F(int64(a.maxTokens)),
			Messages:  anthropic.F(messages),
			System:    anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(a.systemPrompt)}),
		}
		if !last && len(toolParams) > 0 {
			params.Tools = anthropic.F(toolParams)
		}

		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return reply, fmt.Errorf("LLM call failed: %w", err)
		}
		reply.Usage.InputTokens += resp.Usage.InputTokens
		reply.Usage.OutputTokens += resp.Usage.OutputTokens

		var text string
		var calls []anthropic.ToolUseBlock
		for _, block := range resp.Content {
			switch b := block.AsUnion().(type) {
			case anthropic.TextBlock:
				text += b.Text
			case anthropic.ToolUseBlock:
				calls = append(calls, b)
			}
		}

		log.Debug().
			Int("iter", iter).
			Str("stop_reason", string(resp.StopReason)).
			Int("tool_calls", len(calls)).
			Msg("agent iteration")

		if len(calls) == 0 || resp.StopReason != "tool_use" {
			reply.Text = text
			return reply, nil
		}

		messages = append(messages, resp.ToParam())
		results := make([]anthropic.ContentBlockParamUnion, 0, len(calls))
		for _, call := range calls {
			res := a.dispatch(ctx, call, caller)
			use := ToolUse{
				Tool:         call.Name,
				InvocationID: res.InvocationID,
				Fallback:     res.Fallback,
				DurationMs:   res.DurationMs,
			}
			if res.Error != nil {
				use.ErrorKind = res.Error.Kind
			}
			reply.ToolsUsed = append(reply.ToolsUsed, use)

			content, isError := resultContent(res)
			results = append(results, anthropic.NewToolResultBlock(call.ID, content, isError))
		}
		messages = append(messages, anthropic.NewUserMessage(results...))

		if iter == a.maxIter-2 {
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock("Please provide your final answer now without calling any more tools."),
			))
		}
	}
	return reply, fmt.Errorf("agent loop exceeded max iterations (%d)", a.maxIter)
}

// dispatch runs one tool_use block. Input that is not a JSON object is
// returned to the model as a validation error; the tool is not run.
func (a *Agent) dispatch(ctx context.Context, call anthropic.ToolUseBlock, caller string) tools.Result {
	var args map[string]any
	if len(call.Input) > 0 {
		if err := json.Unmarshal(call.Input, &args); err != nil {
			log.Warn().Err(err).Str("tool", call.Name).Msg("failed to parse tool input")
			inv := tools.NewInvocation(call.Name, nil, tools.ModeLive)
			return tools.Result{
				InvocationID: inv.ID,
				Tool:         call.Name,
				Error: &tools.ExecutionError{
					Kind:    tools.KindValidation,
					Message: "tool input must be a JSON object: " + err.Error(),
				},
			}
		}
	}
	inv := tools.NewInvocation(call.Name, args, tools.ModeLive)
	inv.Caller = caller
	return a.registry.Invoke(ctx, inv)
}

// offeredTools returns the routed subset when routing is on and the prompt
// matched, otherwise every registered tool.
func (a *Agent) offeredTools(prompt string) []tools.Descriptor {
	all := a.registry.List()
	if !a.routeTools || a.router == nil {
		return all
	}
	route := a.router.Route(prompt)
	if len(route.Matches) == 0 {
		return all
	}
	out := make([]tools.Descriptor, 0, len(route.Matches))
	for _, name := range route.Tools() {
		if t, ok := a.registry.Lookup(name); ok {
			out = append(out, t.Descriptor())
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}
