// Package tools defines the tool invocation contract, the registry the
// runtime queries, and the built-in tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aitools/aitools/internal/schema"
)

// DefaultTimeout bounds a single execution when the tool does not set one.
const DefaultTimeout = 10 * time.Second

// Policy decides what an upstream failure turns into.
type Policy string

const (
	// PolicyFallback substitutes the tool's static fallback value in demo mode.
	PolicyFallback Policy = "fallback"
	// PolicyFailLoud always surfaces the failure.
	PolicyFailLoud Policy = "fail_loud"
)

// Mode is the deployment context of an invocation.
type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// ParseMode accepts "live" or "demo"; empty means live.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLive:
		return ModeLive, nil
	case ModeDemo:
		return ModeDemo, nil
	}
	return "", fmt.Errorf("unknown mode %q (want live or demo)", s)
}

// Invoker is a tool with its concrete types erased, as held by the Registry.
type Invoker interface {
	Descriptor() Descriptor
	Invoke(ctx context.Context, inv Invocation) Result
}

// Spec declares a tool.
type Spec[In, Out any] struct {
	Name        string
	Description string
	Input       schema.Schema
	Policy      Policy
	Timeout     time.Duration
	Execute     func(ctx context.Context, in In) (Out, error)
	// Fallback is required for PolicyFallback and ignored otherwise.
	Fallback func() Out
}

// Tool binds a descriptor to a typed execution adapter.
type Tool[In, Out any] struct {
	desc     Descriptor
	execute  func(ctx context.Context, in In) (Out, error)
	fallback func() Out
	timeout  time.Duration
}

// New validates spec and builds the tool. The output shape is derived from Out.
func New[In, Out any](spec Spec[In, Out]) (*Tool[In, Out], error) {
	if spec.Name == "" || spec.Execute == nil {
		return nil, fmt.Errorf("%w: name and execute are required", ErrInvalidTool)
	}
	if err := spec.Input.Check(); err != nil {
		return nil, fmt.Errorf("%w: %s input schema: %w", ErrInvalidTool, spec.Name, err)
	}
	shape, err := schema.Reflect[Out]()
	if err != nil {
		return nil, fmt.Errorf("%w: %s output shape: %w", ErrInvalidTool, spec.Name, err)
	}

	policy := spec.Policy
	if policy == "" {
		policy = PolicyFailLoud
	}
	switch policy {
	case PolicyFallback:
		if spec.Fallback == nil {
			return nil, fmt.Errorf("%w: %s uses the fallback policy without a fallback value", ErrInvalidTool, spec.Name)
		}
		if err := shape.Check(spec.Fallback()); err != nil {
			return nil, fmt.Errorf("%w: %s fallback value: %w", ErrInvalidTool, spec.Name, err)
		}
	case PolicyFailLoud:
	default:
		return nil, fmt.Errorf("%w: %s has unknown policy %q", ErrInvalidTool, spec.Name, policy)
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Tool[In, Out]{
		desc: Descriptor{
			name:        spec.Name,
			description: spec.Description,
			input:       spec.Input,
			output:      shape,
			policy:      policy,
		},
		execute:  spec.Execute,
		fallback: spec.Fallback,
		timeout:  timeout,
	}, nil
}

// MustNew is New for package-level declarations.
func MustNew[In, Out any](spec Spec[In, Out]) *Tool[In, Out] {
	t, err := New(spec)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tool[In, Out]) Descriptor() Descriptor { return t.desc }

// WithTimeout returns a copy of t with a different execution timeout.
func (t *Tool[In, Out]) WithTimeout(d time.Duration) *Tool[In, Out] {
	c := *t
	if d > 0 {
		c.timeout = d
	}
	return &c
}

// Timeout is the per-execution deadline.
func (t *Tool[In, Out]) Timeout() time.Duration { return t.timeout }

// Execute runs the adapter on already-typed input under the tool's timeout and
// checks the result against the output shape. Fallbacks are never applied here.
func (t *Tool[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.call(ctx, in)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return out, err
	}
	if err := t.desc.output.Check(out); err != nil {
		return out, err
	}
	return out, nil
}

func (t *Tool[In, Out]) call(ctx context.Context, in In) (out Out, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("tool", t.desc.name).
				Msg("tool panic recovered")
			err = &ExecutionError{Kind: KindInternal, Message: fmt.Sprintf("tool panicked: %v", rec)}
		}
	}()
	return t.execute(ctx, in)
}

// Invoke validates raw arguments, executes, and applies the fallback policy.
func (t *Tool[In, Out]) Invoke(ctx context.Context, inv Invocation) (res Result) {
	start := time.Now()
	res = Result{InvocationID: inv.ID, Tool: t.desc.name}
	defer func() {
		res.Duration = time.Since(start)
		res.DurationMs = res.Duration.Milliseconds()
	}()

	normalized, err := t.desc.input.Validate(inv.Arguments)
	if err != nil {
		res.Error = classify(err)
		return res
	}
	var in In
	if err := schema.Decode(normalized, &in); err != nil {
		res.Error = &ExecutionError{Kind: KindInternal, Message: err.Error(), cause: err}
		return res
	}

	out, err := t.Execute(ctx, in)
	if err != nil {
		xerr := classify(err)
		if xerr.Kind == KindUpstream && t.desc.policy == PolicyFallback && inv.Mode == ModeDemo {
			log.Warn().
				Err(err).
				Str("tool", t.desc.name).
				Str("invocation_id", inv.ID).
				Msg("upstream failed, serving fallback")
			res.Output = t.fallback()
			res.Fallback = true
			return res
		}
		res.Error = xerr
		return res
	}
	res.Output = out
	return res
}

// Descriptor is the immutable public face of a tool. Identity is by name.
type Descriptor struct {
	name        string
	description string
	input       schema.Schema
	output      *schema.Shape
	policy      Policy
}

func (d Descriptor) Name() string        { return d.name }
func (d Descriptor) Description() string { return d.description }
func (d Descriptor) Policy() Policy      { return d.policy }

// InputSchema renders a fresh JSON Schema document for the arguments.
func (d Descriptor) InputSchema() map[string]any {
	return d.input.JSONSchema()
}

// OutputShape returns a copy of the output JSON Schema document.
func (d Descriptor) OutputShape() json.RawMessage {
	if d.output == nil {
		return nil
	}
	return append(json.RawMessage(nil), d.output.Document()...)
}

// Validate checks raw arguments without executing anything.
func (d Descriptor) Validate(args map[string]any) (map[string]any, error) {
	return d.input.Validate(args)
}

// Equal reports descriptor identity.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.name == other.name
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		InputSchema  map[string]any  `json:"inputSchema"`
		OutputSchema json.RawMessage `json:"outputSchema,omitempty"`
		Policy       Policy          `json:"policy"`
	}{
		Name:         d.name,
		Description:  d.description,
		InputSchema:  d.InputSchema(),
		OutputSchema: d.OutputShape(),
		Policy:       d.policy,
	})
}
