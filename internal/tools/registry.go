package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/aitools/aitools/internal/tools")

// Observer is notified after every invocation the registry runs.
type Observer interface {
	Observe(ctx context.Context, inv Invocation, res Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, inv Invocation, res Result)

func (f ObserverFunc) Observe(ctx context.Context, inv Invocation, res Result) { f(ctx, inv, res) }

// Registry maps tool names to tools. It is populated at startup and read
// concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	tools     []Invoker
	index     map[string]int
	observers []Observer
}

// NewRegistry returns an empty registry.
func NewRegistry(observers ...Observer) *Registry {
	return &Registry{
		index:     make(map[string]int),
		observers: observers,
	}
}

// Register adds a tool. Names are unique.
func (r *Registry) Register(t Invoker) error {
	name := t.Descriptor().Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.index[name] = len(r.tools)
	r.tools = append(r.tools, t)
	return nil
}

// MustRegister is Register for startup wiring, where a duplicate is a bug.
func (r *Registry) MustRegister(t Invoker) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Invoker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.tools[i], true
}

// List returns descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, len(r.tools))
	for i, t := range r.tools {
		out[i] = t.Descriptor()
	}
	return out
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	descs := r.List()
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name()
	}
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Invoke resolves the tool by name and runs it. An unknown name yields a
// not_found error result rather than a Go error.
func (r *Registry) Invoke(ctx context.Context, inv Invocation) Result {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Mode == "" {
		inv.Mode = ModeLive
	}

	ctx, span := tracer.Start(ctx, "tools.invoke", trace.WithAttributes(
		attribute.String("tool.name", inv.Tool),
		attribute.String("tool.invocation_id", inv.ID),
		attribute.String("tool.mode", string(inv.Mode)),
	))
	defer span.End()

	var res Result
	t, ok := r.Lookup(inv.Tool)
	if !ok {
		res = Result{
			InvocationID: inv.ID,
			Tool:         inv.Tool,
			Error:        &ExecutionError{Kind: KindNotFound, Message: fmt.Sprintf("tool %q is not registered", inv.Tool)},
		}
	} else {
		res = t.Invoke(ctx, inv)
	}

	span.SetAttributes(attribute.Bool("tool.fallback", res.Fallback))
	if res.Error != nil {
		span.SetStatus(codes.Error, res.Error.Message)
		span.SetAttributes(attribute.String("tool.error_kind", string(res.Error.Kind)))
		log.Warn().
			Str("invocation_id", inv.ID).
			Str("tool", inv.Tool).
			Str("mode", string(inv.Mode)).
			Str("kind", string(res.Error.Kind)).
			Str("error", res.Error.Message).
			Int64("duration_ms", res.DurationMs).
			Msg("tool invocation failed")
	} else {
		log.Info().
			Str("invocation_id", inv.ID).
			Str("tool", inv.Tool).
			Str("mode", string(inv.Mode)).
			Bool("fallback", res.Fallback).
			Int64("duration_ms", res.DurationMs).
			Msg("tool invoked")
	}

	for _, o := range r.observers {
		o.Observe(ctx, inv, res)
	}
	return res
}
