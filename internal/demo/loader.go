// Package demo renders the homepage demo cards by invoking every tool with
// its preset arguments in demo mode.
package demo

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/aitools/aitools/internal/tools"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultConcurrency   = 4
	DefaultRenderTimeout = 30 * time.Second
)

// Invoker runs one invocation; *tools.Registry satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, inv tools.Invocation) tools.Result
}

// Card is one rendered demo. Failed tools carry Error instead of Output.
type Card struct {
	Tool       string          `json:"tool"`
	Arguments  map[string]any  `json:"arguments"`
	Output     any             `json:"output,omitempty"`
	Fallback   bool            `json:"fallback,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorKind  tools.ErrorKind `json:"errorKind,omitempty"`
	DurationMs int64           `json:"durationMs"`
}

// Options tunes a Loader.
type Options struct {
	TTL         time.Duration
	Concurrency int
	// Timeout bounds one shared render, independent of the caller.
	Timeout     time.Duration
}

// Loader invokes presets concurrently and caches the cards.
type Loader struct {
	invoker     Invoker
	presets     []Preset
	store       Store
	ttl         time.Duration
	concurrency int
	timeout     time.Duration
	sf          singleflight.Group
}

// NewLoader builds a loader. A nil store disables caching.
func NewLoader(invoker Invoker, presets []Preset, store Store, opts Options) *Loader {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRenderTimeout
	}
	return &Loader{
		invoker:     invoker,
		presets:     presets,
		store:       store,
		ttl:         opts.TTL,
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
	}
}

// Load returns the cached cards or renders them. Concurrent callers share
// one render, which runs detached from any single caller: a caller that goes
// away gets ctx.Err() while the render completes and is cached for the rest.
func (l *Loader) Load(ctx context.Context) ([]Card, error) {
	if cards, ok := l.cached(ctx); ok {
		return cards, nil
	}
	ch := l.sf.DoChan("demos", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		if cards, ok := l.cached(rctx); ok {
			return cards, nil
		}
		cards := l.Render(rctx)
		if l.store != nil {
			if err := l.store.Set(rctx, cards, l.ttl); err != nil {
				log.Warn().Err(err).Msg("demo cache write failed")
			}
		}
		return cards, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Card), nil
	}
}

func (l *Loader) cached(ctx context.Context) ([]Card, bool) {
	if l.store == nil {
		return nil, false
	}
	cards, ok, err := l.store.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("demo cache read failed")
		return nil, false
	}
	return cards, ok
}

// Render invokes every preset in demo mode. A failing tool yields an error
// card; it never aborts its siblings.
func (l *Loader) Render(ctx context.Context) []Card {
	cards := make([]Card, len(l.presets))
	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, p := range l.presets {
		i, p := i, p
		g.Go(func() error {
			inv := tools.NewInvocation(p.Tool, p.Arguments, tools.ModeDemo)
			inv.Caller = "demo"
			cards[i] = toCard(p, l.invoker.Invoke(ctx, inv))
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, c := range cards {
		if c.Error != "" {
			failed++
		}
	}
	log.Info().Int("cards", len(cards)).Int("failed", failed).Msg("demo cards rendered")
	return cards
}

func toCard(p Preset, res tools.Result) Card {
	c := Card{
		Tool:       p.Tool,
		Arguments:  p.Arguments,
		Output:     res.Output,
		Fallback:   res.Fallback,
		DurationMs: res.DurationMs,
	}
	if res.Error != nil {
		c.Error = res.Error.Message
		c.ErrorKind = res.Error.Kind
	}
	return c
}
