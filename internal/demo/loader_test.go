package demo_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/demo"
	"github.com/aitools/aitools/internal/tools"
)

type fakeInvoker struct {
	calls atomic.Int32
	delay time.Duration
}

func (f *fakeInvoker) Invoke(ctx context.Context, inv tools.Invocation) tools.Result {
	f.calls.Add(1)
	time.Sleep(f.delay)
	res := tools.Result{InvocationID: inv.ID, Tool: inv.Tool}
	if ctx.Err() != nil {
		res.Error = &tools.ExecutionError{Kind: tools.KindUpstream, Message: "invocation canceled"}
		return res
	}
	switch inv.Tool {
	case "qrcode":
		res.Error = &tools.ExecutionError{Kind: tools.KindUpstream, Message: "goqr: request failed"}
	case "weather":
		res.Output = map[string]any{"location": "San Francisco"}
		res.Fallback = true
	default:
		if inv.Mode != tools.ModeDemo {
			res.Error = &tools.ExecutionError{Kind: tools.KindInternal, Message: "expected demo mode"}
			return res
		}
		res.Output = inv.Arguments
	}
	return res
}

func TestRenderIsolatesFailures(t *testing.T) {
	inv := &fakeInvoker{}
	l := demo.NewLoader(inv, demo.DefaultPresets(), nil, demo.Options{})

	cards := l.Render(context.Background())
	require.Len(t, cards, 10)
	for i, p := range demo.DefaultPresets() {
		assert.Equal(t, p.Tool, cards[i].Tool, "cards keep preset order")
	}

	byTool := map[string]demo.Card{}
	for _, c := range cards {
		byTool[c.Tool] = c
	}
	qr := byTool["qrcode"]
	assert.Equal(t, "goqr: request failed", qr.Error)
	assert.Equal(t, tools.KindUpstream, qr.ErrorKind)
	assert.Nil(t, qr.Output)

	assert.True(t, byTool["weather"].Fallback)
	assert.Empty(t, byTool["calculator"].Error)
	assert.Equal(t, 7, byTool["calculator"].Output.(map[string]any)["a"])
}

func TestLoadCachesAndDeduplicates(t *testing.T) {
	inv := &fakeInvoker{delay: 20 * time.Millisecond}
	presets := demo.DefaultPresets()[:3]
	l := demo.NewLoader(inv, presets, demo.NewMemoryStore(), demo.Options{TTL: time.Minute, Concurrency: 3})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cards, err := l.Load(context.Background())
			assert.NoError(t, err)
			assert.Len(t, cards, 3)
		}()
	}
	wg.Wait()
	_, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), inv.calls.Load(), "one render shared by every caller")
}

func TestLoadOutlivesCanceledCaller(t *testing.T) {
	inv := &fakeInvoker{delay: 20 * time.Millisecond}
	presets := demo.DefaultPresets()[4:5]
	l := demo.NewLoader(inv, presets, demo.NewMemoryStore(), demo.Options{TTL: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)

	cards, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].Error, "render must not inherit the first caller's cancellation")
	assert.Equal(t, "calculator", cards[0].Tool)
	assert.Equal(t, int32(1), inv.calls.Load(), "second caller joins or reuses the detached render")
}

func TestLoadRenderTimeout(t *testing.T) {
	inv := &fakeInvoker{delay: 30 * time.Millisecond}
	l := demo.NewLoader(inv, demo.DefaultPresets()[4:5], nil, demo.Options{Timeout: 10 * time.Millisecond})

	cards, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "invocation canceled", cards[0].Error)
}

func TestMemoryStoreExpires(t *testing.T) {
	s := demo.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, []demo.Card{{Tool: "time"}}, 10*time.Millisecond))

	cards, ok, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, cards, 1)

	time.Sleep(20 * time.Millisecond)
	_, ok, _ = s.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, []demo.Card{}, time.Minute))
	require.NoError(t, s.Invalidate(ctx))
	_, ok, _ = s.Get(ctx)
	assert.False(t, ok)
}

func TestUnreachableRedisStillRenders(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	inv := &fakeInvoker{}
	l := demo.NewLoader(inv, demo.DefaultPresets()[:2], demo.NewRedisStore(client, ""), demo.Options{})
	cards, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}
