package tools_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/tools"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := tools.NewRegistry()
	calc, err := tools.Calculator()
	require.NoError(t, err)

	require.NoError(t, r.Register(calc))
	err = r.Register(calc)
	assert.ErrorIs(t, err, tools.ErrDuplicateTool)
	assert.Equal(t, 1, r.Len())
	assert.Panics(t, func() { r.MustRegister(calc) })
}

func TestRegistryLookupAndOrder(t *testing.T) {
	r := tools.NewRegistry()
	calc, _ := tools.Calculator()
	md, _ := tools.Markdown()
	now, _ := tools.TimeNow(nil)
	r.MustRegister(md)
	r.MustRegister(calc)
	r.MustRegister(now)

	assert.Equal(t, []string{"markdown", "calculator", "time"}, r.Names())

	got, ok := r.Lookup("calculator")
	require.True(t, ok)
	assert.Equal(t, "calculator", got.Descriptor().Name())

	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}

func TestRegistryInvokeUnknownTool(t *testing.T) {
	r := tools.NewRegistry()
	res := r.Invoke(context.Background(), tools.Invocation{Tool: "nope"})
	require.NotNil(t, res.Error)
	assert.Equal(t, tools.KindNotFound, res.Error.Kind)
	assert.NotEmpty(t, res.InvocationID)
}

func TestRegistryNotifiesObservers(t *testing.T) {
	var mu sync.Mutex
	var seen []tools.Result
	obs := tools.ObserverFunc(func(_ context.Context, inv tools.Invocation, res tools.Result) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, tools.ModeLive, inv.Mode, "mode defaults to live")
		seen = append(seen, res)
	})

	r := tools.NewRegistry(obs)
	calc, _ := tools.Calculator()
	r.MustRegister(calc)

	res := r.Invoke(context.Background(), tools.Invocation{
		Tool:      "calculator",
		Arguments: map[string]any{"a": 1, "b": 2, "operator": "+"},
	})
	require.True(t, res.OK())
	r.Invoke(context.Background(), tools.Invocation{Tool: "missing"})

	require.Len(t, seen, 2)
	assert.Equal(t, res.InvocationID, seen[0].InvocationID)
	assert.Equal(t, tools.KindNotFound, seen[1].Error.Kind)
}
