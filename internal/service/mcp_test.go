package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/service"
)

type fakeMCP struct {
	t         *testing.T
	inits     atomic.Int32
	sse       bool
	toolText  string
	toolError bool
	initDelay time.Duration
}

func (f *fakeMCP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		ID     uint64          `json:"id"`
		Params json.RawMessage `json:"params"`
	}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

	var result any
	switch req.Method {
	case "initialize":
		f.inits.Add(1)
		time.Sleep(f.initDelay)
		w.Header().Set("Mcp-Session-Id", "session-1")
		result = map[string]any{"protocolVersion": service.DefaultMCPProtocolVersion}
	case "notifications/initialized":
		w.WriteHeader(http.StatusAccepted)
		return
	case "tools/call":
		assert.Equal(f.t, "session-1", r.Header.Get("Mcp-Session-Id"))
		result = map[string]any{
			"content": []map[string]any{{"type": "text", "text": f.toolText}},
			"isError": f.toolError,
		}
	case "tools/list":
		result = map[string]any{"tools": []map[string]any{{"name": "search_shop_catalog", "description": "d"}}}
	case "ping":
		result = map[string]any{}
	default:
		result = nil
	}

	resp, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	if f.sse {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", `{"jsonrpc":"2.0","method":"notifications/progress"}`)
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", resp)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(resp)
}

func TestMCPClientCallTool(t *testing.T) {
	for _, sse := range []bool{false, true} {
		t.Run(fmt.Sprintf("sse=%v", sse), func(t *testing.T) {
			fake := &fakeMCP{t: t, sse: sse, toolText: `{"products":[]}`}
			srv := httptest.NewServer(fake)
			defer srv.Close()

			c := service.NewMCPClient(newClient("shopify"), service.MCPOptions{Endpoint: srv.URL})
			res, err := c.CallTool(context.Background(), "search_shop_catalog", map[string]any{"query": "mugs"})
			require.NoError(t, err)
			assert.JSONEq(t, `{"products":[]}`, string(res.Structured))

			tools, err := c.ListTools(context.Background())
			require.NoError(t, err)
			require.Len(t, tools, 1)
			assert.Equal(t, "search_shop_catalog", tools[0].Name)
			assert.NoError(t, c.Ping(context.Background()))
			assert.Equal(t, int32(1), fake.inits.Load())
		})
	}
}

func TestMCPClientInitializesOnceUnderConcurrency(t *testing.T) {
	fake := &fakeMCP{t: t, toolText: "plain text"}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := service.NewMCPClient(newClient("shopify"), service.MCPOptions{Endpoint: srv.URL})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.CallTool(context.Background(), "search_shop_catalog", nil)
			assert.NoError(t, err)
			assert.Equal(t, "plain text", res.Text)
			assert.Nil(t, res.Structured)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), fake.inits.Load())
}

func TestMCPClientHandshakeOutlivesCaller(t *testing.T) {
	fake := &fakeMCP{t: t, toolText: "ok", initDelay: 100 * time.Millisecond}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := service.NewMCPClient(newClient("shopify"), service.MCPOptions{Endpoint: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.CallTool(ctx, "search_shop_catalog", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	res, err := c.CallTool(context.Background(), "search_shop_catalog", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, int32(1), fake.inits.Load(), "handshake started by the expired caller is reused")
}

func TestMCPClientToolErrorIsUpstreamError(t *testing.T) {
	fake := &fakeMCP{t: t, toolText: "shop unavailable", toolError: true}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := service.NewMCPClient(newClient("shopify"), service.MCPOptions{Endpoint: srv.URL})
	_, err := c.CallTool(context.Background(), "search_shop_catalog", nil)
	var uerr *service.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, uerr.Error(), "shop unavailable")
}

func TestMCPClientUnconfigured(t *testing.T) {
	c := service.NewMCPClient(newClient("shopify"), service.MCPOptions{})
	_, err := c.CallTool(context.Background(), "x", nil)
	assert.ErrorIs(t, err, service.ErrNotConfigured)
}
