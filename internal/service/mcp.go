package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultMCPProtocolVersion is sent in the initialize handshake.
	DefaultMCPProtocolVersion = "2025-03-26"
	DefaultMCPInitTimeout     = 15 * time.Second
)

const mcpSessionHeader = "Mcp-Session-Id"

// MCPOptions configures an MCPClient.
type MCPOptions struct {
	Endpoint        string
	ProtocolVersion string
	ClientName      string
	ClientVersion   string
	// InitTimeout bounds the shared handshake, independent of the caller
	// that triggers it.
	InitTimeout     time.Duration
}

// MCPError is a JSON-RPC error returned by an MCP server.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// MCPToolResult is the normalized first content item of a tools/call result.
type MCPToolResult struct {
	Text       string
	Structured json.RawMessage
}

// MCPTool is an entry of tools/list.
type MCPTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      uint64 `json:"id,omitempty"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *MCPError       `json:"error"`
	ID      uint64          `json:"id"`
}

type toolsCallResult struct {
	Content []struct {
		Type     string  `json:"type"`
		Text     *string `json:"text"`
		MimeType *string `json:"mimeType"`
	} `json:"content"`
	StructuredContent json.RawMessage `json:"structuredContent"`
	IsError           bool            `json:"isError"`
}

// MCPClient speaks the streamable HTTP transport of the Model Context
// Protocol. The handshake runs once, on first use.
type MCPClient struct {
	http          *HTTPClient
	endpoint      string
	protocol      string
	clientName    string
	clientVersion string
	initTimeout   time.Duration

	id      atomic.Uint64
	initMu  singleflight.Group
	mu      sync.RWMutex
	ready   bool
	session string
}

// NewMCPClient returns a client for opts.Endpoint. No request is made.
func NewMCPClient(c *HTTPClient, opts MCPOptions) *MCPClient {
	if opts.ProtocolVersion == "" {
		opts.ProtocolVersion = DefaultMCPProtocolVersion
	}
	if opts.ClientName == "" {
		opts.ClientName = "aitools"
	}
	if opts.ClientVersion == "" {
		opts.ClientVersion = "dev"
	}
	if opts.InitTimeout <= 0 {
		opts.InitTimeout = DefaultMCPInitTimeout
	}
	return &MCPClient{
		http:          c,
		endpoint:      opts.Endpoint,
		protocol:      opts.ProtocolVersion,
		clientName:    opts.ClientName,
		clientVersion: opts.ClientVersion,
		initTimeout:   opts.InitTimeout,
	}
}

// Configured reports whether an endpoint is set.
func (c *MCPClient) Configured() bool { return c.endpoint != "" }

// CallTool invokes tools/call and normalizes the result. A result flagged
// isError is returned as an *UpstreamError carrying the server's text.
func (c *MCPClient) CallTool(ctx context.Context, name string, args any) (MCPToolResult, error) {
	if err := c.ensureInit(ctx); err != nil {
		return MCPToolResult{}, err
	}
	var result toolsCallResult
	params := map[string]any{"name": name, "arguments": args}
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return MCPToolResult{}, err
	}
	return c.normalize(name, result)
}

// ListTools returns the tools the server exposes.
func (c *MCPClient) ListTools(ctx context.Context) ([]MCPTool, error) {
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	var result struct {
		Tools []MCPTool `json:"tools"`
	}
	if err := c.call(ctx, "tools/list", map[string]any{}, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// Ping checks that the server answers, initializing if needed.
func (c *MCPClient) Ping(ctx context.Context) error {
	if err := c.ensureInit(ctx); err != nil {
		return err
	}
	return c.call(ctx, "ping", nil, nil)
}

func (c *MCPClient) ensureInit(ctx context.Context) error {
	if !c.Configured() {
		return &UpstreamError{Service: c.http.Name(), Message: "MCP endpoint is not set", Err: ErrNotConfigured}
	}
	c.mu.RLock()
	ready := c.ready
	c.mu.RUnlock()
	if ready {
		return nil
	}
	ch := c.initMu.DoChan("init", func() (any, error) {
		c.mu.RLock()
		ready := c.ready
		c.mu.RUnlock()
		if ready {
			return nil, nil
		}
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.initTimeout)
		defer cancel()
		return nil, c.initialize(ictx)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (c *MCPClient) initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": c.protocol,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    c.clientName,
			"version": c.clientVersion,
		},
	}
	if err := c.call(ctx, "initialize", params, nil); err != nil {
		return fmt.Errorf("mcp initialize: %w", err)
	}
	if err := c.send(ctx, rpcRequest{JSONRPC: "2.0", Method: "notifications/initialized"}, nil); err != nil {
		return fmt.Errorf("mcp initialized notification: %w", err)
	}
	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	return nil
}

func (c *MCPClient) call(ctx context.Context, method string, params any, result any) error {
	req := rpcRequest{JSONRPC: "2.0", Method: method, ID: c.id.Add(1), Params: params}
	var resp rpcResponse
	if err := c.send(ctx, req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return &UpstreamError{Service: c.http.Name(), Message: method, Err: resp.Error}
	}
	if result != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return &UpstreamError{Service: c.http.Name(), Message: "decode " + method + " result", Err: err}
		}
	}
	return nil
}

// send posts one JSON-RPC message. When out is nil the message is a
// notification and the body is ignored.
func (c *MCPClient) send(ctx context.Context, msg rpcRequest, out *rpcResponse) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	c.mu.RLock()
	if c.session != "" {
		req.Header.Set(mcpSessionHeader, c.session)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		var uerr *UpstreamError
		if errors.As(err, &uerr) && uerr.StatusCode == http.StatusNotFound {
			c.resetSession()
		}
		return err
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get(mcpSessionHeader); sid != "" {
		c.mu.Lock()
		c.session = sid
		c.mu.Unlock()
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if ct == "text/event-stream" {
		return c.readEvents(resp.Body, msg.ID, out)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Service: c.http.Name(), Message: "decode " + msg.Method, Err: err}
	}
	return nil
}

// readEvents scans an SSE stream for the response matching id.
func (c *MCPClient) readEvents(r io.Reader, id uint64, out *rpcResponse) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var data strings.Builder
	flush := func() bool {
		defer data.Reset()
		if data.Len() == 0 {
			return false
		}
		var resp rpcResponse
		if err := json.Unmarshal([]byte(data.String()), &resp); err != nil {
			return false
		}
		if resp.ID != id {
			return false
		}
		*out = resp
		return true
	}
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if flush() {
				return nil
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if flush() {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return &UpstreamError{Service: c.http.Name(), Message: "read event stream", Err: err}
	}
	return &UpstreamError{Service: c.http.Name(), Message: fmt.Sprintf("event stream ended without response %d", id)}
}

func (c *MCPClient) resetSession() {
	c.mu.Lock()
	c.session = ""
	c.ready = false
	c.mu.Unlock()
}

func (c *MCPClient) normalize(tool string, result toolsCallResult) (MCPToolResult, error) {
	var text string
	if len(result.Content) > 0 && result.Content[0].Text != nil {
		text = *result.Content[0].Text
	}
	if result.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return MCPToolResult{}, &UpstreamError{Service: c.http.Name(), Message: tool + ": " + text}
	}
	out := MCPToolResult{Text: text}
	switch {
	case len(result.StructuredContent) > 0 && string(result.StructuredContent) != "null":
		out.Structured = result.StructuredContent
	case text != "" && json.Valid([]byte(text)):
		out.Structured = json.RawMessage(text)
	}
	if out.Text == "" && out.Structured == nil {
		return MCPToolResult{}, &UpstreamError{Service: c.http.Name(), Message: tool + ": empty MCP response"}
	}
	return out, nil
}
