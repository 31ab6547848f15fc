package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kadirpekel/intentkernel/internal/httpclient"
)

// httpSession talks a raw JSON-RPC 2.0 envelope to an HTTP-transport
// capability server, grounded on the teacher's
// mcptoolset.makeHTTPRequest (minus its SSE and streamable-http
// session-id handling, which this spec's HTTP transport doesn't need).
type httpSession struct {
	url        string
	httpClient *httpclient.Client
}

func newHTTPSession(ctx context.Context, name string, cfg ServerConfig) (session, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("http server %q config missing url", name)
	}

	s := &httpSession{
		url: cfg.URL,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
			httpclient.WithMaxRetries(3),
			httpclient.WithBaseDelay(time.Second),
		),
	}

	resp, err := s.call(ctx, "initialize", map[string]any{
		"protocolVersion": mcpProtocolVersion,
		"clientInfo":      map[string]any{"name": clientName, "version": clientVersion},
		"capabilities":    map[string]any{},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize http server %q: %w", name, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("initialize http server %q: %s", name, resp.Error.Message)
	}

	return s, nil
}

type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

func (s *httpSession) call(ctx context.Context, method string, params any) (*jsonRPCResponse, error) {
	body, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && parsed.Error == nil {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return &parsed, nil
}

func (s *httpSession) ListTools(ctx context.Context) ([]Tool, error) {
	resp, err := s.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("tools/list: %s", resp.Error.Message)
	}

	resultMap, ok := resp.Result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected result shape from tools/list")
	}
	rawTools, ok := resultMap["tools"].([]any)
	if !ok {
		return nil, fmt.Errorf("missing tools in tools/list response")
	}

	tools := make([]Tool, 0, len(rawTools))
	for _, raw := range rawTools {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		desc, _ := m["description"].(string)
		schema, _ := m["inputSchema"].(map[string]any)
		tools = append(tools, Tool{Name: name, Description: desc, InputSchema: schema})
	}
	return tools, nil
}

func (s *httpSession) CallTool(ctx context.Context, toolName string, args map[string]any) (map[string]any, error) {
	resp, err := s.call(ctx, "tools/call", map[string]any{"name": toolName, "arguments": args})
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return map[string]any{"error": resp.Error.Message}, nil
	}

	resultMap, ok := resp.Result.(map[string]any)
	if !ok {
		return map[string]any{"result": resp.Result}, nil
	}

	if isErr, _ := resultMap["isError"].(bool); isErr {
		msg := "unknown error"
		if content, ok := resultMap["content"].([]any); ok {
			for _, c := range content {
				if cm, ok := c.(map[string]any); ok {
					if text, ok := cm["text"].(string); ok {
						msg = text
						break
					}
				}
			}
		}
		return map[string]any{"error": msg}, nil
	}

	out := make(map[string]any)
	if content, ok := resultMap["content"].([]any); ok {
		var texts []string
		for _, c := range content {
			if cm, ok := c.(map[string]any); ok && cm["type"] == "text" {
				if text, ok := cm["text"].(string); ok {
					texts = append(texts, text)
				}
			}
		}
		switch len(texts) {
		case 0:
		case 1:
			out["result"] = texts[0]
		default:
			out["results"] = texts
		}
	}
	return out, nil
}

func (s *httpSession) Close() error {
	return nil
}
