package capability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSession_InitializeListAndCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		json.NewDecoder(r.Body).Decode(&req)

		switch req.Method {
		case "initialize":
			json.NewEncoder(w).Encode(jsonRPCResponse{JSONRPC: "2.0", ID: 1, Result: map[string]any{}})
		case "tools/list":
			json.NewEncoder(w).Encode(jsonRPCResponse{JSONRPC: "2.0", ID: 1, Result: map[string]any{
				"tools": []any{
					map[string]any{"name": "read_file", "description": "reads a file", "inputSchema": map[string]any{"type": "object"}},
				},
			}})
		case "tools/call":
			json.NewEncoder(w).Encode(jsonRPCResponse{JSONRPC: "2.0", ID: 1, Result: map[string]any{
				"content": []any{map[string]any{"type": "text", "text": "file contents"}},
			}})
		}
	}))
	defer server.Close()

	ctx := context.Background()
	sess, err := newHTTPSession(ctx, "search", ServerConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("newHTTPSession: %v", err)
	}

	tools, err := sess.ListTools(ctx)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "read_file" {
		t.Fatalf("tools = %+v", tools)
	}

	result, err := sess.CallTool(ctx, "read_file", map[string]any{"path": "/tmp/x"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result["result"] != "file contents" {
		t.Fatalf("result = %+v", result)
	}
}

func TestHTTPSession_InitializeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(jsonRPCResponse{
			JSONRPC: "2.0", ID: 1,
			Error: &jsonRPCError{Code: -32000, Message: "boom"},
		})
	}))
	defer server.Close()

	if _, err := newHTTPSession(context.Background(), "search", ServerConfig{URL: server.URL}); err == nil {
		t.Error("expected error when initialize fails")
	}
}
