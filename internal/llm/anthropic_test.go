package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicProvider_Complete_TextResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing or wrong x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: "hello"}},
		})
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", "claude-3-5-sonnet")
	p.baseURL = server.URL

	resp, err := p.Complete(CompletionRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello" {
		t.Errorf("Text = %q, want hello", resp.Text)
	}
}

func TestAnthropicProvider_Complete_ToolUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		json.NewDecoder(r.Body).Decode(&req)
		if tc, ok := req.ToolChoice.(map[string]any); !ok || tc["type"] != "any" {
			t.Errorf("ToolChoice = %v, want {type: any}", req.ToolChoice)
		}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{{
				Type: "tool_use", ID: "call_1", Name: "do",
				Input: map[string]any{"intent": "x"},
			}},
		})
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", "claude-3-5-sonnet")
	p.baseURL = server.URL

	resp, err := p.Complete(CompletionRequest{
		Messages:   []Message{{Role: "user", Content: "hi"}},
		Tools:      []ToolDefinition{{Name: "do", Parameters: map[string]any{"type": "object"}}},
		ToolChoice: ToolChoiceRequired,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "do" {
		t.Fatalf("ToolCalls = %+v", resp.ToolCalls)
	}
}

func TestAnthropicProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(anthropicResponse{
			Error: &anthropicError{Type: "invalid_request_error", Message: "bad input"},
		})
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", "claude-3-5-sonnet")
	p.baseURL = server.URL

	if _, err := p.Complete(CompletionRequest{Messages: []Message{{Role: "user", Content: "hi"}}}); err == nil {
		t.Error("expected error")
	}
}
