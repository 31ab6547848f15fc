package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIProvider_Complete_TextResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("wrong Authorization header: %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []openAIChoice{{Message: openAIResponseMessage{Content: "hello"}}},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o")
	p.baseURL = server.URL

	resp, err := p.Complete(CompletionRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello" {
		t.Errorf("Text = %q, want hello", resp.Text)
	}
}

func TestOpenAIProvider_Complete_ToolChoiceRequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ToolChoice != "required" {
			t.Errorf("ToolChoice = %v, want required", req.ToolChoice)
		}
		args, _ := json.Marshal(map[string]any{"tool_uri": "tool::fs::read"})
		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []openAIChoice{{Message: openAIResponseMessage{
				ToolCalls: []openAIToolCall{{
					ID: "call_1", Type: "function",
					Function: openAIToolCallFunction{Name: "execute_tool", Arguments: string(args)},
				}},
			}}},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o")
	p.baseURL = server.URL

	resp, err := p.Complete(CompletionRequest{
		Messages:   []Message{{Role: "user", Content: "hi"}},
		Tools:      []ToolDefinition{{Name: "execute_tool", Parameters: map[string]any{"type": "object"}}},
		ToolChoice: ToolChoiceRequired,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Arguments["tool_uri"] != "tool::fs::read" {
		t.Fatalf("ToolCalls = %+v", resp.ToolCalls)
	}
}

func TestOpenAIProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(openAIResponse{
			Error: &openAIError{Type: "invalid_api_key", Message: "bad key"},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o")
	p.baseURL = server.URL

	if _, err := p.Complete(CompletionRequest{Messages: []Message{{Role: "user", Content: "hi"}}}); err == nil {
		t.Error("expected error")
	}
}
