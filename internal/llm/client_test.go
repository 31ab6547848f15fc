package llm

import "testing"

func TestNewClient_Anthropic(t *testing.T) {
	c, err := NewClient("anthropic", "key", "claude-3-5-sonnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ModelName() != "claude-3-5-sonnet" {
		t.Errorf("ModelName() = %q", c.ModelName())
	}
	if _, ok := c.(*AnthropicProvider); !ok {
		t.Errorf("expected *AnthropicProvider, got %T", c)
	}
}

func TestNewClient_OpenAI(t *testing.T) {
	c, err := NewClient("openai", "key", "gpt-4o")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*OpenAIProvider); !ok {
		t.Errorf("expected *OpenAIProvider, got %T", c)
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	if _, err := NewClient("gemini", "key", "model"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
