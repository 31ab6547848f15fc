package llm

import "fmt"

// NewClient builds the configured provider's Client, per spec §6's
// llm_provider/llm_api_key/llm_model configuration fields.
func NewClient(provider, apiKey, model string) (Client, error) {
	switch provider {
	case "anthropic":
		return NewAnthropicProvider(apiKey, model), nil
	case "openai":
		return NewOpenAIProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider)
	}
}
