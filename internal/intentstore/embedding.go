package intentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openAIEmbeddingsURL = "https://api.openai.com/v1/embeddings"

type openAIEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// newOpenAIEmbeddingFunc builds a chromem.EmbeddingFunc-compatible
// function backed by the OpenAI embeddings API, grounded on the
// teacher's standalone embedders.OpenAIEmbedder HTTP mechanics. The
// teacher's own chromem-go wrapper binds an identity embedding
// function because hector precomputes vectors elsewhere; this store
// instead uses chromem-go's native text-query contract, which needs a
// real embedding function bound at collection-creation time.
func newOpenAIEmbeddingFunc(apiKey, model string) func(ctx context.Context, text string) ([]float32, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return func(ctx context.Context, text string) ([]float32, error) {
		body, err := json.Marshal(openAIEmbedRequest{Model: model, Input: text})
		if err != nil {
			return nil, fmt.Errorf("marshal embedding request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEmbeddingsURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build embedding request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read embedding response: %w", err)
		}

		var parsed openAIEmbedResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("decode embedding response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			if parsed.Error != nil {
				return nil, fmt.Errorf("embedding API error: %s", parsed.Error.Message)
			}
			return nil, fmt.Errorf("embedding API returned status %d", resp.StatusCode)
		}
		if len(parsed.Data) == 0 {
			return nil, fmt.Errorf("embedding API returned no data")
		}
		return parsed.Data[0].Embedding, nil
	}
}
