// Package config loads and validates process-wide settings for the kernel:
// vector-collection location, LLM credentials and model id, intent
// similarity thresholds, the default iteration budget, and the prompt
// template root.
package config

import (
	"fmt"
)

// Config is the single process-scope settings record (spec §4.G).
type Config struct {
	// IntentDBPersistDir is the directory the vector collection persists to.
	IntentDBPersistDir string `yaml:"intent_db_persist_dir"`

	// IntentCollectionName names the collection within the vector store.
	IntentCollectionName string `yaml:"intent_collection_name"`

	// ManifestPath points at the capability-server manifest JSON file.
	ManifestPath string `yaml:"manifest_path"`

	// TemplateRoot is the directory prompt templates are loaded from.
	TemplateRoot string `yaml:"template_root"`

	// LLMProvider selects which adapter to use: "openai" or "anthropic".
	LLMProvider string `yaml:"llm_provider"`

	// LLMAPIKey authenticates against the selected provider.
	LLMAPIKey string `yaml:"llm_api_key"`

	// LLMModel is the model id passed on every completion request.
	LLMModel string `yaml:"llm_model"`

	// EmbeddingAPIKey authenticates the OpenAI embeddings call the
	// intent store binds to its vector collection. Falls back to
	// OPENAI_API_KEY, since the embeddings endpoint is OpenAI's
	// regardless of which provider answers chat completions.
	EmbeddingAPIKey string `yaml:"embedding_api_key"`

	// EmbeddingModel is the OpenAI embedding model id.
	EmbeddingModel string `yaml:"embedding_model"`

	// IntentMatchThreshold gates act-phase candidate retrieval relevance;
	// currently informational (query_by_text returns top-N regardless),
	// kept for parity with the reference configuration surface.
	IntentMatchThreshold float64 `yaml:"intent_match_threshold"`

	// IntentInsertionThreshold is the UPSERT-on-similarity merge threshold.
	IntentInsertionThreshold float64 `yaml:"intent_insertion_threshold"`

	// DefaultMaxIterations bounds a cognitive-loop run when the caller
	// does not specify one explicitly.
	DefaultMaxIterations int `yaml:"default_max_iterations"`
}

// SetDefaults fills in zero-valued fields with documented defaults,
// mirroring common/config.py's env-var defaults.
func (c *Config) SetDefaults() {
	if c.IntentDBPersistDir == "" {
		c.IntentDBPersistDir = "chromadb_data"
	}
	if c.IntentCollectionName == "" {
		c.IntentCollectionName = "winston_intents"
	}
	if c.TemplateRoot == "" {
		c.TemplateRoot = "prompts"
	}
	if c.LLMProvider == "" {
		c.LLMProvider = "openai"
	}
	if c.LLMModel == "" {
		c.LLMModel = "gpt-4o"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.IntentMatchThreshold == 0 {
		c.IntentMatchThreshold = 0.7
	}
	if c.IntentInsertionThreshold == 0 {
		c.IntentInsertionThreshold = 0.92
	}
	if c.DefaultMaxIterations == 0 {
		c.DefaultMaxIterations = 10
	}
}

// Validate checks invariants that must hold before the kernel starts.
// Invalid thresholds are fatal (Configuration-Invalid, spec §7).
func (c *Config) Validate() error {
	if c.ManifestPath == "" {
		return fmt.Errorf("config: manifest_path is required")
	}
	if c.IntentMatchThreshold <= 0.0 || c.IntentMatchThreshold > 1.0 {
		return fmt.Errorf("config: intent_match_threshold %.4f must be in (0, 1]", c.IntentMatchThreshold)
	}
	if c.IntentInsertionThreshold <= 0.0 || c.IntentInsertionThreshold > 1.0 {
		return fmt.Errorf("config: intent_insertion_threshold %.4f must be in (0, 1]", c.IntentInsertionThreshold)
	}
	if c.DefaultMaxIterations < 0 {
		return fmt.Errorf("config: default_max_iterations must be >= 0")
	}
	if c.LLMProvider != "openai" && c.LLMProvider != "anthropic" {
		return fmt.Errorf("config: llm_provider must be 'openai' or 'anthropic', got %q", c.LLMProvider)
	}
	return nil
}

// GetConfig and Validate exist as a pair for testability, matching
// common/config.py's get_config/validate_config split: GetConfig here
// is just the identity accessor since Config is already a value, kept
// so tests can call GetConfig(cfg).Validate() the way the reference
// code calls validate_config(get_config()).
func GetConfig(c *Config) *Config { return c }
