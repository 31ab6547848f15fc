package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/kadirpekel/intentkernel/internal/config/provider"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Loader loads and optionally watches configuration from a Provider.
type Loader struct {
	provider provider.Provider
	onChange func(*Config)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithOnChange sets a callback invoked when config changes.
func WithOnChange(fn func(*Config)) LoaderOption {
	return func(l *Loader) {
		l.onChange = fn
	}
}

// NewLoader creates a Loader backed by the given provider.
func NewLoader(p provider.Provider, opts ...LoaderOption) *Loader {
	l := &Loader{provider: p}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, parses, env-expands, decodes, defaults, and validates
// the configuration in one pipeline.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	data, err := l.provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	rawMap, err := parseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	expanded := expandEnvVars(rawMap)

	cfg := &Config{}
	if err := decodeConfig(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := applyEnvFallbacks(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Watch starts watching for config changes, invoking onChange on reload.
// Blocks until ctx is cancelled.
func (l *Loader) Watch(ctx context.Context) error {
	changes, err := l.provider.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watching: %w", err)
	}

	if changes == nil {
		slog.Info("config watching not supported by provider", "type", l.provider.Type())
		<-ctx.Done()
		return ctx.Err()
	}

	slog.Info("watching for config changes", "type", l.provider.Type())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			cfg, err := l.Load(ctx)
			if err != nil {
				slog.Error("failed to reload config", "error", err)
				continue
			}
			slog.Info("configuration reloaded")
			if l.onChange != nil {
				l.onChange(cfg)
			}
		}
	}
}

// Close releases resources held by the loader's provider.
func (l *Loader) Close() error {
	return l.provider.Close()
}

func parseBytes(data []byte) (map[string]any, error) {
	var result map[string]any
	if err := yaml.Unmarshal(data, &result); err == nil {
		return result, nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse as YAML or JSON: %w", err)
	}
	return result, nil
}

func decodeConfig(input map[string]any, output *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(input)
}

// applyEnvFallbacks fills still-empty fields from the environment
// variable names documented in spec §6, matching common/config.py's
// os.getenv-with-default pattern for values not set via the config file.
// Per spec §6 ("invalid numeric or out-of-range values are fatal"), a
// malformed numeric env var aborts loading rather than falling through
// to a default, matching common/config.py's bare float()/int() calls,
// which raise on a non-numeric value instead of swallowing it.
func applyEnvFallbacks(cfg *Config) error {
	if cfg.LLMAPIKey == "" {
		switch cfg.LLMProvider {
		case "anthropic":
			cfg.LLMAPIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			cfg.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = EnvOrDefault("OPENAI_MODEL", "")
	}
	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.IntentDBPersistDir == "" {
		cfg.IntentDBPersistDir = EnvOrDefault("INTENT_DB_PERSIST_DIR", "")
	}
	if cfg.IntentCollectionName == "" {
		cfg.IntentCollectionName = EnvOrDefault("INTENT_COLLECTION_NAME", "")
	}
	if cfg.IntentMatchThreshold == 0 {
		if v := os.Getenv("INTENT_MATCH_THRESHOLD"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("INTENT_MATCH_THRESHOLD=%q is not a valid number: %w", v, err)
			}
			cfg.IntentMatchThreshold = f
		}
	}
	if cfg.IntentInsertionThreshold == 0 {
		if v := os.Getenv("INTENT_INSERTION_THRESHOLD"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("INTENT_INSERTION_THRESHOLD=%q is not a valid number: %w", v, err)
			}
			cfg.IntentInsertionThreshold = f
		}
	}
	if cfg.DefaultMaxIterations == 0 {
		if v := os.Getenv("DEFAULT_MAX_PROCESSES"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("DEFAULT_MAX_PROCESSES=%q is not a valid integer: %w", v, err)
			}
			cfg.DefaultMaxIterations = n
		}
	}
	return nil
}

// LoadConfigFile is a convenience function for loading from a file path.
func LoadConfigFile(ctx context.Context, path string) (*Config, *Loader, error) {
	p, err := provider.NewFileProvider(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create provider: %w", err)
	}

	loader := NewLoader(p)
	cfg, err := loader.Load(ctx)
	if err != nil {
		p.Close()
		return nil, nil, err
	}

	return cfg, loader, nil
}
