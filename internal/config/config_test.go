package config

import "testing"

func TestSetDefaults(t *testing.T) {
	c := &Config{}
	c.SetDefaults()

	if c.IntentDBPersistDir != "chromadb_data" {
		t.Errorf("IntentDBPersistDir = %v, want chromadb_data", c.IntentDBPersistDir)
	}
	if c.IntentCollectionName != "winston_intents" {
		t.Errorf("IntentCollectionName = %v, want winston_intents", c.IntentCollectionName)
	}
	if c.IntentInsertionThreshold != 0.92 {
		t.Errorf("IntentInsertionThreshold = %v, want 0.92", c.IntentInsertionThreshold)
	}
	if c.DefaultMaxIterations != 10 {
		t.Errorf("DefaultMaxIterations = %v, want 10", c.DefaultMaxIterations)
	}
}

func TestValidate_RejectsOutOfRangeThresholds(t *testing.T) {
	c := &Config{ManifestPath: "m.json", LLMProvider: "openai"}
	c.SetDefaults()

	c.IntentMatchThreshold = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero match threshold")
	}

	c.IntentMatchThreshold = 1.5
	if err := c.Validate(); err == nil {
		t.Error("expected error for match threshold > 1")
	}

	c.IntentMatchThreshold = 0.7
	c.IntentInsertionThreshold = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero insertion threshold")
	}
}

func TestValidate_RequiresManifestPath(t *testing.T) {
	c := &Config{}
	c.SetDefaults()
	if err := c.Validate(); err == nil {
		t.Error("expected error for missing manifest_path")
	}
}

func TestValidate_RejectsUnknownProvider(t *testing.T) {
	c := &Config{ManifestPath: "m.json", LLMProvider: "gemini"}
	c.SetDefaults()
	if err := c.Validate(); err == nil {
		t.Error("expected error for unsupported llm_provider")
	}
}

func TestExpandEnvString(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	if got := expandEnvString("prefix-$TEST_VAR-suffix"); got != "prefix-value-suffix" {
		t.Errorf("expandEnvString simple = %q", got)
	}
	if got := expandEnvString("${TEST_VAR}"); got != "value" {
		t.Errorf("expandEnvString braced = %q", got)
	}
	if got := expandEnvString("${MISSING_VAR:-fallback}"); got != "fallback" {
		t.Errorf("expandEnvString default = %q", got)
	}
}
