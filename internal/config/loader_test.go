package config

import "testing"

func TestApplyEnvFallbacks_RejectsInvalidNumericEnv(t *testing.T) {
	t.Setenv("INTENT_MATCH_THRESHOLD", "abc")
	c := &Config{}
	if err := applyEnvFallbacks(c); err == nil {
		t.Error("expected error for non-numeric INTENT_MATCH_THRESHOLD")
	}
}

func TestApplyEnvFallbacks_RejectsInvalidInsertionThresholdEnv(t *testing.T) {
	t.Setenv("INTENT_INSERTION_THRESHOLD", "not-a-float")
	c := &Config{}
	if err := applyEnvFallbacks(c); err == nil {
		t.Error("expected error for non-numeric INTENT_INSERTION_THRESHOLD")
	}
}

func TestApplyEnvFallbacks_RejectsInvalidMaxProcessesEnv(t *testing.T) {
	t.Setenv("DEFAULT_MAX_PROCESSES", "five")
	c := &Config{}
	if err := applyEnvFallbacks(c); err == nil {
		t.Error("expected error for non-integer DEFAULT_MAX_PROCESSES")
	}
}

func TestApplyEnvFallbacks_WiresDefaultMaxProcesses(t *testing.T) {
	t.Setenv("DEFAULT_MAX_PROCESSES", "7")
	c := &Config{}
	if err := applyEnvFallbacks(c); err != nil {
		t.Fatalf("applyEnvFallbacks: %v", err)
	}
	if c.DefaultMaxIterations != 7 {
		t.Errorf("DefaultMaxIterations = %d, want 7", c.DefaultMaxIterations)
	}
}

func TestApplyEnvFallbacks_ValidNumericEnvApplied(t *testing.T) {
	t.Setenv("INTENT_MATCH_THRESHOLD", "0.6")
	t.Setenv("INTENT_INSERTION_THRESHOLD", "0.8")
	c := &Config{}
	if err := applyEnvFallbacks(c); err != nil {
		t.Fatalf("applyEnvFallbacks: %v", err)
	}
	if c.IntentMatchThreshold != 0.6 {
		t.Errorf("IntentMatchThreshold = %v, want 0.6", c.IntentMatchThreshold)
	}
	if c.IntentInsertionThreshold != 0.8 {
		t.Errorf("IntentInsertionThreshold = %v, want 0.8", c.IntentInsertionThreshold)
	}
}
