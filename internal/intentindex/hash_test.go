package intentindex

import (
	"testing"

	"github.com/kadirpekel/intentkernel/internal/capability"
)

func TestConfigHash_StableUnderFieldReordering(t *testing.T) {
	enabled := true
	m1 := &capability.Manifest{Servers: map[string]capability.ServerConfig{
		"mail": {Command: "mail-server", Args: []string{"--stdio"}, Enabled: &enabled},
		"fs":   {Command: "fs-server"},
	}}
	m2 := &capability.Manifest{Servers: map[string]capability.ServerConfig{
		"fs":   {Command: "fs-server"},
		"mail": {Command: "mail-server", Args: []string{"--stdio"}, Enabled: &enabled},
	}}

	h1, err := ConfigHash(m1)
	if err != nil {
		t.Fatalf("ConfigHash: %v", err)
	}
	h2, err := ConfigHash(m2)
	if err != nil {
		t.Fatalf("ConfigHash: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash differs under map iteration order: %s != %s", h1, h2)
	}
}

func TestConfigHash_ChangesWithContent(t *testing.T) {
	m1 := &capability.Manifest{Servers: map[string]capability.ServerConfig{"mail": {Command: "mail-server"}}}
	m2 := &capability.Manifest{Servers: map[string]capability.ServerConfig{"mail": {Command: "mail-server-v2"}}}

	h1, _ := ConfigHash(m1)
	h2, _ := ConfigHash(m2)
	if h1 == h2 {
		t.Error("expected different hashes for different manifests")
	}
}

func TestConfigHash_Deterministic(t *testing.T) {
	m := &capability.Manifest{Servers: map[string]capability.ServerConfig{"mail": {Command: "mail-server"}}}
	h1, _ := ConfigHash(m)
	h2, _ := ConfigHash(m)
	if h1 != h2 {
		t.Error("expected identical hashes for repeated calls on the same manifest")
	}
}
