package capability

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServerConfig is one entry of a manifest's "mcpServers" map. A server
// is classified as stdio when Command is set, or http when URL is set;
// spec's dual-transport requirement is authoritative here over the
// reference implementation's stdio-only dispatch.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
	URL     string            `json:"url"`
	Enabled *bool             `json:"enabled"`
}

// IsEnabled reports whether the server should be started; servers with
// no "enabled" field default to enabled.
func (c ServerConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Transport reports which session type a server config selects.
func (c ServerConfig) Transport() Transport {
	if c.Command != "" {
		return TransportStdio
	}
	return TransportHTTP
}

// Manifest is the parsed capability manifest file: a named set of
// capability server configurations.
type Manifest struct {
	Servers map[string]ServerConfig `json:"mcpServers"`
}

// LoadManifest reads and parses a manifest file from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
