// Package capability implements the Capability Host (component D):
// supervises external capability servers over stdio or HTTP transports,
// exposing a uniform tool-listing and invocation surface.
package capability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Transport identifies how a capability server is reached.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

const toolURISeparator = "::"
const toolURIPrefix = "tool" + toolURISeparator

// Tool describes one capability exposed by a connected server.
type Tool struct {
	URI         string
	ServerName  string
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolURI builds the "tool::server::tool" identifier for one capability.
func ToolURI(serverName, toolName string) string {
	return toolURIPrefix + serverName + toolURISeparator + toolName
}

// ParseToolURI splits a tool URI into its server and tool name
// components, rejecting any string that doesn't match the
// "tool::server::tool" grammar exactly.
func ParseToolURI(uri string) (serverName, toolName string, err error) {
	if !strings.HasPrefix(uri, toolURIPrefix) {
		return "", "", fmt.Errorf("malformed tool URI %q: missing %q prefix", uri, toolURIPrefix)
	}
	rest := strings.TrimPrefix(uri, toolURIPrefix)
	parts := strings.SplitN(rest, toolURISeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed tool URI %q: expected tool::<server>::<tool>", uri)
	}
	return parts[0], parts[1], nil
}

// session is the minimal surface both transports implement.
type session interface {
	ListTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, toolName string, args map[string]any) (map[string]any, error)
	Close() error
}

// Host supervises every capability server named in a manifest,
// exposing their tools under a single uniform interface. A server that
// fails to start or list its tools is skipped rather than aborting
// startup for the rest, mirroring the reference's per-server
// try/except degrade.
type Host struct {
	sessions map[string]session
	// closeOrder preserves startup order so shutdown can release
	// resources in reverse, the Go equivalent of an AsyncExitStack.
	closeOrder []string
}

// Startup connects to every enabled server in the manifest and
// performs its initialize handshake; tools are listed later, by
// ListAllTools. It never returns an error for an individual server
// failure; those are logged and the server is simply absent from
// ListAllTools.
func Startup(ctx context.Context, manifest *Manifest) *Host {
	h := &Host{sessions: make(map[string]session)}

	for name, cfg := range manifest.Servers {
		if !cfg.IsEnabled() {
			continue
		}

		sess, err := dial(ctx, name, cfg)
		if err != nil {
			slog.Error("capability server failed to start, skipping", "server", name, "error", err)
			continue
		}

		h.sessions[name] = sess
		h.closeOrder = append(h.closeOrder, name)
		slog.Info("capability server connected", "server", name, "transport", cfg.Transport())
	}

	return h
}

func dial(ctx context.Context, name string, cfg ServerConfig) (session, error) {
	switch cfg.Transport() {
	case TransportStdio:
		return newStdioSession(ctx, name, cfg)
	default:
		return newHTTPSession(ctx, name, cfg)
	}
}

// ListAllTools lists every tool exposed by every connected server. A
// server whose tools/list call fails is logged and contributes no
// tools, rather than failing the whole listing.
func (h *Host) ListAllTools(ctx context.Context) []Tool {
	var all []Tool
	for name, sess := range h.sessions {
		tools, err := sess.ListTools(ctx)
		if err != nil {
			slog.Error("failed to list tools for capability server", "server", name, "error", err)
			continue
		}
		for _, t := range tools {
			t.ServerName = name
			t.URI = ToolURI(name, t.Name)
			all = append(all, t)
		}
	}
	return all
}

// CallTool invokes one tool identified by its "tool::server::tool" URI.
func (h *Host) CallTool(ctx context.Context, toolURI string, args map[string]any) (map[string]any, error) {
	serverName, toolName, err := ParseToolURI(toolURI)
	if err != nil {
		return nil, err
	}

	sess, ok := h.sessions[serverName]
	if !ok {
		return nil, fmt.Errorf("capability server %q is not connected", serverName)
	}

	return sess.CallTool(ctx, toolName, args)
}

// Shutdown closes every session in the reverse of startup order.
func (h *Host) Shutdown() {
	for i := len(h.closeOrder) - 1; i >= 0; i-- {
		name := h.closeOrder[i]
		if err := h.sessions[name].Close(); err != nil {
			slog.Warn("error closing capability server", "server", name, "error", err)
		}
	}
}
