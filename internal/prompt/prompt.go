// Package prompt implements the Prompt Renderer (component B): a named
// catalogue of text/template templates loaded once from a directory
// root and rendered against the variables the cognitive loop and the
// intent index builder supply.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Name identifies one of the four templates the renderer serves.
type Name string

const (
	// Reasoning renders the reasoning-phase prompt.
	Reasoning Name = "reasoning"
	// Action renders the action-phase prompt.
	Action Name = "action"
	// GenerateL1Intent renders the per-tool L1 intent generation prompt.
	GenerateL1Intent Name = "generate_l1_intent"
	// GenerateL2Intent renders the per-server L2 category generation prompt.
	GenerateL2Intent Name = "generate_l2_intent"
)

var templateFiles = map[Name]string{
	Reasoning:        "reasoning.md",
	Action:           "action.md",
	GenerateL1Intent: "generate_l1_intent.md",
	GenerateL2Intent: "generate_l2_intent.md",
}

// TraceEntry mirrors trace.Entry's rendered shape without importing
// internal/trace, keeping the renderer a leaf package.
type TraceEntry struct {
	Reasoning string
	Action    string
	Result    string
}

// Option is one candidate intent node surfaced by an intent-store query,
// as rendered into the action prompt.
type Option struct {
	ID         string
	Text       string
	Type       string // "l1" or "l2"
	ServerName string
	ToolURI    string
	Similarity float64
}

// Tool is one capability tool definition, as rendered into the
// per-tool L1 intent generation prompt.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ReasoningVars are the variables the reasoning-phase template expects.
type ReasoningVars struct {
	TaskDescription string
	ActionTrace     []TraceEntry
}

// ActionVars are the variables the action-phase template expects.
type ActionVars struct {
	TaskDescription string
	CurrentIntent   string
	IntentRationale string
	Options         []Option
	ActionTrace     []TraceEntry
}

// GenerateL1Vars are the variables the L1 generation template expects.
type GenerateL1Vars struct {
	Tool Tool
}

// GenerateL2Vars are the variables the L2 generation template expects.
type GenerateL2Vars struct {
	L1Intents []string
}

// Renderer loads and renders the fixed four-template catalogue from a
// directory root. Templates are parsed once at construction; a missing
// or malformed template is a startup-time fatal error, not a
// per-render failure.
type Renderer struct {
	templates map[Name]*template.Template
}

// New parses every template named in templateFiles from root. It
// returns an error naming the first missing or unparsable template.
func New(root string) (*Renderer, error) {
	r := &Renderer{templates: make(map[Name]*template.Template)}
	for name, file := range templateFiles {
		path := filepath.Join(root, file)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("template %q not found at %s: %w", name, path, err)
		}
		tmpl, err := template.New(string(name)).Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("template %q at %s is malformed: %w", name, path, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

func (r *Renderer) render(name Name, vars any) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}

// RenderReasoning renders the reasoning-phase prompt.
func (r *Renderer) RenderReasoning(vars ReasoningVars) (string, error) {
	return r.render(Reasoning, vars)
}

// RenderAction renders the action-phase prompt.
func (r *Renderer) RenderAction(vars ActionVars) (string, error) {
	return r.render(Action, vars)
}

// RenderGenerateL1Intent renders the per-tool L1 generation prompt.
func (r *Renderer) RenderGenerateL1Intent(vars GenerateL1Vars) (string, error) {
	return r.render(GenerateL1Intent, vars)
}

// RenderGenerateL2Intent renders the per-server L2 generation prompt.
func (r *Renderer) RenderGenerateL2Intent(vars GenerateL2Vars) (string, error) {
	return r.render(GenerateL2Intent, vars)
}
