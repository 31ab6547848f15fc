// Package kernel bundles the Capability Host, Intent Store, Prompt
// Renderer, LLM client, and Intent Index Builder into one explicit,
// constructor-built value, and hands out a fresh task context per run.
// This replaces the module-scope mutable state (trace log, client
// handle, template environment) the reference implementation uses with
// values passed explicitly end to end (spec §9's ambient-singleton
// elimination recommendation), following the same explicit
// collaborator-bundling-via-constructor shape as
// pkg/reasoning.DefaultAgentServices.
package kernel

import (
	"context"
	"fmt"

	"github.com/kadirpekel/intentkernel/internal/capability"
	"github.com/kadirpekel/intentkernel/internal/config"
	"github.com/kadirpekel/intentkernel/internal/intentindex"
	"github.com/kadirpekel/intentkernel/internal/intentstore"
	"github.com/kadirpekel/intentkernel/internal/llm"
	"github.com/kadirpekel/intentkernel/internal/loop"
	"github.com/kadirpekel/intentkernel/internal/prompt"
	"github.com/kadirpekel/intentkernel/internal/trace"
)

// Kernel owns every long-lived collaborator for the process's
// lifetime: one Capability Host, one Intent Store, one Renderer, one
// LLM client. It is built once at startup and shut down once at exit.
type Kernel struct {
	Config   *config.Config
	Host     *capability.Host
	Store    *intentstore.Store
	Renderer *prompt.Renderer
	LLM      llm.Client
	Builder  *intentindex.Builder
}

// Boot validates configuration, starts the Capability Host, opens the
// Intent Store, loads prompt templates, builds the LLM client, and
// ensures the intent index is fresh for the loaded manifest — in that
// order, matching chapter03/kernel.py's main()'s setup sequence. Any
// failure here is configuration-hard: Boot tears down everything it
// had already started and returns an error; the caller should treat
// this as fatal.
func Boot(ctx context.Context, cfg *config.Config) (*Kernel, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	manifest, err := capability.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("load capability manifest: %w", err)
	}

	host := capability.Startup(ctx, manifest)

	store, err := intentstore.Open(cfg.IntentDBPersistDir, cfg.IntentCollectionName, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	if err != nil {
		host.Shutdown()
		return nil, fmt.Errorf("open intent store: %w", err)
	}

	renderer, err := prompt.New(cfg.TemplateRoot)
	if err != nil {
		host.Shutdown()
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}

	client, err := llm.NewClient(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)
	if err != nil {
		host.Shutdown()
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	builder := intentindex.New(store, host, client, renderer, cfg.IntentInsertionThreshold)
	if err := builder.EnsureFresh(ctx, manifest); err != nil {
		host.Shutdown()
		return nil, fmt.Errorf("ensure intent index is fresh: %w", err)
	}

	return &Kernel{
		Config:   cfg,
		Host:     host,
		Store:    store,
		Renderer: renderer,
		LLM:      client,
		Builder:  builder,
	}, nil
}

// Shutdown releases every capability session, in reverse startup order.
func (k *Kernel) Shutdown() {
	k.Host.Shutdown()
}

// TaskContext is the per-run state the reference keeps as a
// module-scope `action_trace` global: one Trace Log and the Cognitive
// Loop bound to it. A fresh TaskContext must be obtained for every
// task so runs never observe each other's trace entries.
type TaskContext struct {
	Trace *trace.Log
	loop  *loop.Loop
}

// NewTask returns a fresh TaskContext bound to this Kernel's
// collaborators, with its own empty Trace Log.
func (k *Kernel) NewTask() *TaskContext {
	tr := trace.New()
	return &TaskContext{
		Trace: tr,
		loop:  loop.New(k.Store, k.Host, k.LLM, k.Renderer, tr),
	}
}

// Run executes one task to completion against this TaskContext's
// Cognitive Loop. Callers that want the kernel's configured default
// budget should pass k.Config.DefaultMaxIterations explicitly; Run
// itself treats maxIterations literally, including zero (spec's
// "max_iterations = 0 returns BLOCKED immediately" boundary).
func (k *Kernel) Run(ctx context.Context, tc *TaskContext, description string, maxIterations int) (loop.Result, error) {
	return tc.loop.RunTask(ctx, description, maxIterations)
}
