// Package intentindex implements the Intent Index Builder (component
// E): a hash-gated, per-server two-pass L1/L2 generation pipeline with
// UPSERT-on-similarity merging, grounded on
// common/intent_generator.py's _build_intent_index algorithm.
package intentindex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kadirpekel/intentkernel/internal/capability"
	"github.com/kadirpekel/intentkernel/internal/intentstore"
	"github.com/kadirpekel/intentkernel/internal/llm"
	"github.com/kadirpekel/intentkernel/internal/prompt"
)

// toolLister is the slice of Capability Host behavior the builder
// needs: listing every tool currently exposed by connected servers.
type toolLister interface {
	ListAllTools(ctx context.Context) []capability.Tool
}

// store is the slice of Intent Store behavior the builder needs,
// narrowed from *intentstore.Store so tests can substitute a fake
// without standing up a real vector collection.
type store interface {
	Put(ctx context.Context, item intentstore.Item) error
	UpdateMetadata(ctx context.Context, id string, newListFields map[string][]string) error
	QueryByText(ctx context.Context, text string, n int, itemType intentstore.ItemType) ([]intentstore.Match, error)
	Clear(ctx context.Context) error
	SaveCollectionMetadata(ctx context.Context, metadata map[string]any) error
	LoadCollectionMetadata(ctx context.Context) (map[string]any, error)
	SetFieldIfAbsent(ctx context.Context, id, key, value string) error
}

// Builder owns the per-configuration regeneration of the intent
// hierarchy. It is a transient consumer of the Capability Host (for
// tool listings) and the Intent Store (for reads and writes); it does
// not own either.
type Builder struct {
	store              store
	host               toolLister
	llm                llm.Client
	renderer           *prompt.Renderer
	insertionThreshold float64
}

// New builds an intent index Builder over a real Capability Host and
// Intent Store.
func New(s *intentstore.Store, host *capability.Host, client llm.Client, renderer *prompt.Renderer, insertionThreshold float64) *Builder {
	return &Builder{
		store:              s,
		host:               host,
		llm:                client,
		renderer:           renderer,
		insertionThreshold: insertionThreshold,
	}
}

// EnsureFresh compares hash(manifest) against the collection's stored
// config_hash (spec §4.E). If they match, it returns immediately
// without touching the store or any LLM. Otherwise it clears the
// collection, rebuilds the full L1/L2 hierarchy, and only then writes
// the new hash — so a rebuild that fails partway leaves the hash
// mismatched and is retried in full on the next startup.
func (b *Builder) EnsureFresh(ctx context.Context, manifest *capability.Manifest) error {
	hash, err := ConfigHash(manifest)
	if err != nil {
		return fmt.Errorf("compute config hash: %w", err)
	}

	meta, err := b.store.LoadCollectionMetadata(ctx)
	if err != nil {
		return fmt.Errorf("load collection metadata: %w", err)
	}

	if existing, _ := meta["config_hash"].(string); existing == hash {
		slog.Info("intent index up to date, skipping rebuild", "config_hash", hash)
		return nil
	}

	slog.Info("manifest changed, rebuilding intent index", "config_hash", hash)
	if err := b.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear intent store before rebuild: %w", err)
	}

	if err := b.build(ctx); err != nil {
		return fmt.Errorf("build intent index: %w", err)
	}

	if err := b.store.SaveCollectionMetadata(ctx, map[string]any{"config_hash": hash}); err != nil {
		return fmt.Errorf("save config hash after rebuild: %w", err)
	}

	slog.Info("intent index rebuilt", "config_hash", hash)
	return nil
}

// build runs the server-by-server L1/L2 generation pass. Servers are
// visited in sorted name order for deterministic test behavior; the
// reference iterates a dict in insertion order, which Go maps don't
// preserve, so sorting is the closest reproducible equivalent.
func (b *Builder) build(ctx context.Context) error {
	byServer := make(map[string][]capability.Tool)
	for _, t := range b.host.ListAllTools(ctx) {
		byServer[t.ServerName] = append(byServer[t.ServerName], t)
	}

	names := make([]string, 0, len(byServer))
	for name := range byServer {
		names = append(names, name)
	}
	sort.Strings(names)

	var l1Count, l2Count int
	for _, name := range names {
		slog.Info("generating intents for server", "server", name, "tools", len(byServer[name]))

		l1Texts, n, err := b.processServerL1(ctx, name, byServer[name])
		if err != nil {
			return err
		}
		l1Count += n

		if len(l1Texts) == 0 {
			slog.Warn("no L1 intents to categorize for server", "server", name)
			continue
		}

		n, err = b.processServerL2(ctx, name, l1Texts)
		if err != nil {
			return err
		}
		l2Count += n
	}

	slog.Info("intent index build complete", "l1_upserts", l1Count, "l2_upserts", l2Count)
	return nil
}

// processServerL1 generates and UPSERTs one L1 intent per tool,
// returning the effective L1 texts (the merged-into text on a match,
// the freshly generated text on an insert) for L2 categorization.
func (b *Builder) processServerL1(ctx context.Context, serverName string, tools []capability.Tool) ([]string, int, error) {
	var texts []string
	upserts := 0

	for _, tool := range tools {
		promptText, err := b.renderer.RenderGenerateL1Intent(prompt.GenerateL1Vars{
			Tool: prompt.Tool{Name: tool.Name, Description: tool.Description, InputSchema: tool.InputSchema},
		})
		if err != nil {
			return nil, upserts, fmt.Errorf("render L1 prompt for %s::%s: %w", serverName, tool.Name, err)
		}

		resp, err := b.llm.Complete(llm.CompletionRequest{
			Messages:    []llm.Message{{Role: "user", Content: promptText}},
			Temperature: 0,
		})
		if err != nil {
			return nil, upserts, fmt.Errorf("generate L1 intent for %s::%s: %w", serverName, tool.Name, err)
		}
		intentText := strings.TrimSpace(resp.Text)
		toolURI := capability.ToolURI(serverName, tool.Name)

		matches, err := b.store.QueryByText(ctx, intentText, 1, intentstore.TypeL1)
		if err != nil {
			return nil, upserts, fmt.Errorf("query L1 candidates for %s::%s: %w", serverName, tool.Name, err)
		}

		if len(matches) > 0 && matches[0].Similarity >= b.insertionThreshold {
			existing := matches[0]
			slog.Info("merging tool into existing L1 intent", "tool", toolURI, "intent_id", existing.ID, "similarity", existing.Similarity)

			if err := b.store.UpdateMetadata(ctx, existing.ID, map[string][]string{"tools": {toolURI}}); err != nil {
				return nil, upserts, fmt.Errorf("merge tool %s into L1 %s: %w", toolURI, existing.ID, err)
			}
			if _, hasSchema := existing.Fields["schema"]; !hasSchema {
				schemaJSON, err := json.Marshal(tool.InputSchema)
				if err != nil {
					return nil, upserts, fmt.Errorf("marshal schema for %s::%s: %w", serverName, tool.Name, err)
				}
				if err := b.store.SetFieldIfAbsent(ctx, existing.ID, "schema", string(schemaJSON)); err != nil {
					return nil, upserts, fmt.Errorf("set schema on L1 %s: %w", existing.ID, err)
				}
			}
			texts = append(texts, existing.Text)
		} else {
			schemaJSON, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, upserts, fmt.Errorf("marshal schema for %s::%s: %w", serverName, tool.Name, err)
			}

			id := fmt.Sprintf("intent::L1::%s::%s", serverName, tool.Name)
			if err := b.store.Put(ctx, intentstore.Item{
				ID:         id,
				Text:       intentText,
				Type:       intentstore.TypeL1,
				ServerName: serverName,
				ToolURI:    toolURI,
				ListFields: map[string][]string{"tools": {toolURI}},
				Fields:     map[string]string{"schema": string(schemaJSON)},
			}); err != nil {
				return nil, upserts, fmt.Errorf("insert L1 intent %s: %w", id, err)
			}
			slog.Info("inserted new L1 intent", "intent_id", id, "text", intentText)
			texts = append(texts, intentText)
		}
		upserts++
	}

	return texts, upserts, nil
}

// processServerL2 generates L2 category labels over a server's L1
// texts and UPSERTs each resulting group.
func (b *Builder) processServerL2(ctx context.Context, serverName string, l1Texts []string) (int, error) {
	promptText, err := b.renderer.RenderGenerateL2Intent(prompt.GenerateL2Vars{L1Intents: l1Texts})
	if err != nil {
		return 0, fmt.Errorf("render L2 prompt for %s: %w", serverName, err)
	}

	resp, err := b.llm.Complete(llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: promptText}},
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("generate L2 intents for %s: %w", serverName, err)
	}

	groups := ParseL2Groups(resp.Text)
	for idx, group := range groups {
		matches, err := b.store.QueryByText(ctx, group.Label, 1, intentstore.TypeL2)
		if err != nil {
			return idx, fmt.Errorf("query L2 candidates for %s: %w", serverName, err)
		}

		if len(matches) > 0 && matches[0].Similarity >= b.insertionThreshold {
			existing := matches[0]
			slog.Info("merging group into existing L2 intent", "server", serverName, "intent_id", existing.ID, "similarity", existing.Similarity)
			if err := b.store.UpdateMetadata(ctx, existing.ID, map[string][]string{"l1_intents": group.L1Intents}); err != nil {
				return idx, fmt.Errorf("merge L2 group into %s: %w", existing.ID, err)
			}
			continue
		}

		id := fmt.Sprintf("intent::L2::%s::%d", serverName, idx)
		if err := b.store.Put(ctx, intentstore.Item{
			ID:         id,
			Text:       group.Label,
			Type:       intentstore.TypeL2,
			ServerName: serverName,
			ListFields: map[string][]string{"l1_intents": group.L1Intents},
		}); err != nil {
			return idx, fmt.Errorf("insert L2 intent %s: %w", id, err)
		}
		slog.Info("inserted new L2 intent", "intent_id", id, "label", group.Label)
	}

	return len(groups), nil
}
