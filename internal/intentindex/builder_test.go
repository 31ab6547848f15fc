package intentindex

import (
	"context"
	"strings"
	"testing"

	"github.com/kadirpekel/intentkernel/internal/capability"
	"github.com/kadirpekel/intentkernel/internal/intentstore"
	"github.com/kadirpekel/intentkernel/internal/llm"
	"github.com/kadirpekel/intentkernel/internal/prompt"
)

// fakeHost is a minimal toolLister for tests, avoiding a real
// capability.Host (which requires live subprocess/HTTP sessions).
type fakeHost struct {
	tools []capability.Tool
}

func (f *fakeHost) ListAllTools(context.Context) []capability.Tool { return f.tools }

// fakeLLM returns a fixed L1 sentence for every tool and a single L2
// group referencing it, so tests can assert on UPSERT behavior without
// a real model.
type fakeLLM struct {
	l1Text  string
	l2Block string
}

func (f *fakeLLM) Complete(req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	content := req.Messages[0].Content
	if strings.Contains(content, "Tool name:") {
		return &llm.CompletionResponse{Text: f.l1Text}, nil
	}
	return &llm.CompletionResponse{Text: f.l2Block}, nil
}

func (f *fakeLLM) ModelName() string { return "fake" }

// fakeStore is an in-memory store double implementing the narrow
// `store` interface, with exact-text-match "similarity" so UPSERT
// merge/insert decisions are deterministic in tests.
type fakeStore struct {
	items map[string]intentstore.Item
	meta  map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string]intentstore.Item{}, meta: map[string]any{}}
}

func (s *fakeStore) Put(_ context.Context, item intentstore.Item) error {
	s.items[item.ID] = item
	return nil
}

func dedupAppend(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, v := range existing {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range incoming {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func (s *fakeStore) UpdateMetadata(_ context.Context, id string, newListFields map[string][]string) error {
	item := s.items[id]
	if item.ListFields == nil {
		item.ListFields = map[string][]string{}
	}
	for k, incoming := range newListFields {
		item.ListFields[k] = dedupAppend(item.ListFields[k], incoming)
	}
	s.items[id] = item
	return nil
}

func (s *fakeStore) QueryByText(_ context.Context, text string, _ int, itemType intentstore.ItemType) ([]intentstore.Match, error) {
	for _, item := range s.items {
		if item.Type == itemType && item.Text == text {
			return []intentstore.Match{{
				ID: item.ID, Text: item.Text, Type: item.Type,
				ServerName: item.ServerName, ToolURI: item.ToolURI,
				ListFields: item.ListFields, Fields: item.Fields,
				Similarity: 1.0,
			}}, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Clear(context.Context) error {
	s.items = map[string]intentstore.Item{}
	return nil
}

func (s *fakeStore) SaveCollectionMetadata(_ context.Context, metadata map[string]any) error {
	for k, v := range metadata {
		s.meta[k] = v
	}
	return nil
}

func (s *fakeStore) LoadCollectionMetadata(context.Context) (map[string]any, error) {
	return s.meta, nil
}

func (s *fakeStore) SetFieldIfAbsent(_ context.Context, id, key, value string) error {
	item := s.items[id]
	if item.Fields == nil {
		item.Fields = map[string]string{}
	}
	if _, ok := item.Fields[key]; !ok {
		item.Fields[key] = value
	}
	s.items[id] = item
	return nil
}

func testRenderer(t *testing.T) *prompt.Renderer {
	t.Helper()
	r, err := prompt.New("../../prompts")
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	return r
}

// TestBuilder_UpsertMergesAcrossServers exercises spec scenario S3:
// two servers each generate the identical L1 sentence for their one
// tool; the second UPSERT must merge into the first's record rather
// than inserting a duplicate.
func TestBuilder_UpsertMergesAcrossServers(t *testing.T) {
	host := &fakeHost{tools: []capability.Tool{
		{ServerName: "mailA", Name: "send_email", Description: "send an email", InputSchema: map[string]any{"type": "object"}},
		{ServerName: "mailB", Name: "notify", Description: "send an email too", InputSchema: map[string]any{"type": "object"}},
	}}
	llmClient := &fakeLLM{
		l1Text:  "Send an email to a colleague.",
		l2Block: "[GROUP]\nL2 Intent: Communicate with colleagues\nL1 Intents:\n- Send an email to a colleague.\n",
	}
	st := newFakeStore()

	b := &Builder{store: st, host: host, llm: llmClient, renderer: testRenderer(t), insertionThreshold: 0.92}

	if err := b.EnsureFresh(context.Background(), &capability.Manifest{}); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}

	var l1Items []intentstore.Item
	for _, item := range st.items {
		if item.Type == intentstore.TypeL1 {
			l1Items = append(l1Items, item)
		}
	}
	if len(l1Items) != 1 {
		t.Fatalf("L1 record count = %d, want 1 (merged across servers)", len(l1Items))
	}

	tools := l1Items[0].ListFields["tools"]
	if len(tools) != 2 {
		t.Fatalf("merged tools = %v, want 2 URIs", tools)
	}
	if tools[0] != "tool::mailA::send_email" || tools[1] != "tool::mailB::notify" {
		t.Errorf("tools = %v, want insertion order preserved", tools)
	}
}

// TestBuilder_EnsureFresh_SkipsUnchangedManifest exercises spec
// scenario S5 / invariant I3: an unchanged manifest must not trigger a
// rebuild, so QueryByText/LLM are never invoked on the second call.
func TestBuilder_EnsureFresh_SkipsUnchangedManifest(t *testing.T) {
	host := &fakeHost{tools: []capability.Tool{
		{ServerName: "fs", Name: "read", Description: "read a file", InputSchema: map[string]any{}},
	}}
	llmClient := &fakeLLM{l1Text: "Read a file from disk.", l2Block: "[GROUP]\nL2 Intent: File operations\nL1 Intents:\n- Read a file from disk.\n"}
	st := newFakeStore()
	b := &Builder{store: st, host: host, llm: llmClient, renderer: testRenderer(t), insertionThreshold: 0.92}

	manifest := &capability.Manifest{Servers: map[string]capability.ServerConfig{"fs": {Command: "fs-server"}}}

	if err := b.EnsureFresh(context.Background(), manifest); err != nil {
		t.Fatalf("first EnsureFresh: %v", err)
	}
	if len(st.items) == 0 {
		t.Fatal("expected records after first build")
	}
	snapshot := len(st.items)

	// Swap in a host that would panic if ever consulted, to prove the
	// second call short-circuits on the unchanged hash.
	b.host = &panicHost{t: t}

	if err := b.EnsureFresh(context.Background(), manifest); err != nil {
		t.Fatalf("second EnsureFresh: %v", err)
	}
	if len(st.items) != snapshot {
		t.Errorf("record count changed on unchanged manifest: %d != %d", len(st.items), snapshot)
	}
}

type panicHost struct{ t *testing.T }

func (p *panicHost) ListAllTools(context.Context) []capability.Tool {
	p.t.Fatal("ListAllTools should not be called when the manifest hash is unchanged")
	return nil
}

// TestBuilder_EmptyManifest_ProducesEmptyIndex covers the boundary
// case: no servers means no L1/L2 records and no LLM calls.
func TestBuilder_EmptyManifest_ProducesEmptyIndex(t *testing.T) {
	host := &fakeHost{}
	llmClient := &panicLLM{t: t}
	st := newFakeStore()
	b := &Builder{store: st, host: host, llm: llmClient, renderer: testRenderer(t), insertionThreshold: 0.92}

	if err := b.EnsureFresh(context.Background(), &capability.Manifest{}); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	if len(st.items) != 0 {
		t.Errorf("expected no records for an empty manifest, got %d", len(st.items))
	}
}

type panicLLM struct{ t *testing.T }

func (p *panicLLM) Complete(llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.t.Fatal("Complete should not be called when there are no tools")
	return nil, nil
}

func (p *panicLLM) ModelName() string { return "panic" }
