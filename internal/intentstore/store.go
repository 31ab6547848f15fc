// Package intentstore implements the Intent Store (component C): a
// thin façade over an embedded vector collection providing the
// put/query/merge/collection-metadata operations the intent index
// builder and cognitive loop depend on.
package intentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/philippgille/chromem-go"
)

// ItemType distinguishes tool-level from category-level intent nodes,
// and the reserved collection-metadata record, within one collection.
type ItemType string

const (
	TypeL1       ItemType = "l1_intent"
	TypeL2       ItemType = "l2_intent"
	TypeMetadata ItemType = "metadata"
)

const collectionMetadataID = "collection_metadata"

// Item is one record to be stored: free text plus flat string/list
// metadata. List-valued metadata fields are passed via ListFields and
// are JSON-encoded for storage, matching the reference's convention of
// serializing array metadata as JSON strings. Fields carries scalar
// metadata (e.g. a tool's JSON input schema) stored verbatim, never
// merged as a list.
type Item struct {
	ID         string
	Text       string
	Type       ItemType
	ServerName string
	ToolURI    string
	ListFields map[string][]string
	Fields     map[string]string
}

// Match is one query result: the stored item plus its similarity score.
type Match struct {
	ID         string
	Text       string
	Type       ItemType
	ServerName string
	ToolURI    string
	ListFields map[string][]string
	Fields     map[string]string
	Similarity float64
}

// Store wraps one chromem-go collection.
type Store struct {
	db          *chromem.DB
	collection  *chromem.Collection
	persistPath string
}

// Open loads the database that Persist exported to
// persistDir/vectors.gob when that file exists (otherwise it starts
// empty), then gets or creates the named collection in it, binding an
// OpenAI-backed embedding function so the collection's native
// text-query API can be used directly (see embedding.go).
func Open(persistDir, collectionName, embeddingAPIKey, embeddingModel string) (*Store, error) {
	var db *chromem.DB
	var err error

	if persistDir != "" {
		if err := os.MkdirAll(persistDir, 0o755); err != nil {
			return nil, fmt.Errorf("create intent store persist dir: %w", err)
		}
		db = chromem.NewDB()
		dbPath := persistDir + "/vectors.gob"
		if _, statErr := os.Stat(dbPath); statErr == nil {
			//nolint:staticcheck // counterpart of the Export call in Persist
			if err := db.Import(dbPath, ""); err != nil {
				return nil, fmt.Errorf("load persisted intent store: %w", err)
			}
		}
	} else {
		db = chromem.NewDB()
	}

	embed := newOpenAIEmbeddingFunc(embeddingAPIKey, embeddingModel)
	col, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", collectionName, err)
	}

	s := &Store{db: db, collection: col}
	if persistDir != "" {
		s.persistPath = persistDir + "/vectors.gob"
	}
	return s, nil
}

// Persist writes the database to disk if a persist path is configured.
func (s *Store) Persist() error {
	if s.persistPath == "" {
		return nil
	}
	//nolint:staticcheck // chromem-go's replacement API requires per-collection snapshot plumbing not worth it here
	if err := s.db.Export(s.persistPath, false, ""); err != nil {
		return fmt.Errorf("persist intent store: %w", err)
	}
	return nil
}

// Put indexes or replaces one item by ID.
func (s *Store) Put(ctx context.Context, item Item) error {
	metadata := s.toMetadata(item)
	doc := chromem.Document{
		ID:       item.ID,
		Content:  item.Text,
		Metadata: metadata,
	}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return fmt.Errorf("index item %q: %w", item.ID, err)
	}
	return s.Persist()
}

func (s *Store) toMetadata(item Item) map[string]string {
	meta := map[string]string{
		"type":        string(item.Type),
		"server_name": item.ServerName,
		"tool_uri":    item.ToolURI,
	}
	for k, v := range item.ListFields {
		encoded, _ := json.Marshal(v)
		meta[k] = string(encoded)
	}
	for k, v := range item.Fields {
		meta[k] = v
	}
	return meta
}

// UpdateMetadata merges new list-valued fields into an existing item's
// stored metadata, order-preserving and deduplicated, matching
// update_document's merge algorithm — applied uniformly to both L1 and
// L2 records, unlike the reference's inconsistent L2 pre-merge path.
func (s *Store) UpdateMetadata(ctx context.Context, id string, newListFields map[string][]string) error {
	existing, err := s.collection.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("document %q not found for update: %w", id, err)
	}

	merged := make(map[string]string, len(existing.Metadata))
	for k, v := range existing.Metadata {
		merged[k] = v
	}

	for key, incoming := range newListFields {
		var combined []string
		if existingRaw, ok := merged[key]; ok {
			var existingList []string
			if err := json.Unmarshal([]byte(existingRaw), &existingList); err == nil {
				combined = append(combined, existingList...)
			}
		}
		combined = append(combined, incoming...)
		merged[key] = string(mustJSON(dedupPreserveOrder(combined)))
	}

	doc := chromem.Document{ID: id, Content: existing.Content, Metadata: merged}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("update document %q: %w", id, err)
	}
	return s.Persist()
}

func dedupPreserveOrder(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

// QueryByText finds up to n items most similar to text, optionally
// filtered to a single ItemType. similarity = 1 - distance is computed
// internally by chromem-go and returned directly as Similarity.
func (s *Store) QueryByText(ctx context.Context, text string, n int, itemType ItemType) ([]Match, error) {
	var where map[string]string
	if itemType != "" {
		where = map[string]string{"type": string(itemType)}
	}

	// chromem-go rejects a result count larger than the collection.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if n > count {
		n = count
	}

	results, err := s.collection.Query(ctx, text, n, where)
	if err != nil {
		if s.collection.Count() == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("query intent store: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, toMatch(r.ID, r.Content, r.Metadata, float64(r.Similarity)))
	}
	return matches, nil
}

func toMatch(id, content string, metadata map[string]string, similarity float64) Match {
	m := Match{
		ID:         id,
		Text:       content,
		Type:       ItemType(metadata["type"]),
		ServerName: metadata["server_name"],
		ToolURI:    metadata["tool_uri"],
		Similarity: similarity,
		ListFields: make(map[string][]string),
		Fields:     make(map[string]string),
	}
	for k, v := range metadata {
		if k == "type" || k == "server_name" || k == "tool_uri" {
			continue
		}
		var list []string
		if err := json.Unmarshal([]byte(v), &list); err == nil {
			m.ListFields[k] = list
			continue
		}
		m.Fields[k] = v
	}
	return m
}

// SetFieldIfAbsent writes a scalar metadata field on an existing item
// only if that field is not already present, matching the reference's
// "if the existing record lacks a schema, record the current tool's
// schema" UPSERT rule.
func (s *Store) SetFieldIfAbsent(ctx context.Context, id, key, value string) error {
	existing, err := s.collection.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("document %q not found for field update: %w", id, err)
	}
	if _, ok := existing.Metadata[key]; ok {
		return nil
	}

	merged := make(map[string]string, len(existing.Metadata)+1)
	for k, v := range existing.Metadata {
		merged[k] = v
	}
	merged[key] = value

	doc := chromem.Document{ID: id, Content: existing.Content, Metadata: merged}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("set field %q on document %q: %w", key, id, err)
	}
	return s.Persist()
}

// GetByID retrieves one item by its exact ID, or (Match{}, false) if absent.
func (s *Store) GetByID(ctx context.Context, id string) (Match, bool) {
	doc, err := s.collection.GetByID(ctx, id)
	if err != nil {
		return Match{}, false
	}
	return toMatch(doc.ID, doc.Content, doc.Metadata, 0), true
}

// Clear removes every item from the collection, including the reserved
// collection-metadata record.
func (s *Store) Clear(ctx context.Context) error {
	if s.collection.Count() == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, nil, nil); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	return s.Persist()
}

// SaveCollectionMetadata shallow-merges metadata into the reserved
// collection_metadata record, stored as a JSON document body rather
// than as vector-store metadata fields.
func (s *Store) SaveCollectionMetadata(ctx context.Context, metadata map[string]any) error {
	existing, _ := s.LoadCollectionMetadata(ctx)
	if existing == nil {
		existing = map[string]any{}
	}
	for k, v := range metadata {
		existing[k] = v
	}

	serialized, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("marshal collection metadata: %w", err)
	}

	doc := chromem.Document{
		ID:       collectionMetadataID,
		Content:  string(serialized),
		Metadata: map[string]string{"type": string(TypeMetadata)},
	}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("upsert collection metadata: %w", err)
	}
	return s.Persist()
}

// LoadCollectionMetadata reads the reserved collection_metadata record,
// returning an empty map if none has been saved yet.
func (s *Store) LoadCollectionMetadata(ctx context.Context) (map[string]any, error) {
	doc, err := s.collection.GetByID(ctx, collectionMetadataID)
	if err != nil {
		return map[string]any{}, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(doc.Content), &metadata); err != nil {
		return nil, fmt.Errorf("decode collection metadata: %w", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return metadata, nil
}

