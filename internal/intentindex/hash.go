package intentindex

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/intentkernel/internal/capability"
)

// ConfigHash computes the SHA-256 hex digest of the manifest's
// canonical JSON form: map keys sorted recursively, no incidental
// whitespace, matching Python's json.dumps(sort_keys=True,
// separators=(",", ":")) (spec §4.E.2). Go's encoding/json already
// sorts map[string]any keys and emits compact output; the manifest is
// round-tripped through map[string]any once to flatten struct field
// order down to alphabetical key order at every nesting level.
func ConfigHash(manifest *capability.Manifest) (string, error) {
	raw, err := json.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("normalize manifest: %w", err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("marshal canonical manifest: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
