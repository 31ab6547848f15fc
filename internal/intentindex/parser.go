package intentindex

import (
	"log/slog"
	"strings"
)

// L2Group is one parsed category block from an L2 generation response:
// an abstract label plus the verbatim L1 intent texts it groups.
type L2Group struct {
	Label     string
	L1Intents []string
}

// ParseL2Groups parses the L2 generation response's [GROUP]-delimited
// block grammar (spec §4.E.1): each block holds a "L2 Intent: <label>"
// line, an "L1 Intents:" marker, and zero or more "- <item>" member
// lines. A block missing its label or with no members is malformed and
// is skipped with a warning, matching the reference's own
// only-flush-if-complete behavior.
func ParseL2Groups(text string) []L2Group {
	var groups []L2Group
	var label string
	var members []string
	var hasLabel, inList bool

	flush := func() {
		switch {
		case hasLabel && len(members) > 0:
			groups = append(groups, L2Group{Label: label, L1Intents: members})
		case hasLabel || len(members) > 0:
			slog.Warn("skipping malformed L2 group block", "label", label, "members", len(members))
		}
		label = ""
		members = nil
		hasLabel = false
		inList = false
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case line == "[GROUP]":
			flush()
		case strings.HasPrefix(line, "L2 Intent:"):
			label = strings.TrimSpace(strings.TrimPrefix(line, "L2 Intent:"))
			hasLabel = true
		case line == "L1 Intents:":
			inList = true
		case inList && strings.HasPrefix(line, "- "):
			members = append(members, strings.TrimSpace(strings.TrimPrefix(line, "- ")))
		}
	}
	flush()

	return groups
}
