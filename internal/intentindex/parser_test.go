package intentindex

import "testing"

func TestParseL2Groups_MultipleBlocks(t *testing.T) {
	input := `
[GROUP]
L2 Intent: Manage files on disk
L1 Intents:
- Read a file from disk
- Write a file to disk
[GROUP]
L2 Intent: Send messages to people
L1 Intents:
- Send an email to a colleague
`
	groups := ParseL2Groups(input)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Label != "Manage files on disk" {
		t.Errorf("groups[0].Label = %q", groups[0].Label)
	}
	if len(groups[0].L1Intents) != 2 || groups[0].L1Intents[1] != "Write a file to disk" {
		t.Errorf("groups[0].L1Intents = %v", groups[0].L1Intents)
	}
	if groups[1].Label != "Send messages to people" {
		t.Errorf("groups[1].Label = %q", groups[1].Label)
	}
}

func TestParseL2Groups_SkipsMalformedBlock(t *testing.T) {
	input := `
[GROUP]
L2 Intent: Incomplete group with no members
L1 Intents:
[GROUP]
L2 Intent: Complete group
L1 Intents:
- one thing
`
	groups := ParseL2Groups(input)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1 (malformed block skipped)", len(groups))
	}
	if groups[0].Label != "Complete group" {
		t.Errorf("groups[0].Label = %q", groups[0].Label)
	}
}

func TestParseL2Groups_NoTrailingGroupMarker(t *testing.T) {
	input := `L2 Intent: Only one block, no trailing [GROUP]
L1 Intents:
- a thing
- another thing`

	groups := ParseL2Groups(input)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if len(groups[0].L1Intents) != 2 {
		t.Errorf("L1Intents = %v", groups[0].L1Intents)
	}
}

func TestParseL2Groups_Empty(t *testing.T) {
	if groups := ParseL2Groups(""); len(groups) != 0 {
		t.Errorf("expected no groups from empty input, got %v", groups)
	}
}
