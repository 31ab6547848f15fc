// Package trace implements the Task Trace Entry log (component A): an
// ordered, in-memory, append-only record of (reasoning, action, result)
// triples scoped to a single task run.
package trace

import "time"

// Entry is one recorded step of a cognitive-loop run.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Reasoning string    `json:"reasoning"`
	Action    string    `json:"action"`
	Result    string    `json:"result"`
}

// Log is an ordered sequence of Entry values for a single task. It is
// not safe for concurrent use; the cognitive loop is its only writer.
type Log struct {
	entries []Entry
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Reset discards all entries.
func (l *Log) Reset() {
	l.entries = nil
}

// Append records one step with the current time as its timestamp.
func (l *Log) Append(reasoning, action, result string) {
	l.entries = append(l.entries, Entry{
		Timestamp: time.Now(),
		Reasoning: reasoning,
		Action:    action,
		Result:    result,
	})
}

// Snapshot returns the ordered entries recorded so far, for template
// rendering. The returned slice must not be mutated by callers.
func (l *Log) Snapshot() []Entry {
	return l.entries
}

// Len reports how many entries have been recorded.
func (l *Log) Len() int {
	return len(l.entries)
}
