package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog_AppendAndSnapshot(t *testing.T) {
	l := New()
	l.Append("think", "do", "ok")
	l.Append("think2", "task_complete", "done")

	snap := l.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, "think", snap[0].Reasoning)
	assert.Equal(t, "task_complete", snap[1].Action)
	assert.False(t, snap[0].Timestamp.IsZero())
}

func TestLog_Reset(t *testing.T) {
	l := New()
	l.Append("a", "b", "c")
	assert.Equal(t, 1, l.Len())

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Snapshot())
}
