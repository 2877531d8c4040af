package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEventTracksFixes(t *testing.T) {
	m := NewProgressModel("fixing", []string{"a.md", "b.md"}, nil).(*progressModel)

	m.applyEvent(Event{File: "a.md", Status: StatusLinting})
	assert.InDelta(t, 0.25, m.percent(), 1e-9)

	m.applyEvent(Event{File: "a.md", Status: StatusFixed, Fixes: 3})
	m.applyEvent(Event{File: "b.md", Status: StatusClean})
	assert.Equal(t, 3, m.fixes)
	assert.InDelta(t, 1.0, m.percent(), 1e-9)

	assert.Nil(t, m.applyEvent(Event{File: "unknown.md", Status: StatusError}))
}

func TestViewListsFiles(t *testing.T) {
	m := NewProgressModel("fixing", []string{"docs/readme.md"}, nil).(*progressModel)
	m.applyEvent(Event{File: "docs/readme.md", Status: StatusFixed, Fixes: 2})
	m.done = true

	view := m.View()
	require.True(t, strings.Contains(view, "done: fixing (2 fixes)"))
	assert.Contains(t, view, "fixed 2")
	assert.Contains(t, view, "docs/readme.md")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "日本...", truncate("日本語のテキスト", 7))
}
