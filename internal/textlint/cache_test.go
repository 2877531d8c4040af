package textlint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLinter struct {
	cliLinter
	calls int
}

func (c *countingLinter) LintText(_ context.Context, text, filePath string) (*Result, error) {
	c.calls++
	return &Result{FilePath: filePath, Messages: []Message{{RuleID: "r", Message: text, Line: 1, Column: 1}}}, nil
}

func TestCacheServesRepeatedText(t *testing.T) {
	cache, err := NewCache(CacheOptions{Size: 8})
	require.NoError(t, err)
	inner := &countingLinter{}
	l := cache.Wrap(inner, "digest-a")
	ctx := context.Background()

	first, err := l.LintText(ctx, "hello", "/w/a.md")
	require.NoError(t, err)
	second, err := l.LintText(ctx, "hello", "/w/a.md")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	_, err = l.LintText(ctx, "hello!", "/w/a.md")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	other := cache.Wrap(inner, "digest-b")
	_, err = other.LintText(ctx, "hello", "/w/a.md")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestCacheDiskLayerSurvivesNewCache(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := NewCache(CacheOptions{Dir: dir})
	require.NoError(t, err)
	inner := &countingLinter{}
	_, err = cache.Wrap(inner, "d").LintText(ctx, "text", "/w/a.md")
	require.NoError(t, err)

	reopened, err := NewCache(CacheOptions{Dir: dir})
	require.NoError(t, err)
	res, err := reopened.Wrap(inner, "d").LintText(ctx, "text", "/w/a.md")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "text", res.Messages[0].Message)

	require.NoError(t, reopened.Purge())
	fresh, err := NewCache(CacheOptions{Dir: dir})
	require.NoError(t, err)
	_, err = fresh.Wrap(inner, "d").LintText(ctx, "text", "/w/a.md")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestNilCacheWrapIsIdentity(t *testing.T) {
	var cache *Cache
	inner := &countingLinter{}
	assert.Same(t, Linter(inner), cache.Wrap(inner, "d"))
}
