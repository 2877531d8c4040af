package textlint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the cached payload layout changes.
const cacheSchemaVersion uint16 = 1

// CacheOptions configures a result cache.
type CacheOptions struct {
	Size int
	TTL  time.Duration
	// Dir enables the on-disk layer when non-empty.
	Dir string
}

// Cache memoizes lint results by engine digest, path and text. Results live
// in memory and, when a directory is configured, in msgpack files on disk.
// Safe for concurrent use.
type Cache struct {
	mem *expirable.LRU[string, Result]
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema uint16
	Result Result
}

// NewCache creates a cache. A non-positive size defaults to 256 entries.
func NewCache(opts CacheOptions) (*Cache, error) {
	size := opts.Size
	if size <= 0 {
		size = 256
	}
	c := &Cache{
		mem: expirable.NewLRU[string, Result](size, nil, opts.TTL),
	}
	if opts.Dir != "" {
		dir := filepath.Join(opts.Dir, "lint")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		c.dir = dir
	}
	return c, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

func cacheKey(digest, filePath, text string) string {
	h := sha256.New()
	h.Write([]byte(digest))
	h.Write([]byte{0})
	h.Write([]byte(filePath))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) get(key string) (Result, bool) {
	if r, ok := c.mem.Get(key); ok {
		return cloneResult(r), true
	}
	if c.dir == "" {
		return Result{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		return Result{}, false
	}
	defer f.Close()
	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil || payload.Schema != cacheSchemaVersion {
		return Result{}, false
	}
	c.mem.Add(key, payload.Result)
	return cloneResult(payload.Result), true
}

func (c *Cache) put(key string, r Result) error {
	c.mem.Add(key, cloneResult(r))
	if c.dir == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if err := msgpack.NewEncoder(f).Encode(&cachePayload{Schema: cacheSchemaVersion, Result: r}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), c.pathFor(key))
}

func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".mp")
}

// Purge drops every cached result.
func (c *Cache) Purge() error {
	c.mem.Purge()
	if c.dir == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var errs []error
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wrap returns a Linter that serves LintText from the cache. digest must
// change whenever the engine configuration does.
func (c *Cache) Wrap(l Linter, digest string) Linter {
	if c == nil {
		return l
	}
	return &cachedLinter{Linter: l, cache: c, digest: digest}
}

type cachedLinter struct {
	Linter
	cache  *Cache
	digest string
}

func (l *cachedLinter) LintText(ctx context.Context, text, filePath string) (*Result, error) {
	key := cacheKey(l.digest, filePath, text)
	if r, ok := l.cache.get(key); ok {
		return &r, nil
	}
	r, err := l.Linter.LintText(ctx, text, filePath)
	if err != nil {
		return nil, err
	}
	// A failed write only costs a future cache miss.
	_ = l.cache.put(key, *r)
	return r, nil
}

func (l *cachedLinter) ScanFilePath(ctx context.Context, filePath string) (ScanResult, error) {
	return Scan(ctx, l.Linter, filePath)
}

func cloneResult(r Result) Result {
	r.Messages = slices.Clone(r.Messages)
	return r
}
