package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache stores downloaded pattern bundles on disk, keyed by BundleSpec,
// with a TTL and checksum validation. Adapted from ruleset.Cache — no
// zip extraction here, since a Bundle is just a JSON array of Patterns.
type Cache struct {
	dir string
}

// NewCache creates (if needed) and opens a cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Get returns the cached patterns for spec if present, unexpired, and
// checksum-matching.
func (c *Cache) Get(spec BundleSpec, expectedChecksum string) ([]*Pattern, error) {
	entry, err := c.loadEntry(spec)
	if err != nil {
		return nil, err
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, fmt.Errorf("cache expired for %s/%s", spec.Category, spec.Bundle)
	}
	if entry.Checksum != expectedChecksum {
		return nil, fmt.Errorf("checksum mismatch for %s/%s", spec.Category, spec.Bundle)
	}
	return entry.Patterns, nil
}

// Set stores patterns in the cache under spec, expiring after ttl.
func (c *Cache) Set(spec BundleSpec, patterns []*Pattern, checksum string, ttl time.Duration) error {
	entry := &CacheEntry{
		Spec:      spec,
		Patterns:  patterns,
		Checksum:  checksum,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	return c.saveEntry(entry)
}

// Invalidate removes a cached bundle entry.
func (c *Cache) Invalidate(spec BundleSpec) error {
	path := c.entryPath(spec)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Cache) entryPath(spec BundleSpec) string {
	return filepath.Join(c.dir, spec.Category, spec.Bundle+".json")
}

func (c *Cache) loadEntry(spec BundleSpec) (*CacheEntry, error) {
	data, err := os.ReadFile(c.entryPath(spec)) //nolint:gosec // path built from validated spec
	if err != nil {
		return nil, err
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Cache) saveEntry(entry *CacheEntry) error {
	path := c.entryPath(entry.Spec)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // cache file, not secret material
}
