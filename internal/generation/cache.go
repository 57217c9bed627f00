package generation

import (
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a successfully generated artifact stays valid.
const DefaultCacheTTL = 24 * time.Hour

// ArtifactCache is a process-local key/value store with a fixed time-to-live,
// keyed by a normalized request fingerprint (content kind + lower-cased,
// trimmed subject). Entries expire silently: expiry is checked at read time,
// and a later successful generation for the same key overwrites the entry.
//
// The cache is an explicitly constructed object owned by the generation
// service rather than package-level state, so it can be replaced in tests
// and eventually swapped for a distributed implementation.
type ArtifactCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration

	// now is the clock; replaceable in tests.
	now func() time.Time
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// NewArtifactCache creates an empty cache with the given TTL.
// A non-positive TTL falls back to DefaultCacheTTL.
func NewArtifactCache(ttl time.Duration) *ArtifactCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &ArtifactCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// CacheKey computes the normalized fingerprint for a request. Two subjects
// differing only in case or surrounding whitespace map to the same key.
func CacheKey(kind ContentKind, subject string) string {
	return string(kind) + ":" + strings.ToLower(strings.TrimSpace(subject))
}

// Get returns the unexpired value stored under key, if any.
// Expired entries are pruned on read.
func (c *ArtifactCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return entry.value, true
}

// Set stores value under key with the cache's TTL, overwriting any
// previous entry.
func (c *ArtifactCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len returns the number of entries currently held, expired or not.
// Used by tests and diagnostics.
func (c *ArtifactCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
