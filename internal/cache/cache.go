// Package cache keeps the signed-in staff member's session values between
// runs: the device storage of the sales screen.
package cache

import (
	"context"
	"sync"
	"time"
)

// Session keys.
const (
	KeyUserToken = "userToken"
	KeyBranch    = "branch"
	KeyRole      = "role"
	KeyUserID    = "userId"
)

// SessionKeys lists every key written at login and cleared at logout.
var SessionKeys = []string{KeyUserToken, KeyBranch, KeyRole, KeyUserID}

// SessionCache stores string values. A missing key is not an error: Get
// reports it through the bool.
type SessionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemorySessionCache lives as long as the process.
type MemorySessionCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemorySessionCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value; a ttl of zero keeps it until deleted.
func (c *MemorySessionCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemorySessionCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}
