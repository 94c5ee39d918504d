package explorer

import (
	"context"
	"sync"

	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/ardanlabs/simwallet/foundation/events"
)

// Fetcher is the behavior required to read the chain from the backend.
type Fetcher interface {
	Chain(ctx context.Context) ([]backend.Block, error)
}

// EventHandler defines a function that is called when events
// occur in the processing of the explorer.
type EventHandler func(v string, args ...any)

// CacheConfig represents the configuration required to construct a cache.
type CacheConfig struct {
	Fetcher   Fetcher
	Notifier  events.Notifier
	EvHandler EventHandler
}

// Cache holds the latest known snapshot of the chain. A snapshot is only ever
// replaced as a whole. Every refresh takes a ticket, and a response is only
// applied when its ticket is newer than the one that produced the current
// snapshot, so a slow response can't overwrite a newer one.
type Cache struct {
	fetcher   Fetcher
	notifier  events.Notifier
	evHandler EventHandler

	mu      sync.RWMutex
	blocks  []BlockRecord
	issued  uint64
	applied uint64
}

// NewCache constructs an empty cache.
func NewCache(cfg CacheConfig) *Cache {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	return &Cache{
		fetcher:   cfg.Fetcher,
		notifier:  cfg.Notifier,
		evHandler: ev,
	}
}

// Refresh reads the chain from the backend and replaces the snapshot. On
// failure the snapshot is left untouched and a notification is raised,
// unless a newer refresh has already been applied. It reports whether the
// snapshot was replaced.
func (c *Cache) Refresh(ctx context.Context) bool {
	c.mu.Lock()
	c.issued++
	ticket := c.issued
	c.mu.Unlock()

	c.evHandler("cache: Refresh: started: ticket[%d]", ticket)

	blks, err := c.fetcher.Chain(ctx)
	if err != nil {
		c.mu.RLock()
		applied := c.applied
		c.mu.RUnlock()

		if ticket < applied {
			c.evHandler("cache: Refresh: ticket[%d]: ERROR: %s: discarded: newer ticket[%d] applied", ticket, err, applied)
			return false
		}

		c.evHandler("cache: Refresh: ticket[%d]: ERROR: %s", ticket, err)
		c.notifier.Notify(events.Failure("Failed to load blockchain."))
		return false
	}

	records := toBlockRecords(blks)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket < c.applied {
		c.evHandler("cache: Refresh: ticket[%d]: discarded: newer ticket[%d] applied", ticket, c.applied)
		return false
	}

	c.blocks = records
	c.applied = ticket

	c.evHandler("cache: Refresh: ticket[%d]: completed: blocks[%d]", ticket, len(records))

	return true
}

// Block returns the block at the specified position in the snapshot.
func (c *Cache) Block(index int) (BlockRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.blocks) {
		return BlockRecord{}, false
	}

	return c.blocks[index], true
}

// Len returns the number of blocks in the snapshot.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Loaded reports whether a refresh has succeeded at least once.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.applied > 0
}

// Blocks returns a copy of the snapshot.
func (c *Cache) Blocks() []BlockRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cpy := make([]BlockRecord, len(c.blocks))
	copy(cpy, c.blocks)
	return cpy
}
