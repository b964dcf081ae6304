package dispatch

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satu-n/iroha/core/ledgererr"
)

// cursorTTL bounds how long an orphaned cursor survives without being
// explicitly dropped by its owning execution frame.
const cursorTTL = 5 * time.Minute

// cursorEntry is one open iterable query's remaining, unpaged items.
type cursorEntry struct {
	items      []any
	lastTouch  time.Time
	// owner is the smart-contract execution id that opened this cursor,
	// used by the executor to reject a forged id that does not belong to
	// the currently-executing contract's accumulated query-id set.
	owner string
}

// CursorStore is the live-query store: a concurrent map from opaque cursor
// id to its remaining page of results. Inserts happen from any executing
// contract; deletes happen either explicitly (the owning frame exits) or
// by time-based eviction of orphans.
type CursorStore struct {
	mu      sync.Mutex
	cursors map[string]*cursorEntry
}

func NewCursorStore() *CursorStore {
	return &CursorStore{cursors: map[string]*cursorEntry{}}
}

// Open registers a materialized result set under a fresh cursor id owned
// by owner, and returns the first page (up to pageSize items) plus the
// cursor id to continue with, or an empty id if the whole set fit in one
// page.
func (c *CursorStore) Open(owner string, items []any, pageSize uint32) (page []any, cursorId string) {
	if pageSize == 0 || uint32(len(items)) <= pageSize {
		return items, ""
	}
	id := uuid.NewString()
	c.mu.Lock()
	c.cursors[id] = &cursorEntry{items: items[pageSize:], lastTouch: time.Now(), owner: owner}
	c.mu.Unlock()
	return items[:pageSize], id
}

// Continue pages the next batch for an existing cursor id, validating that
// it belongs to owner (preventing cursor hijacking across contract
// execution frames ).
func (c *CursorStore) Continue(owner, cursorId string, pageSize uint32) (page []any, nextCursorId string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cursors[cursorId]
	if !ok {
		return nil, "", ledgererr.New(ledgererr.KindNotFound, "dispatch: cursor %s not found", cursorId)
	}
	if entry.owner != owner {
		return nil, "", ledgererr.New(ledgererr.KindNotPermitted, "dispatch: cursor %s does not belong to this execution", cursorId)
	}
	entry.lastTouch = time.Now()
	if pageSize == 0 || uint32(len(entry.items)) <= pageSize {
		delete(c.cursors, cursorId)
		return entry.items, "", nil
	}
	page = entry.items[:pageSize]
	entry.items = entry.items[pageSize:]
	return page, cursorId, nil
}

// DropAll evicts every cursor owned by owner — called when a smart-
// contract execution frame exits, per the WASM host's query-cursor
// hygiene contract .
func (c *CursorStore) DropAll(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.cursors {
		if entry.owner == owner {
			delete(c.cursors, id)
		}
	}
}

// EvictExpired removes cursors untouched for longer than cursorTTL. A
// caller runs this periodically; it is not invoked automatically so tests
// can control time deterministically.
func (c *CursorStore) EvictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.cursors {
		if now.Sub(entry.lastTouch) > cursorTTL {
			delete(c.cursors, id)
		}
	}
}
