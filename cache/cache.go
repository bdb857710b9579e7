package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/querymon/querymon/document"
	"github.com/querymon/querymon/query"
)

// ErrMissingQuery is returned when no live index entry backs the
// requested id. This happens when a delete races a search; callers
// treat it as "no match", never as a fault.
var ErrMissingQuery = errors.New("no live query for id")

// Source resolves an id to its registered query and metadata. It
// returns false when the id has no live index entry.
type Source func(id string) (query.Query, map[string]string, bool)

// Entry is a compiled query held by the cache. Entries are shared:
// readers pin them for the duration of one match and keep using their
// reference even if the entry is evicted concurrently.
type Entry struct {
	id         string
	matcher    *query.Matcher
	metadata   map[string]string
	lastAccess atomic.Int64
	refs       atomic.Int32
}

// ID returns the query id.
func (e *Entry) ID() string {
	return e.id
}

// Matcher returns the compiled query.
func (e *Entry) Matcher() *query.Matcher {
	return e.matcher
}

// Metadata returns the metadata registered with the query. Callers
// must not mutate the returned map.
func (e *Entry) Metadata() map[string]string {
	return e.metadata
}

// Matches evaluates the compiled query against the document and
// refreshes the entry's access hint.
func (e *Entry) Matches(doc *document.Document) bool {
	e.lastAccess.Store(time.Now().UnixNano())
	return e.matcher.Matches(doc)
}

// LastAccess returns the last access hint, zero if never evaluated.
func (e *Entry) LastAccess() time.Time {
	ns := e.lastAccess.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Pin marks the entry as in use by one match evaluation.
func (e *Entry) Pin() {
	e.refs.Add(1)
}

// Unpin releases a Pin.
func (e *Entry) Unpin() {
	e.refs.Add(-1)
}

// Pinned reports whether any match evaluation currently holds the entry.
func (e *Entry) Pinned() bool {
	return e.refs.Load() > 0
}

// Cache maps query ids to compiled queries. Creation is idempotent and
// concurrent compilation of the same id is deduplicated; eviction is
// driven exclusively by the purge cycle (and Clear).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
	}
}

// Get returns the cached entry for id, if present.
func (c *Cache) Get(id string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// Put compiles and inserts an entry for id. If an entry for id already
// exists it is replaced: a Put follows a commit, which carries the
// current query for the id.
func (c *Cache) Put(id string, q query.Query, metadata map[string]string) (*Entry, error) {
	m, err := query.Compile(q)
	if err != nil {
		return nil, err
	}
	e := &Entry{id: id, matcher: m, metadata: metadata}

	c.mu.Lock()
	c.entries[id] = e
	c.mu.Unlock()
	return e, nil
}

// GetOrCompile returns the cached entry for id, compiling from src on
// first access. Concurrent calls for the same id share one
// compilation. Returns ErrMissingQuery if src has no live query for
// the id.
func (c *Cache) GetOrCompile(id string, src Source) (*Entry, error) {
	if e, ok := c.Get(id); ok {
		return e, nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		// Re-check: another caller may have compiled while we queued.
		if e, ok := c.Get(id); ok {
			return e, nil
		}
		q, metadata, ok := src(id)
		if !ok {
			return nil, ErrMissingQuery
		}
		m, err := query.Compile(q)
		if err != nil {
			return nil, err
		}
		e := &Entry{id: id, matcher: m, metadata: metadata}

		c.mu.Lock()
		// A concurrent Put (commit) wins; keep its entry.
		if cur, ok := c.entries[id]; ok {
			c.mu.Unlock()
			return cur, nil
		}
		c.entries[id] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

// Evict removes the entries for the given ids. Holders of a pinned
// entry keep shared ownership of their reference; only the table slot
// is reclaimed.
func (c *Cache) Evict(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
	}
}

// EvictExcept removes every entry whose id is not in live and returns
// the number of evictions. Used by the purge cycle.
func (c *Cache) EvictExcept(live map[string]struct{}) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id := range c.entries {
		if _, ok := live[id]; !ok {
			delete(c.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
