package index

import (
	"errors"
	"sort"
	"sync"

	"github.com/querymon/querymon/cache"
	"github.com/querymon/querymon/decompose"
	"github.com/querymon/querymon/internal/bitmap"
	"github.com/querymon/querymon/query"
)

// Index is the inverted index over decomposed query terms. Each
// committed subquery occupies one slot; postings map an indexed term
// to the slots requiring it. Deletes tombstone slots so in-flight
// searches can finish; PurgeCache physically reclaims them.
//
// Concurrency: mutations (Commit, Delete, Clear, PurgeCache) are
// serialized by the write lock; readers (Search, Scan, counters) take
// the read lock, so a reader never observes a partially applied
// commit. A commit becomes visible atomically per batch.
type Index struct {
	mu sync.RWMutex

	entries    map[uint32]*slotEntry
	slots      map[string][]uint32 // live id -> slots
	postings   map[query.Term]*bitmap.SlotSet
	anySlots   *bitmap.SlotSet
	tombstones *bitmap.SlotSet
	required   map[uint32]int
	nextSlot   uint32

	accept TermAcceptor
	log    CommitLog
	cache  *cache.Cache
}

type slotEntry struct {
	id       string
	q        query.Query
	metadata map[string]string
	sub      decompose.Subquery
}

// Option configures an Index.
type Option func(*Index)

// WithTermAcceptor restricts which terms are indexed.
func WithTermAcceptor(accept TermAcceptor) Option {
	return func(x *Index) {
		x.accept = accept
	}
}

// WithCommitLog sets the write-ahead hook for mutations.
func WithCommitLog(log CommitLog) Option {
	return func(x *Index) {
		if log == nil {
			log = NopCommitLog{}
		}
		x.log = log
	}
}

// New creates an empty index with its own query cache.
func New(opts ...Option) *Index {
	x := &Index{
		entries:    make(map[uint32]*slotEntry),
		slots:      make(map[string][]uint32),
		postings:   make(map[query.Term]*bitmap.SlotSet),
		anySlots:   bitmap.New(),
		tombstones: bitmap.New(),
		required:   make(map[uint32]int),
		log:        NopCommitLog{},
		cache:      cache.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(x)
		}
	}
	return x
}

// Commit makes a batch of entries visible, atomically with respect to
// concurrent searches. An entry whose id already has a live entry
// replaces it (delete-then-add within the commit). The cache is seeded
// eagerly for every committed id.
func (x *Index) Commit(entries []Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	// Validate up front so a bad entry cannot leave a half-applied
	// batch behind.
	ids := make([]string, len(entries))
	for i, e := range entries {
		if _, err := query.Compile(e.Query); err != nil {
			return err
		}
		ids[i] = e.ID
	}
	if err := x.log.Append(OpCommit, ids); err != nil {
		return &StorageError{Op: OpCommit, Err: err}
	}

	for _, e := range entries {
		x.tombstoneLocked(e.ID)

		slots := make([]uint32, 0, len(e.Subqueries))
		for _, sub := range e.Subqueries {
			slot := x.nextSlot
			x.nextSlot++

			x.entries[slot] = &slotEntry{
				id:       e.ID,
				q:        e.Query,
				metadata: e.Metadata,
				sub:      sub,
			}

			accepted := 0
			if !sub.Any {
				for _, t := range sub.Terms {
					if x.accept != nil && !x.accept(t.Field, t.Text) {
						continue
					}
					ps, ok := x.postings[t]
					if !ok {
						ps = bitmap.New()
						x.postings[t] = ps
					}
					ps.Add(slot)
					accepted++
				}
			}
			if accepted == 0 {
				// No indexable terms survived: universal candidate.
				x.anySlots.Add(slot)
			}
			x.required[slot] = accepted
			slots = append(slots, slot)
		}
		if len(slots) > 0 {
			x.slots[e.ID] = slots
		} else {
			// A query that decomposes to nothing can never match and
			// is not considered live.
			delete(x.slots, e.ID)
		}

		if _, err := x.cache.Put(e.ID, e.Query, e.Metadata); err != nil {
			return err
		}
	}
	return nil
}

// Delete tombstones the entries for the given ids. Unknown ids are
// no-ops. Space is reclaimed by the next PurgeCache.
func (x *Index) Delete(ids []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.log.Append(OpDelete, ids); err != nil {
		return &StorageError{Op: OpDelete, Err: err}
	}
	for _, id := range ids {
		x.tombstoneLocked(id)
	}
	return nil
}

// Clear tombstones every live entry in one logical operation.
func (x *Index) Clear() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.log.Append(OpClear, nil); err != nil {
		return &StorageError{Op: OpClear, Err: err}
	}
	for id := range x.slots {
		x.tombstoneLocked(id)
	}
	return nil
}

func (x *Index) tombstoneLocked(id string) {
	slots, ok := x.slots[id]
	if !ok {
		return
	}
	for _, slot := range slots {
		x.tombstones.Add(slot)
	}
	delete(x.slots, id)
}

// PurgeCache reclaims tombstoned slots and drops cache entries whose
// id has no live index entry. The live-id set is snapshotted under the
// write lock, strictly before the cache sweep, so an entry committed
// after this purge releases the lock can never be evicted by it.
// Returns the number of evicted cache entries.
func (x *Index) PurgeCache() (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.log.Append(OpPurge, nil); err != nil {
		return 0, &StorageError{Op: OpPurge, Err: err}
	}

	if !x.tombstones.IsEmpty() {
		for slot := range x.tombstones.Iterator() {
			delete(x.entries, slot)
			delete(x.required, slot)
		}
		for t, ps := range x.postings {
			ps.AndNot(x.tombstones)
			if ps.IsEmpty() {
				delete(x.postings, t)
			}
		}
		x.anySlots.AndNot(x.tombstones)
		x.tombstones.Clear()
	}

	live := make(map[string]struct{}, len(x.slots))
	for id := range x.slots {
		live[id] = struct{}{}
	}
	return x.cache.EvictExcept(live), nil
}

// Scan invokes the collector for every live entry unconditionally, in
// ascending id order, with no presearch filtering.
func (x *Index) Scan(collector Collector) error {
	x.mu.RLock()
	ids := make([]string, 0, len(x.slots))
	for id := range x.slots {
		ids = append(ids, id)
	}
	x.mu.RUnlock()
	sort.Strings(ids)

	return x.collect(ids, collector)
}

// Search executes the filter built by fb against the index and invokes
// the collector for every candidate. Candidates sharing an id are
// reported once. The filter's Candidates call runs under the index
// read lock; evaluation happens after the lock is released, so a
// candidate may have been deleted in between — such ids are silently
// skipped (the delete/search race resolves to "no match").
func (x *Index) Search(fb FilterBuilder, collector Collector) error {
	f, err := fb.BuildFilter(x.accept)
	if err != nil {
		return err
	}

	x.mu.RLock()
	cands := f.Candidates(readerView{x})
	ids := make([]string, 0, cands.Cardinality())
	seen := make(map[string]struct{})
	for slot := range cands.Iterator() {
		if x.tombstones.Contains(slot) {
			continue
		}
		e, ok := x.entries[slot]
		if !ok {
			continue
		}
		if _, dup := seen[e.id]; dup {
			continue
		}
		seen[e.id] = struct{}{}
		ids = append(ids, e.id)
	}
	x.mu.RUnlock()

	return x.collect(ids, collector)
}

func (x *Index) collect(ids []string, collector Collector) error {
	for _, id := range ids {
		entry, err := x.cache.GetOrCompile(id, x.liveQuery)
		if errors.Is(err, cache.ErrMissingQuery) {
			continue
		}
		if err != nil {
			return err
		}
		entry.Pin()
		cont, err := collector.MatchQuery(id, entry)
		entry.Unpin()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// liveQuery is the cache compilation source: it resolves an id against
// the current live entries.
func (x *Index) liveQuery(id string) (query.Query, map[string]string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	slots, ok := x.slots[id]
	if !ok || len(slots) == 0 {
		return nil, nil, false
	}
	e, ok := x.entries[slots[0]]
	if !ok {
		return nil, nil, false
	}
	return e.q, e.metadata, true
}

// NumDocs returns the number of live queries. It reads current state
// but is not linearizable with concurrent mutation.
func (x *Index) NumDocs() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.slots)
}

// CacheSize returns the number of cached compiled queries.
func (x *Index) CacheSize() int {
	return x.cache.Len()
}

// readerView exposes postings to Filter implementations. Valid only
// while the index read lock is held.
type readerView struct {
	x *Index
}

func (r readerView) Postings(t query.Term) *bitmap.SlotSet {
	return r.x.postings[t]
}

func (r readerView) AnySlots() *bitmap.SlotSet {
	return r.x.anySlots
}

func (r readerView) Required(slot uint32) int {
	return r.x.required[slot]
}
