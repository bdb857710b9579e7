package querymon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/querymon/querymon/cache"
	"github.com/querymon/querymon/decompose"
	"github.com/querymon/querymon/document"
	"github.com/querymon/querymon/index"
	"github.com/querymon/querymon/presearch"
	"github.com/querymon/querymon/query"
)

// MonitorQuery is a registered query: a stable id, the query itself
// and optional caller metadata carried alongside match reports.
type MonitorQuery struct {
	ID       string
	Query    query.Query
	Metadata map[string]string
}

// QueryCacheStats is a point-in-time snapshot of monitor state.
type QueryCacheStats struct {
	// Queries is the number of live registered queries.
	Queries int
	// CachedQueries is the number of compiled queries currently held
	// by the cache.
	CachedQueries int
	// LastPurged is when the most recent purge cycle completed. Zero
	// until the first purge.
	LastPurged time.Time
}

// Monitor holds the registered query set and matches document batches
// against it. All methods are safe for concurrent use; Close stops
// the background purge and fails subsequent calls fast.
type Monitor struct {
	opts options

	idx         *index.Index
	decomposer  *decompose.Decomposer
	presearcher *presearch.Presearcher
	logger      *Logger
	metrics     MetricsCollector
	listeners   []UpdateListener

	lastPurged atomic.Int64 // unix nanos, 0 = never

	closed   atomic.Bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	purgeLog rate.Sometimes
}

// New creates a Monitor and starts its background purge loop (unless
// disabled via WithPurgeInterval).
func New(opts ...Option) (*Monitor, error) {
	o := applyOptions(opts...)

	m := &Monitor{
		opts:        o,
		decomposer:  o.decomposer,
		presearcher: o.presearcher,
		logger:      o.logger,
		metrics:     o.metricsCollector,
		listeners:   o.listeners,
		stopCh:      make(chan struct{}),
		purgeLog:    rate.Sometimes{Interval: time.Minute},
	}
	m.idx = index.New(
		index.WithTermAcceptor(o.acceptor),
		index.WithCommitLog(o.commitLog),
	)

	if o.purgeInterval > 0 {
		m.wg.Add(1)
		go m.purgeLoop(o.purgeInterval)
	}
	return m, nil
}

// Close stops the background purge loop and marks the monitor closed.
// Subsequent operations return ErrClosed. Close is idempotent.
func (m *Monitor) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(m.stopCh)
	m.wg.Wait()
	return nil
}

// Register submits queries to the monitor. A query whose id is already
// registered atomically replaces the previous version. Queries are
// committed to the index in batches; after each committed batch the
// registered listeners receive AfterUpdate with that batch, in order.
//
// The whole call is validated up front: an empty id, a nil query, or
// the same id appearing twice in one call rejects the call with
// ErrInvalidArgument before anything is committed.
func (m *Monitor) Register(ctx context.Context, queries ...MonitorQuery) error {
	start := time.Now()
	err := m.register(ctx, queries)
	dur := time.Since(start)
	m.metrics.RecordRegister(len(queries), dur, err)
	m.logger.LogRegister(ctx, len(queries), m.numBatches(len(queries)), err)
	return err
}

func (m *Monitor) register(ctx context.Context, queries []MonitorQuery) error {
	if m.closed.Load() {
		return ErrClosed
	}

	seen := make(map[string]struct{}, len(queries))
	for _, mq := range queries {
		if mq.ID == "" {
			return fmt.Errorf("%w: empty query id", ErrInvalidArgument)
		}
		if mq.Query == nil {
			return fmt.Errorf("%w: nil query for id %q", ErrInvalidArgument, mq.ID)
		}
		if _, dup := seen[mq.ID]; dup {
			return fmt.Errorf("%w: duplicate query id %q", ErrInvalidArgument, mq.ID)
		}
		seen[mq.ID] = struct{}{}
	}

	for off := 0; off < len(queries); off += m.opts.commitBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(off+m.opts.commitBatchSize, len(queries))
		batch := queries[off:end]

		entries := make([]index.Entry, len(batch))
		for i, mq := range batch {
			entries[i] = index.Entry{
				ID:         mq.ID,
				Query:      mq.Query,
				Metadata:   mq.Metadata,
				Subqueries: m.decomposer.Decompose(mq.Query),
			}
		}
		if err := m.idx.Commit(entries); err != nil {
			return err
		}
		m.notifyListeners(func(l UpdateListener) { l.AfterUpdate(batch) })
	}
	return nil
}

func (m *Monitor) numBatches(n int) int {
	if n == 0 {
		return 0
	}
	return (n + m.opts.commitBatchSize - 1) / m.opts.commitBatchSize
}

// DeleteByID removes the queries with the given ids. Unknown ids are
// no-ops. Removal is logical until the next purge cycle: the query
// stops matching immediately, slot space is reclaimed later.
func (m *Monitor) DeleteByID(ctx context.Context, ids ...string) error {
	start := time.Now()
	err := m.deleteByID(ids)
	m.metrics.RecordDelete(len(ids), time.Since(start), err)
	m.logger.LogDelete(ctx, len(ids), err)
	return err
}

func (m *Monitor) deleteByID(ids []string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if err := m.idx.Delete(ids); err != nil {
		return err
	}
	m.notifyListeners(func(l UpdateListener) { l.AfterDelete(ids) })
	return nil
}

// Clear removes every registered query.
func (m *Monitor) Clear(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	err := m.idx.Clear()
	m.metrics.RecordDelete(0, time.Since(start), err)
	m.logger.LogDelete(ctx, 0, err)
	if err != nil {
		return err
	}
	m.notifyListeners(func(l UpdateListener) { l.AfterClear() })
	return nil
}

// Search matches a batch of documents against the registered queries,
// reporting matches through the collector. Documents are matched
// independently and concurrently; the collector must tolerate
// concurrent Collect calls.
//
// A query deleted concurrently with the search may or may not be
// reported for documents in the batch; it is never reported with a
// stale compiled form.
func (m *Monitor) Search(ctx context.Context, collector MatchCollector, docs ...*document.Document) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if collector == nil {
		return fmt.Errorf("%w: nil collector", ErrInvalidArgument)
	}
	for _, doc := range docs {
		if doc == nil {
			return fmt.Errorf("%w: nil document", ErrInvalidArgument)
		}
	}

	start := time.Now()
	var candidates atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fb := &docFilterBuilder{p: m.presearcher, doc: doc}
			col := &indexCollector{
				ctx:        ctx,
				collector:  collector,
				doc:        doc,
				candidates: &candidates,
			}
			return m.idx.Search(fb, col)
		})
	}
	err := g.Wait()

	dur := time.Since(start)
	m.metrics.RecordSearch(len(docs), int(candidates.Load()), dur, err)
	m.logger.LogSearch(ctx, len(docs), int(candidates.Load()), dur, err)
	return err
}

// docFilterBuilder binds the presearcher to one document so the index
// can build the candidate filter with its own term acceptor.
type docFilterBuilder struct {
	p   *presearch.Presearcher
	doc *document.Document
}

func (b *docFilterBuilder) BuildFilter(accept index.TermAcceptor) (index.Filter, error) {
	return b.p.BuildFilter(b.doc, accept)
}

// indexCollector adapts a MatchCollector to the index's per-candidate
// callback, running the full evaluation step.
type indexCollector struct {
	ctx        context.Context
	collector  MatchCollector
	doc        *document.Document
	candidates *atomic.Int64
}

func (c *indexCollector) MatchQuery(id string, entry *cache.Entry) (bool, error) {
	if err := c.ctx.Err(); err != nil {
		return false, err
	}
	c.candidates.Add(1)
	if !entry.Matches(c.doc) {
		return true, nil
	}
	return c.collector.Collect(id, entry, c.doc), nil
}

func (c *indexCollector) ScoreMode() index.ScoreMode {
	return c.collector.ScoreMode()
}

// ScanQueries invokes fn for every registered query, in ascending id
// order, with no presearch filtering. fn returns false to stop early.
func (m *Monitor) ScanQueries(ctx context.Context, fn func(MonitorQuery) bool) error {
	if m.closed.Load() {
		return ErrClosed
	}
	sc := &scanCollector{ctx: ctx, fn: fn}
	if err := m.idx.Scan(sc); err != nil {
		return err
	}
	return sc.err
}

type scanCollector struct {
	ctx context.Context
	fn  func(MonitorQuery) bool
	err error
}

func (c *scanCollector) MatchQuery(id string, entry *cache.Entry) (bool, error) {
	if err := c.ctx.Err(); err != nil {
		c.err = err
		return false, nil
	}
	mq := MonitorQuery{
		ID:       id,
		Query:    entry.Matcher().Query(),
		Metadata: entry.Metadata(),
	}
	return c.fn(mq), nil
}

func (c *scanCollector) ScoreMode() index.ScoreMode {
	return index.CompleteNoScores
}

// PurgeCache runs one purge cycle immediately: tombstoned slots are
// reclaimed and stale cache entries are dropped. Normally the
// background loop does this; call it manually after bulk deletes.
func (m *Monitor) PurgeCache(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return m.purge(ctx)
}

func (m *Monitor) purge(ctx context.Context) error {
	start := time.Now()
	evicted, err := m.idx.PurgeCache()
	dur := time.Since(start)
	m.metrics.RecordPurge(evicted, dur, err)
	m.logger.LogPurge(ctx, evicted, err)
	if err != nil {
		return err
	}
	m.lastPurged.Store(time.Now().UnixNano())
	m.notifyListeners(func(l UpdateListener) { l.OnPurge() })
	return nil
}

func (m *Monitor) purgeLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			if err := m.purge(context.Background()); err != nil {
				m.notifyListeners(func(l UpdateListener) { l.OnPurgeError(err) })
				m.purgeLog.Do(func() {
					m.logger.Error("scheduled purge failed", "error", err)
				})
			}
		}
	}
}

// GetQueryCacheStats reports current monitor state. The counters read
// current values but are not linearizable with concurrent mutation.
func (m *Monitor) GetQueryCacheStats() QueryCacheStats {
	stats := QueryCacheStats{
		Queries:       m.idx.NumDocs(),
		CachedQueries: m.idx.CacheSize(),
	}
	if ns := m.lastPurged.Load(); ns != 0 {
		stats.LastPurged = time.Unix(0, ns)
	}
	return stats
}
