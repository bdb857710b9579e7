package querymon

import (
	"log/slog"
	"time"

	"github.com/querymon/querymon/codec"
	"github.com/querymon/querymon/decompose"
	"github.com/querymon/querymon/index"
	"github.com/querymon/querymon/presearch"
)

const (
	// DefaultCommitBatchSize is the number of queries committed per
	// index batch during Register.
	DefaultCommitBatchSize = 5000

	// DefaultPurgeInterval is how often the background purge compacts
	// tombstoned slots and sweeps the compiled-query cache.
	DefaultPurgeInterval = 5 * time.Minute

	// DefaultExportPartSize is the number of queries written per blob
	// part during Export.
	DefaultExportPartSize = 1000
)

type options struct {
	commitBatchSize  int
	purgeInterval    time.Duration
	exportPartSize   int
	codec            codec.Codec
	logger           *Logger
	metricsCollector MetricsCollector
	decomposer       *decompose.Decomposer
	presearcher      *presearch.Presearcher
	acceptor         index.TermAcceptor
	commitLog        index.CommitLog
	listeners        []UpdateListener
}

// Option configures Monitor constructor behavior.
type Option func(*options)

// WithCommitBatchSize configures how many queries Register commits to
// the index per batch. Larger batches amortize lock acquisition;
// smaller batches bound the latency of listener notifications.
//
// Values < 1 are ignored.
func WithCommitBatchSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.commitBatchSize = n
		}
	}
}

// WithPurgeInterval configures how often the background purge runs.
// A non-positive interval disables scheduled purging entirely;
// PurgeCache can still be called manually.
func WithPurgeInterval(d time.Duration) Option {
	return func(o *options) {
		o.purgeInterval = d
	}
}

// WithExportPartSize configures how many queries Export writes per
// blob part. Values < 1 are ignored.
func WithExportPartSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.exportPartSize = n
		}
	}
}

// WithCodec configures the codec used to encode exported query parts.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures a custom logger. Pass nil to disable logging.
//
// Example:
//
//	logger := querymon.NewJSONLogger(slog.LevelDebug)
//	mon, err := querymon.New(querymon.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel configures a text logger at the given level.
// Shorthand for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example:
//
//	metrics := &querymon.BasicMetricsCollector{}
//	mon, err := querymon.New(querymon.WithMetricsCollector(metrics))
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		o.metricsCollector = collector
	}
}

// WithDecomposer configures the query decomposer used when registering
// queries. Pass nil to use the default decomposer.
func WithDecomposer(d *decompose.Decomposer) Option {
	return func(o *options) {
		o.decomposer = d
	}
}

// WithPresearcher configures the presearcher used to build candidate
// filters from documents. Pass nil to use the default presearcher.
func WithPresearcher(p *presearch.Presearcher) Option {
	return func(o *options) {
		o.presearcher = p
	}
}

// WithTermAcceptor configures a predicate applied to terms on both
// the indexing and document side. Rejected terms never enter the
// term index, so queries whose required terms are all rejected become
// universal candidates. Use this to drop stopwords or oversized terms.
func WithTermAcceptor(accept index.TermAcceptor) Option {
	return func(o *options) {
		o.acceptor = accept
	}
}

// WithCommitLog configures a write-ahead commit log appended to before
// each index mutation. Append failures surface as *index.StorageError
// and leave the index unchanged.
func WithCommitLog(log index.CommitLog) Option {
	return func(o *options) {
		o.commitLog = log
	}
}

// WithUpdateListener registers a listener notified after index
// mutations and purge cycles. May be passed multiple times; listeners
// are notified in registration order.
func WithUpdateListener(l UpdateListener) Option {
	return func(o *options) {
		if l != nil {
			o.listeners = append(o.listeners, l)
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{
		commitBatchSize:  DefaultCommitBatchSize,
		purgeInterval:    DefaultPurgeInterval,
		exportPartSize:   DefaultExportPartSize,
		codec:            codec.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.decomposer == nil {
		o.decomposer = decompose.New()
	}
	if o.presearcher == nil {
		o.presearcher = presearch.New()
	}
	if o.commitLog == nil {
		o.commitLog = index.NopCommitLog{}
	}
	return o
}
