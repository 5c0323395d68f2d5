package shadercache

import (
	"log/slog"

	ihash "github.com/hupe1980/shadercache/internal/hash"
	"github.com/hupe1980/shadercache/internal/partition"
)

// HashKind selects the digest algorithm used by the stage tables.
type HashKind = ihash.Kind

const (
	// HashCRC32C is the Castagnoli CRC. It is the default.
	HashCRC32C = ihash.CRC32C
	// HashXXHash is xxHash64 folded to 32 bits.
	HashXXHash = ihash.XXHash
)

// ParseHashKind resolves a HashKind by name ("crc32c" or "xxhash").
func ParseHashKind(name string) (HashKind, error) {
	return ihash.ParseKind(name)
}

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	hashKind         HashKind
	arenaChunkSize   int
}

// Option configures a Cache.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &shadercache.BasicMetricsCollector{}
//	c := shadercache.New[*Program](shadercache.WithMetricsCollector(metrics))
//	// ... use c ...
//	fmt.Printf("hit rate: %.2f\n", metrics.HitRate())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := shadercache.NewJSONLogger(slog.LevelInfo)
//	c := shadercache.New[*Program](shadercache.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithHashKind selects the digest algorithm of the stage tables.
func WithHashKind(kind HashKind) Option {
	return func(o *options) {
		o.hashKind = kind
	}
}

// WithArenaChunkSize sets the chunk size in bytes of the arenas that hold
// stage bytecode. Non-positive values select the default.
func WithArenaChunkSize(size int) Option {
	return func(o *options) {
		o.arenaChunkSize = size
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		hashKind:         HashCRC32C,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

func (o options) partitionOptions() []partition.Option {
	return []partition.Option{
		partition.WithHashKind(o.hashKind),
		partition.WithArenaChunkSize(o.arenaChunkSize),
	}
}

type resolverOptions struct {
	maxConcurrentCompiles int64
	compilesPerSecond     float64
	burst                 int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

// WithMaxConcurrentCompiles bounds the number of compiles in flight.
// Defaults to 1.
func WithMaxConcurrentCompiles(n int64) ResolverOption {
	return func(o *resolverOptions) {
		o.maxConcurrentCompiles = n
	}
}

// WithCompileRateLimit bounds the sustained compile rate. burst compiles may
// start above the rate. A non-positive perSecond disables the limit.
func WithCompileRateLimit(perSecond float64, burst int) ResolverOption {
	return func(o *resolverOptions) {
		o.compilesPerSecond = perSecond
		o.burst = burst
	}
}
