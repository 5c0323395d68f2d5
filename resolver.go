package shadercache

import (
	"context"
	"encoding/binary"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/shadercache/datasource"
	"github.com/hupe1980/shadercache/internal/resource"
)

// Compiler turns stage bytecode into a program. A nil entry in code marks an
// unused stage.
type Compiler[P any] interface {
	Compile(ctx context.Context, code [NumStages][]byte) (P, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc[P any] func(ctx context.Context, code [NumStages][]byte) (P, error)

// Compile implements Compiler.
func (f CompilerFunc[P]) Compile(ctx context.Context, code [NumStages][]byte) (P, error) {
	return f(ctx, code)
}

// CodeFetcher reads the complete bytecode of a stage from memory. The
// returned slice is owned by the caller.
type CodeFetcher interface {
	FetchCode(ctx context.Context, mem datasource.Memory, stage Stage, addr uint64) ([]byte, error)
}

// CodeFetcherFunc adapts a function to the CodeFetcher interface.
type CodeFetcherFunc func(ctx context.Context, mem datasource.Memory, stage Stage, addr uint64) ([]byte, error)

// FetchCode implements CodeFetcher.
func (f CodeFetcherFunc) FetchCode(ctx context.Context, mem datasource.Memory, stage Stage, addr uint64) ([]byte, error) {
	return f(ctx, mem, stage, addr)
}

// Resolver returns the program for a set of stage addresses, compiling and
// caching it on a miss.
//
// Resolver is safe for concurrent use. Concurrent misses on the same memory
// and addresses share a single compile.
type Resolver[P any] struct {
	mu    sync.Mutex
	cache *Cache[P]

	compiler Compiler[P]
	fetcher  CodeFetcher
	limits   *resource.Controller
	group    singleflight.Group
}

// NewResolver creates a Resolver around cache. The Resolver takes over
// synchronization of cache; the caller must not use cache directly
// afterwards.
func NewResolver[P any](cache *Cache[P], compiler Compiler[P], fetcher CodeFetcher, optFns ...ResolverOption) (*Resolver[P], error) {
	if compiler == nil {
		return nil, ErrNilCompiler
	}
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if cache == nil {
		cache = New[P]()
	}

	var opts resolverOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Resolver[P]{
		cache:    cache,
		compiler: compiler,
		fetcher:  fetcher,
		limits: resource.NewController(resource.Config{
			MaxConcurrentCompiles: opts.maxConcurrentCompiles,
			CompilesPerSecond:     opts.compilesPerSecond,
			Burst:                 opts.burst,
		}),
	}, nil
}

// Resolve returns the bundle for the stages at addrs. On a miss the stage
// bytecode is fetched from mem, compiled and added to the cache.
//
// Callers missing on the same memory and addresses share one compile. The
// shared compile is not bound to any single caller's ctx: a caller whose ctx
// is done returns ctx.Err() while the compile finishes for the others.
func (r *Resolver[P]) Resolve(ctx context.Context, mem datasource.Memory, addrs Addresses) (Bundle[P], error) {
	key := flightKey(mem, addrs)
	for {
		if b, ok := r.tryFind(mem, addrs); ok {
			return b, nil
		}
		if err := ctx.Err(); err != nil {
			return Bundle[P]{}, err
		}

		var led bool
		ch := r.group.DoChan(key, func() (any, error) {
			led = true
			// Another caller may have finished the same compile in between.
			if b, ok := r.tryFind(mem, addrs); ok {
				return b, nil
			}
			return r.compile(context.WithoutCancel(ctx), mem, addrs)
		})

		select {
		case <-ctx.Done():
			return Bundle[P]{}, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				return Bundle[P]{}, res.Err
			}
			if led {
				b, _ := res.Val.(Bundle[P])
				return b, nil
			}
			// A joined compile read the leader's memory. Its result only
			// counts once it is found for the code in mem.
		}
	}
}

// Add inserts a precompiled bundle.
func (r *Resolver[P]) Add(b Bundle[P]) (Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Add(b)
}

// Stats returns a snapshot of the underlying cache statistics.
func (r *Resolver[P]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Stats()
}

// Compiles returns the number of compiles started so far.
func (r *Resolver[P]) Compiles() int64 {
	return r.limits.Total()
}

// CompilesInFlight returns the number of compiles currently running.
func (r *Resolver[P]) CompilesInFlight() int64 {
	return r.limits.InFlight()
}

func (r *Resolver[P]) tryFind(mem datasource.Memory, addrs Addresses) (Bundle[P], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.TryFind(mem, addrs)
}

func (r *Resolver[P]) compile(ctx context.Context, mem datasource.Memory, addrs Addresses) (Bundle[P], error) {
	var b Bundle[P]
	present := 0
	for i, addr := range addrs {
		if addr == AddressAbsent {
			continue
		}
		code, err := r.fetcher.FetchCode(ctx, mem, Stage(i), addr)
		if err != nil {
			r.cache.opts.logger.LogFetch(ctx, Stage(i), addr, err)
			return Bundle[P]{}, &FetchError{Stage: Stage(i), Address: addr, cause: err}
		}
		if len(code) == 0 {
			return Bundle[P]{}, &EmptyStageError{Stage: Stage(i)}
		}
		b.Code[i] = code
		present++
	}
	if present == 0 {
		return Bundle[P]{}, ErrNoStages
	}

	if err := r.limits.AcquireCompile(ctx); err != nil {
		return Bundle[P]{}, err
	}
	start := time.Now()
	prog, err := r.compiler.Compile(ctx, b.Code)
	elapsed := time.Since(start)
	r.limits.ReleaseCompile()

	r.cache.opts.metricsCollector.RecordCompile(elapsed, err)
	r.cache.opts.logger.LogCompile(ctx, addrs, elapsed, err)
	if err != nil {
		return Bundle[P]{}, &CompileError{Addresses: addrs, cause: err}
	}
	b.Program = prog

	if _, err := r.Add(b); err != nil {
		return Bundle[P]{}, err
	}
	return b, nil
}

// flightKey identifies a compile by the memory it reads and the stage
// addresses within it.
func flightKey(mem datasource.Memory, addrs Addresses) string {
	var buf [(NumStages + 1) * 8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(memoryID(mem)))
	for i, addr := range addrs {
		binary.LittleEndian.PutUint64(buf[(i+1)*8:], addr)
	}
	return string(buf[:])
}

// memoryID returns the address behind a reference-typed memory, or 0 for
// memories passed by value.
func memoryID(mem datasource.Memory) uintptr {
	v := reflect.ValueOf(mem)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v.Pointer()
	default:
		return 0
	}
}
