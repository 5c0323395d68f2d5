// Package shadercache provides a content-addressable cache of compiled shader
// programs keyed by the bytecode of their pipeline stages.
//
// The cache answers one question cheaply: given the guest memory addresses of
// each stage's bytecode, has this combination been compiled before? The
// length of the bytecode at an address is not known up front, so each stage
// is resolved by probing stored lengths against the memory and reading only
// as many bytes as the candidate length requires.
//
// # Quick Start
//
//	c := shadercache.New[*Program]()
//
//	var b shadercache.Bundle[*Program]
//	b.Program = prog
//	b.Code[shadercache.StageVertex] = vsCode
//	b.Code[shadercache.StageFragment] = fsCode
//	key, err := c.Add(b)
//
//	var addrs shadercache.Addresses
//	addrs[shadercache.StageVertex] = vsAddr
//	addrs[shadercache.StageFragment] = fsAddr
//	if hit, ok := c.TryFind(mem, addrs); ok {
//	    use(hit.Program)
//	}
//
// # Stages and Keys
//
// A bundle carries up to NumStages stages. A nil Code entry or an
// AddressAbsent address marks an unused stage. Each present stage is mapped
// to a small id; identical bytecode always maps to the same id. The Key of a
// bundle is the tuple of its stage ids with IDAbsent for unused stages.
//
// # Compile on Miss
//
// Resolver wraps a Cache with the lookup, fetch, compile and insert cycle:
//
//	r, _ := shadercache.NewResolver(c, compiler, fetcher,
//	    shadercache.WithMaxConcurrentCompiles(4))
//	bundle, err := r.Resolve(ctx, mem, addrs)
//
// Concurrent Resolve calls for the same addresses share one compile.
//
// # Thread Safety
//
// Cache is not safe for concurrent use. Resolver serializes access to the
// cache it wraps and may be used from multiple goroutines.
//
// # Observability
//
// Use WithLogger for structured logging via slog and WithMetricsCollector to
// integrate with a monitoring system. BasicMetricsCollector keeps in-memory
// counters.
package shadercache
