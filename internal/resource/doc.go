// Package resource implements the Controller that budgets shader compilation.
//
// Cache misses trigger compiles, and compiles are expensive. The Controller
// bounds them in two ways:
//
//   - Concurrency: a weighted semaphore limits in-flight compiles
//   - Throughput: a token bucket limits compiles per second
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentCompiles: 4,
//	    CompilesPerSecond:     200,
//	})
//
//	if err := rc.AcquireCompile(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseCompile()
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
