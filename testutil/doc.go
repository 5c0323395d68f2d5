// Package testutil provides testing utilities for shadercache.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random bytecode, building flat
// memory images and forcing digest collisions.
//
// # Random Bytecode Generation
//
//	rng := testutil.NewRNG(seed)
//	code := rng.Bytecode(256)              // 256 random bytes
//	variants := rng.SharedPrefix(code, 4)  // 4 blobs that share code's prefix
//
// # Memory Images
//
//	mem := testutil.NewMemory()
//	addr := mem.Place(code)  // never returns 0
//
// # Forced Collisions
//
//	c := partition.New[int](partition.WithHasher(testutil.CollidingHasher))
package testutil
