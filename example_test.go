package shadercache_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/shadercache"
	"github.com/hupe1980/shadercache/datasource"
	"github.com/hupe1980/shadercache/testutil"
)

// Example demonstrates adding a bundle and finding it again from memory.
func Example() {
	vs := []byte("vertex shader bytecode")
	fs := []byte("fragment shader bytecode")

	c := shadercache.New[string]()

	var b shadercache.Bundle[string]
	b.Program = "textured quad"
	b.Code[shadercache.StageVertex] = vs
	b.Code[shadercache.StageFragment] = fs
	if _, err := c.Add(b); err != nil {
		log.Fatal(err)
	}

	// The same bytecode now lives in guest memory at unrelated addresses.
	mem := testutil.NewMemory()
	var addrs shadercache.Addresses
	addrs[shadercache.StageVertex] = mem.Place(vs)
	addrs[shadercache.StageFragment] = mem.Place(fs)

	hit, ok := c.TryFind(mem, addrs)
	fmt.Println(ok, hit.Program)
	// Output: true textured quad
}

// Example_resolver demonstrates compiling on a miss.
func Example_resolver() {
	mem := testutil.NewMemory()
	code := []byte("vertex shader bytecode")

	var addrs shadercache.Addresses
	addrs[shadercache.StageVertex] = mem.Place(code)

	fetcher := shadercache.CodeFetcherFunc(func(_ context.Context, m datasource.Memory, _ shadercache.Stage, addr uint64) ([]byte, error) {
		return datasource.Copy(m, addr, len(code))
	})
	compiles := 0
	compiler := shadercache.CompilerFunc[int](func(context.Context, [shadercache.NumStages][]byte) (int, error) {
		compiles++
		return compiles, nil
	})

	r, err := shadercache.NewResolver[int](nil, compiler, fetcher)
	if err != nil {
		log.Fatal(err)
	}

	for range 3 {
		b, err := r.Resolve(context.Background(), mem, addrs)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("program", b.Program)
	}
	// Output:
	// program 1
	// program 1
	// program 1
}
