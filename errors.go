package shadercache

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStages is returned when a bundle carries no stage bytecode.
	ErrNoStages = errors.New("bundle has no stages")

	// ErrNilCompiler is returned when a resolver is built without a compiler.
	ErrNilCompiler = errors.New("compiler must not be nil")

	// ErrNilFetcher is returned when a resolver is built without a code fetcher.
	ErrNilFetcher = errors.New("code fetcher must not be nil")
)

// EmptyStageError indicates a stage that is present but has zero-length
// bytecode. Use a nil slice to mark an unused stage.
type EmptyStageError struct {
	Stage Stage
}

func (e *EmptyStageError) Error() string {
	return fmt.Sprintf("stage %s has empty bytecode", e.Stage)
}

// CompileError indicates that compiling the bytecode bound at Addresses
// failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type CompileError struct {
	Addresses Addresses
	cause     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %v: %v", e.Addresses, e.cause)
}

func (e *CompileError) Unwrap() error { return e.cause }

// FetchError indicates that reading the bytecode of Stage at Address failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type FetchError struct {
	Stage   Stage
	Address uint64
	cause   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s at %#x: %v", e.Stage, e.Address, e.cause)
}

func (e *FetchError) Unwrap() error { return e.cause }
