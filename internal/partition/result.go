package partition

import "fmt"

// SearchResult is the outcome of probing a single size bucket.
type SearchResult uint8

const (
	// NotFound means no entry of this size or longer shares the prefix.
	NotFound SearchResult = iota
	// FoundPartial means some longer entry starts with the prefix.
	FoundPartial
	// FoundFull means an entry of exactly this size equals the prefix.
	FoundFull
)

// String implements fmt.Stringer.
func (r SearchResult) String() string {
	switch r {
	case NotFound:
		return "NotFound"
	case FoundPartial:
		return "FoundPartial"
	case FoundFull:
		return "FoundFull"
	default:
		return fmt.Sprintf("SearchResult(%d)", uint8(r))
	}
}

// Match is the tagged result of a bucket probe. Item is only meaningful
// when Result is FoundFull.
type Match[T any] struct {
	Result SearchResult
	Item   T
}
