package mmap

import "errors"

// AccessPattern is a paging hint for a mapped range.
type AccessPattern int

const (
	// AccessDefault clears any previous hint.
	AccessDefault AccessPattern = iota
	// AccessSequential favors read-ahead.
	AccessSequential
	// AccessRandom disables read-ahead. Shader lookups touch short,
	// scattered windows of an image, so this is the usual choice.
	AccessRandom
	// AccessWillNeed asks for the range to be paged in early.
	AccessWillNeed
	// AccessDontNeed allows the range to be dropped from the page cache.
	AccessDontNeed
)

var accessNames = [...]string{
	AccessDefault:    "default",
	AccessSequential: "sequential",
	AccessRandom:     "random",
	AccessWillNeed:   "willneed",
	AccessDontNeed:   "dontneed",
}

// String implements fmt.Stringer.
func (p AccessPattern) String() string {
	if p >= 0 && int(p) < len(accessNames) {
		return accessNames[p]
	}
	return "unknown"
}

var (
	// ErrClosed is returned by operations on a closed Mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files that cannot be mapped as a whole.
	ErrInvalidSize = errors.New("mmap: invalid file size")
)
