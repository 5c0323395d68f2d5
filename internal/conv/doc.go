// Package conv converts between integer types with bounds checks.
//
// Use it where a value crosses from a platform-sized int into a fixed-width
// handle field or comes from an externally owned address space. Conversions
// that are safe by construction use plain casts.
package conv
