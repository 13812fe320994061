// Package conv provides checked integer conversions for the boundary between
// Go offsets and foreign library sizes.
//
// Offsets handed to a C library are PCRE2_SIZE (size_t) values. A negative
// offset, or a size that does not fit back into an int, is a programming
// error, so these functions panic instead of silently wrapping.
package conv

import "math"

// IntToUintptr converts a non-negative int to uintptr.
// Panics if n < 0.
//
//go:inline
func IntToUintptr(n int) uintptr {
	if n < 0 {
		panic("integer overflow: negative int converted to uintptr")
	}
	return uintptr(n)
}

// UintptrToInt converts a uintptr to int.
// Panics if u > math.MaxInt.
//
//go:inline
func UintptrToInt(u uintptr) int {
	if uint64(u) > math.MaxInt {
		panic("integer overflow: uintptr value out of int range")
	}
	return int(u)
}
