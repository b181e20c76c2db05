package internal

import "slices"

// Ensures capacity for min total elements, but will clip capacity to max.
// Returned slice has len=0.
func GrowMinMax[T any](s []T, min, max int) []T {
	s = s[:0]
	s = slices.Grow(s, min) // NOTE this n arg is additional elements based on len.
	if cap(s) < max {
		return s
	}
	s = s[:0:max]
	return s
}

// Full length slice of at least min elements. Contents are not preserved
// when a new backing array is needed.
func Filled[T any](s []T, min int) []T {
	if min <= cap(s) {
		return s[:cap(s)]
	}
	s = slices.Grow(s[:0], min)
	return s[:cap(s)]
}
