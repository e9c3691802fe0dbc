package editor

import (
	"fmt"
	"slices"
)

// The helpers below never modify their input slice; each returns a new
// slice, or the input itself when nothing changes.

func Append[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

// RemoveAt drops the element at i. A collection already at its floor is
// returned unchanged. An index outside the collection is a caller bug and panics.
func RemoveAt[T any](s []T, i, floor int) []T {
	if len(s) <= floor {
		return s
	}
	checkIndex(i, len(s))

	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// UpdateAt replaces the element at i with fn applied to it.
func UpdateAt[T any](s []T, i int, fn func(T) T) []T {
	checkIndex(i, len(s))

	out := slices.Clone(s)
	out[i] = fn(out[i])
	return out
}

// Toggle removes v when present and appends it otherwise.
func Toggle[T comparable](s []T, v T) []T {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(slices.Clone(s), i, i+1)
	}
	return Append(s, v)
}

// AddUnique appends v unless the collection already holds it.
func AddUnique[T comparable](s []T, v T) []T {
	if slices.Contains(s, v) {
		return s
	}
	return Append(s, v)
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("editor: index %d out of range [0:%d]", i, n))
	}
}
