package sets

import (
	"cmp"
	"slices"
)

// Set is a simple generic hash set for comparable keys.
// A nil Set is a valid empty set for reads; Add on a nil Set panics like a nil map,
// so owners that accumulate lazily should go through Ensure.
// Usage: s := sets.New[string]("a","b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Ensure returns s, or a fresh empty set when s is nil.
func Ensure[T comparable](s Set[T]) Set[T] {
	if s == nil {
		return make(Set[T])
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Delete removes v if present.
func (s Set[T]) Delete(v T) { delete(s, v) }

// Len returns the number of members.
func (s Set[T]) Len() int { return len(s) }

// Clone returns a shallow copy. Cloning a nil set yields an empty, non-nil set.
func (s Set[T]) Clone() Set[T] {
	out := make(Set[T], len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Extend adds every member of other to s.
func (s Set[T]) Extend(other Set[T]) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Union returns a new set holding the members of both a and b.
func Union[T comparable](a, b Set[T]) Set[T] {
	out := make(Set[T], len(a)+len(b))
	out.Extend(a)
	out.Extend(b)
	return out
}

// Equal reports whether a and b hold the same members. Nil and empty are equal.
func Equal[T comparable](a, b Set[T]) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b.Has(k) {
			return false
		}
	}
	return true
}

// SortedFunc returns the members ordered by cmpFn.
func SortedFunc[T comparable](s Set[T], cmpFn func(a, b T) int) []T {
	out := make([]T, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.SortFunc(out, cmpFn)
	return out
}

// Sorted returns the members of an ordered set in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	return SortedFunc(s, cmp.Compare[T])
}
