package domain

// Lookup is the result of an existence check against the remote API.
// A missing resource is a NotFound lookup, never an error.
type Lookup[T any] struct {
	value T
	found bool
}

// Found wraps a value that exists.
func Found[T any](value T) Lookup[T] {
	return Lookup[T]{value: value, found: true}
}

// NotFound is the empty lookup.
func NotFound[T any]() Lookup[T] {
	return Lookup[T]{}
}

// Get returns the value and whether it was found.
func (l Lookup[T]) Get() (T, bool) {
	return l.value, l.found
}

// IsFound reports whether the lookup holds a value.
func (l Lookup[T]) IsFound() bool {
	return l.found
}
