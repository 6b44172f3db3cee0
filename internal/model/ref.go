package model

// Ref is a boxed value that two elements can share. Cloning an element with
// a field flagged "shared" copies the Ref (same box, same underlying
// pointer) so later writes through either element's Get/Set are visible to
// both; cloning with the field flagged "independent" calls Detach, which
// allocates a fresh box holding a copy of the current value.
//
// This is how clone_element's per-field share-vs-copy semantics (spec.md
// §4.2, testable property 7) are represented without back-pointers between
// sibling elements: both Refs point at the same *T, or they don't.
type Ref[T any] struct {
	v *T
}

// NewRef boxes val in a fresh Ref.
func NewRef[T any](val T) Ref[T] {
	return Ref[T]{v: &val}
}

// Get returns the current boxed value.
func (r Ref[T]) Get() T {
	return *r.v
}

// Set mutates the boxed value in place, visible to every Ref sharing the box.
func (r Ref[T]) Set(val T) {
	*r.v = val
}

// Share returns a Ref aliasing the same box as r.
func (r Ref[T]) Share() Ref[T] {
	return r
}

// Detach returns a Ref boxing an independent copy of r's current value.
func (r Ref[T]) Detach() Ref[T] {
	val := *r.v
	return Ref[T]{v: &val}
}

// SameBox reports whether a and b alias the same underlying storage.
func SameBox[T any](a, b Ref[T]) bool {
	return a.v == b.v
}
