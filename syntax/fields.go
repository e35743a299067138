package syntax

import (
	"fmt"
	"sort"
)

// Fields is a labelled map container for record and union literals/types.
// It is built incrementally by the parser via NewFields, which reports a
// duplicate-key error the moment a second binding for the same label is
// added — the parser routes that error to its caller rather than letting a
// silently-shadowed duplicate reach the core.
type Fields[T any] struct {
	keys   []Label
	values map[Label]T
}

// NewFields builds a Fields from parser-order (label, value) pairs,
// reporting the first duplicate label encountered.
func NewFields[T any](pairs []LabelValue[T]) (*Fields[T], error) {
	f := &Fields[T]{values: make(map[Label]T, len(pairs))}
	for _, p := range pairs {
		if _, ok := f.values[p.Label]; ok {
			return nil, fmt.Errorf("duplicate field %q", p.Label)
		}
		f.keys = append(f.keys, p.Label)
		f.values[p.Label] = p.Value
	}
	return f, nil
}

// LabelValue is one (label, value) pair fed to NewFields.
type LabelValue[T any] struct {
	Label Label
	Value T
}

// Len reports the number of fields.
func (f *Fields[T]) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns field labels in original (insertion) order.
func (f *Fields[T]) Keys() []Label {
	if f == nil {
		return nil
	}
	return f.keys
}

// SortedKeys returns field labels in lexicographic order, the canonical
// order used by record/union normal forms and the binary encoding.
func (f *Fields[T]) SortedKeys() []Label {
	keys := append([]Label(nil), f.Keys()...)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Get looks up a field by label.
func (f *Fields[T]) Get(label Label) (T, bool) {
	var zero T
	if f == nil {
		return zero, false
	}
	v, ok := f.values[label]
	return v, ok
}

// Map materializes the underlying map; callers must not mutate it.
func (f *Fields[T]) Map() map[Label]T {
	if f == nil {
		return nil
	}
	return f.values
}

// MapFields applies fn to every value, preserving key order, building a new
// Fields of a possibly different element type. An error from fn aborts the
// traversal.
func MapFields[T, U any](f *Fields[T], fn func(Label, T) (U, error)) (*Fields[U], error) {
	if f == nil {
		return nil, nil
	}
	result := &Fields[U]{values: make(map[Label]U, len(f.keys))}
	for _, k := range f.keys {
		v, err := fn(k, f.values[k])
		if err != nil {
			return nil, err
		}
		result.keys = append(result.keys, k)
		result.values[k] = v
	}
	return result, nil
}

// MapFieldsOK is MapFields for transforms that signal failure with a bool
// instead of an error, such as shift/subst's "negative index" case.
func MapFieldsOK[T, U any](f *Fields[T], fn func(Label, T) (U, bool)) (*Fields[U], bool) {
	if f == nil {
		return nil, true
	}
	result := &Fields[U]{values: make(map[Label]U, len(f.keys))}
	for _, k := range f.keys {
		v, ok := fn(k, f.values[k])
		if !ok {
			return nil, false
		}
		result.keys = append(result.keys, k)
		result.values[k] = v
	}
	return result, true
}

// NewFieldsUnchecked builds a Fields without duplicate-checking, for
// internal callers (shift/subst, evaluation) that transform an already
// duplicate-free Fields and so cannot introduce a collision.
func NewFieldsUnchecked[T any](keys []Label, values map[Label]T) *Fields[T] {
	return &Fields[T]{keys: keys, values: values}
}
