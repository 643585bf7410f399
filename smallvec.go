// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pubgrub

// smallVecTag distinguishes the inline-optimized states of a smallVec from
// its heap-backed overflow state.
type smallVecTag int

const (
	smallVecEmpty smallVecTag = iota
	smallVecOne
	smallVecTwo
	smallVecFlexible
)

// smallVec is an inline-optimized short vector. Most version ranges carry
// only one or two segments, so the zero, one, and two
// element cases are stored directly in the struct instead of behind a heap
// allocation; anything larger falls back to a plain slice.
type smallVec[T any] struct {
	tag      smallVecTag
	one, two T
	rest     []T
}

// newSmallVec builds a smallVec from an existing slice, choosing the
// narrowest representation for its length. The input slice is not retained
// for the Empty/One/Two cases; the Flexible case copies it.
func newSmallVec[T any](items []T) smallVec[T] {
	switch len(items) {
	case 0:
		return smallVec[T]{tag: smallVecEmpty}
	case 1:
		return smallVec[T]{tag: smallVecOne, one: items[0]}
	case 2:
		return smallVec[T]{tag: smallVecTwo, one: items[0], two: items[1]}
	default:
		rest := make([]T, len(items))
		copy(rest, items)
		return smallVec[T]{tag: smallVecFlexible, rest: rest}
	}
}

// oneSmallVec builds a single-element smallVec without going through a slice.
func oneSmallVec[T any](v T) smallVec[T] {
	return smallVec[T]{tag: smallVecOne, one: v}
}

// Len returns the number of elements in the vector.
func (v smallVec[T]) Len() int {
	switch v.tag {
	case smallVecEmpty:
		return 0
	case smallVecOne:
		return 1
	case smallVecTwo:
		return 2
	default:
		return len(v.rest)
	}
}

// Slice materializes the vector as a plain slice. For the inline cases this
// allocates a small new slice; callers on a hot path that only need to
// iterate should prefer Len/At where practical.
func (v smallVec[T]) Slice() []T {
	switch v.tag {
	case smallVecEmpty:
		return nil
	case smallVecOne:
		return []T{v.one}
	case smallVecTwo:
		return []T{v.one, v.two}
	default:
		return v.rest
	}
}

// At returns the element at index i. Panics if i is out of range, matching
// slice indexing semantics.
func (v smallVec[T]) At(i int) T {
	switch v.tag {
	case smallVecOne:
		if i == 0 {
			return v.one
		}
	case smallVecTwo:
		if i == 0 {
			return v.one
		}
		if i == 1 {
			return v.two
		}
	case smallVecFlexible:
		return v.rest[i]
	}
	panic("smallVec: index out of range")
}

// Push appends an element, returning the updated vector. Growing past two
// elements transitions the vector to its heap-backed Flexible form.
func (v smallVec[T]) Push(item T) smallVec[T] {
	switch v.tag {
	case smallVecEmpty:
		return oneSmallVec(item)
	case smallVecOne:
		return smallVec[T]{tag: smallVecTwo, one: v.one, two: item}
	case smallVecTwo:
		rest := make([]T, 0, 3)
		rest = append(rest, v.one, v.two, item)
		return smallVec[T]{tag: smallVecFlexible, rest: rest}
	default:
		rest := make([]T, len(v.rest)+1)
		copy(rest, v.rest)
		rest[len(v.rest)] = item
		return smallVec[T]{tag: smallVecFlexible, rest: rest}
	}
}

// IsEmpty reports whether the vector holds no elements.
func (v smallVec[T]) IsEmpty() bool {
	return v.tag == smallVecEmpty
}
