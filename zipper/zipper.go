// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package zipper

// A focus-zipper: an ordered sequence with a distinguished current element.
// Yes, a plain slice plus an index technically already is that, but then every
// insert and delete at the cursor shuffles the tail around and the "no focus"
// case needs a magic index. Thus, keep the classic three-part shape instead:
// everything left of the cursor (stored reversed so the nearest element is at
// the head), the focus itself, and everything right of it. Insert and delete
// at the cursor are O(1)
type Zipper[T any] struct {
	left  []T // reversed: left[0] is the element just above the focus
	focus *T
	right []T
}

// New creates an empty zipper with no focused element
func New[T any]() *Zipper[T] {
	return &Zipper[T]{}
}

// FromSlice builds a zipper over the given elements, focusing the first one.
// An empty slice yields an empty zipper
func FromSlice[T any](items []T) *Zipper[T] {
	z := New[T]()
	if len(items) == 0 {
		return z
	}
	f := items[0]
	z.focus = &f
	z.right = append(z.right, items[1:]...)
	return z
}

// ToSlice flattens the zipper back into visual order
func ToSlice[T any](z *Zipper[T]) []T {
	out := make([]T, 0, z.Len())
	for i := len(z.left) - 1; i >= 0; i-- {
		out = append(out, z.left[i])
	}
	if z.focus != nil {
		out = append(out, *z.focus)
	}
	out = append(out, z.right...)
	return out
}

func (z *Zipper[T]) Len() int {
	n := len(z.left) + len(z.right)
	if z.focus != nil {
		n++
	}
	return n
}

func (z *Zipper[T]) Empty() bool {
	return z.focus == nil && len(z.left) == 0 && len(z.right) == 0
}

// Focus returns the current element, if any
func (z *Zipper[T]) Focus() (T, bool) {
	if z.focus == nil {
		var zero T
		return zero, false
	}
	return *z.focus, true
}

// Insert places the new element directly above the cursor and focuses it.
// The previously focused element ends up just below the new one
func (z *Zipper[T]) Insert(item T) {
	if z.focus != nil {
		z.right = append([]T{*z.focus}, z.right...)
	}
	f := item
	z.focus = &f
}

// Delete removes the first element matching the predicate, checking the focus
// first. If the focus was removed the cursor moves to the next element below
// it, or to the previous one if there is nothing below
func (z *Zipper[T]) Delete(match func(T) bool) bool {
	if z.focus != nil && match(*z.focus) {
		z.focus = nil
		if len(z.right) > 0 {
			f := z.right[0]
			z.focus = &f
			z.right = z.right[1:]
		} else if len(z.left) > 0 {
			f := z.left[0]
			z.focus = &f
			z.left = z.left[1:]
		}
		return true
	}
	for i, item := range z.left {
		if match(item) {
			z.left = append(z.left[:i], z.left[i+1:]...)
			return true
		}
	}
	for i, item := range z.right {
		if match(item) {
			z.right = append(z.right[:i], z.right[i+1:]...)
			return true
		}
	}
	return false
}

// Any reports whether some element matches the predicate
func (z *Zipper[T]) Any(match func(T) bool) bool {
	found := false
	z.Each(func(item T) {
		if match(item) {
			found = true
		}
	})
	return found
}

// Each calls fn on every element in visual order
func (z *Zipper[T]) Each(fn func(T)) {
	for i := len(z.left) - 1; i >= 0; i-- {
		fn(z.left[i])
	}
	if z.focus != nil {
		fn(*z.focus)
	}
	for _, item := range z.right {
		fn(item)
	}
}

// Modify replaces every element with the result of fn, keeping the cursor
func (z *Zipper[T]) Modify(fn func(T) T) {
	for i := range z.left {
		z.left[i] = fn(z.left[i])
	}
	if z.focus != nil {
		f := fn(*z.focus)
		z.focus = &f
	}
	for i := range z.right {
		z.right[i] = fn(z.right[i])
	}
}

// Filter removes every element the predicate rejects. Cursor handling follows
// Delete: if the focus goes, the next element below it takes its place
func (z *Zipper[T]) Filter(keep func(T) bool) {
	kept := make([]T, 0, z.Len())
	focusIdx := -1
	idx := 0
	add := func(item T, isFocus bool) {
		if !keep(item) {
			return
		}
		if isFocus {
			focusIdx = idx
		}
		kept = append(kept, item)
		idx++
	}
	for i := len(z.left) - 1; i >= 0; i-- {
		add(z.left[i], false)
	}
	hadFocus := z.focus != nil
	if hadFocus {
		add(*z.focus, true)
	}
	leftCount := idx
	if focusIdx >= 0 {
		leftCount = focusIdx
	}
	for _, item := range z.right {
		add(item, false)
	}

	z.left = nil
	z.focus = nil
	z.right = nil
	if len(kept) == 0 {
		return
	}
	if focusIdx < 0 {
		// The old focus was dropped (or there was none). Prefer the first
		// survivor that used to sit below the cursor
		focusIdx = leftCount
		if focusIdx >= len(kept) {
			focusIdx = len(kept) - 1
		}
	}
	for i := focusIdx - 1; i >= 0; i-- {
		z.left = append(z.left, kept[i])
	}
	f := kept[focusIdx]
	z.focus = &f
	z.right = append(z.right, kept[focusIdx+1:]...)
}

// FocusDown moves the cursor one element down, wrapping at the end
func (z *Zipper[T]) FocusDown() {
	if z.focus == nil || z.Len() < 2 {
		return
	}
	z.left = append([]T{*z.focus}, z.left...)
	if len(z.right) == 0 {
		// wrap: everything currently above becomes the tail
		for i := len(z.left) - 1; i >= 0; i-- {
			z.right = append(z.right, z.left[i])
		}
		z.left = nil
	}
	f := z.right[0]
	z.focus = &f
	z.right = z.right[1:]
}

// FocusUp moves the cursor one element up, wrapping at the start
func (z *Zipper[T]) FocusUp() {
	if z.focus == nil || z.Len() < 2 {
		return
	}
	z.right = append([]T{*z.focus}, z.right...)
	if len(z.left) == 0 {
		for i := len(z.right) - 1; i >= 0; i-- {
			z.left = append(z.left, z.right[i])
		}
		z.right = nil
	}
	f := z.left[0]
	z.focus = &f
	z.left = z.left[1:]
}
