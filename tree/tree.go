// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tree

// A rose tree whose children are split into two ordered sequences around the
// node itself: Below is painted under the node, Above over it. The split
// point doubles as the insertion point for new children.
// Flattening order is below, then the node, then above
type Tree[T any] struct {
	Below []Tree[T]
	Label T
	Above []Tree[T]
}

// Leaf creates a childless tree
func Leaf[T any](label T) Tree[T] {
	return Tree[T]{Label: label}
}

// Insert adds a child at the insertion point. New children end up topmost
// among the above siblings
func (t *Tree[T]) Insert(sub Tree[T]) {
	t.Above = append(t.Above, sub)
}

// Walk calls fn for every label in flatten order
func (t Tree[T]) Walk(fn func(T)) {
	for _, c := range t.Below {
		c.Walk(fn)
	}
	fn(t.Label)
	for _, c := range t.Above {
		c.Walk(fn)
	}
}

// Flatten returns all labels in below-node-above order
func (t Tree[T]) Flatten() []T {
	var out []T
	t.Walk(func(label T) {
		out = append(out, label)
	})
	return out
}

// Count returns the number of nodes in the tree
func (t Tree[T]) Count() int {
	n := 1
	for _, c := range t.Below {
		n += c.Count()
	}
	for _, c := range t.Above {
		n += c.Count()
	}
	return n
}
