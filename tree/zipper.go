// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tree

// A breadcrumb into a parent node: everything of the parent except the hole
// the focused sub-tree was taken out of
type crumb[T any] struct {
	label       T
	belowBefore []Tree[T]
	belowAfter  []Tree[T]
	aboveBefore []Tree[T]
	aboveAfter  []Tree[T]
	inBelow     bool
}

// Zipper is a path of breadcrumbs from the root down to a focused sub-tree.
// Navigation and local edits are O(depth)
type Zipper[T any] struct {
	crumbs []crumb[T]
	focus  Tree[T]
}

// Shuffle records where a sub-tree sat before it was detached: the parent's
// label, which child list it was in and its index there
type Shuffle[T any] struct {
	Parent  T
	InBelow bool
	Index   int
}

// Find locates the first label matching the predicate via depth-first search
// in flatten order and returns a zipper focused on its sub-tree
func Find[T any](t Tree[T], pred func(T) bool) (Zipper[T], bool) {
	var crumbs []crumb[T]
	return find(t, pred, crumbs)
}

func find[T any](t Tree[T], pred func(T) bool, crumbs []crumb[T]) (Zipper[T], bool) {
	for i, c := range t.Below {
		z, ok := find(c, pred, append(crumbs, crumb[T]{
			label:       t.Label,
			belowBefore: t.Below[:i],
			belowAfter:  t.Below[i+1:],
			aboveBefore: t.Above,
			inBelow:     true,
		}))
		if ok {
			return z, true
		}
	}
	if pred(t.Label) {
		return Zipper[T]{crumbs: crumbs, focus: t}, true
	}
	for i, c := range t.Above {
		z, ok := find(c, pred, append(crumbs, crumb[T]{
			label:       t.Label,
			belowBefore: t.Below,
			aboveBefore: t.Above[:i],
			aboveAfter:  t.Above[i+1:],
		}))
		if ok {
			return z, true
		}
	}
	return Zipper[T]{}, false
}

// Focus returns the focused sub-tree
func (z Zipper[T]) Focus() Tree[T] {
	return z.focus
}

// IsRoot reports whether the focus is the root of the tree the zipper was
// built from
func (z Zipper[T]) IsRoot() bool {
	return len(z.crumbs) == 0
}

// WithFocus returns a zipper with the focused sub-tree replaced
func (z Zipper[T]) WithFocus(t Tree[T]) Zipper[T] {
	z.focus = t
	return z
}

// Rebuild walks back up the breadcrumbs and returns the whole tree with the
// (possibly replaced) focus in place
func (z Zipper[T]) Rebuild() Tree[T] {
	node := z.focus
	for i := len(z.crumbs) - 1; i >= 0; i-- {
		node = z.crumbs[i].fill(node)
	}
	return node
}

// Delete removes the focused sub-tree and returns the remaining tree, the
// removed sub-tree and a Shuffle describing where it was. Deleting the root
// is not possible; ok is false in that case
func (z Zipper[T]) Delete() (remaining Tree[T], removed Tree[T], at Shuffle[T], ok bool) {
	if len(z.crumbs) == 0 {
		return Tree[T]{}, z.focus, Shuffle[T]{}, false
	}
	last := z.crumbs[len(z.crumbs)-1]
	at = Shuffle[T]{
		Parent:  last.label,
		InBelow: last.inBelow,
		Index:   len(last.belowBefore),
	}
	if !last.inBelow {
		at.Index = len(last.aboveBefore)
	}
	node := last.skip()
	for i := len(z.crumbs) - 2; i >= 0; i-- {
		node = z.crumbs[i].fill(node)
	}
	return node, z.focus, at, true
}

// fill reconstructs the parent node with sub plugged back into the hole
func (c crumb[T]) fill(sub Tree[T]) Tree[T] {
	node := Tree[T]{Label: c.label}
	if c.inBelow {
		node.Below = join(c.belowBefore, &sub, c.belowAfter)
		node.Above = join(c.aboveBefore, nil, c.aboveAfter)
	} else {
		node.Below = join(c.belowBefore, nil, c.belowAfter)
		node.Above = join(c.aboveBefore, &sub, c.aboveAfter)
	}
	return node
}

// skip reconstructs the parent node with the hole closed up
func (c crumb[T]) skip() Tree[T] {
	return Tree[T]{
		Label: c.label,
		Below: join(c.belowBefore, nil, c.belowAfter),
		Above: join(c.aboveBefore, nil, c.aboveAfter),
	}
}

func join[T any](before []Tree[T], mid *Tree[T], after []Tree[T]) []Tree[T] {
	n := len(before) + len(after)
	if mid != nil {
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]Tree[T], 0, n)
	out = append(out, before...)
	if mid != nil {
		out = append(out, *mid)
	}
	out = append(out, after...)
	return out
}
