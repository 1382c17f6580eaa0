// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package output

import (
	"github.com/sivertb/woburn/geometry"
)

// ID identifies one physical output for as long as the backend keeps it
// plugged in
type ID uint32

// Output is what the backend reports about a display: its native pixel size
// plus the scale and transform it is driven with
type Output struct {
	ID        ID
	Name      string
	Size      geometry.Size
	Scale     int32
	Transform geometry.Transform
}

// Mapped is an output placed into the global compositor space
type Mapped struct {
	Output Output
	Rect   geometry.Rect
}

// EffectiveSize is the size the output occupies in compositor space. A
// portrait transform swaps width and height, and both axes shrink by the
// integer scale
func (o Output) EffectiveSize() geometry.Size {
	s := o.Transform.Apply(o.Size)
	scale := o.Scale
	if scale < 1 {
		scale = 1
	}
	return geometry.Size{
		W: s.W / uint32(scale),
		H: s.H / uint32(scale),
	}
}

// Map places the output at the given X offset on the global strip
func Map(xOffset int32, o Output) Mapped {
	return Mapped{
		Output: o,
		Rect:   geometry.NewRect(geometry.V2{X: xOffset}, o.EffectiveSize()),
	}
}

// MapAll lays the outputs out into one contiguous strip starting at startX.
// The fold runs right to left so the last element of the input ends up
// leftmost; the returned list preserves input order, which means the head of
// the list is always the right-most mapped output. NextX reads exactly that
// head to find the next free column
func MapAll(startX int32, outs []Output) []Mapped {
	mapped := make([]Mapped, len(outs))
	x := startX
	for i := len(outs) - 1; i >= 0; i-- {
		mapped[i] = Map(x, outs[i])
		x = mapped[i].Rect.NextX()
	}
	return mapped
}

// NextX is the first free column right of everything mapped so far
func NextX(mapped []Mapped) int32 {
	if len(mapped) == 0 {
		return 0
	}
	return mapped[0].Rect.NextX()
}

// Delete removes the output with the given id and closes the gap it leaves:
// every output on its right (earlier in the list, since the head is
// right-most) shifts left by the removed width, outputs on its left keep
// their place. Returns the remaining list and the removed entry
func Delete(id ID, mapped []Mapped) ([]Mapped, Mapped, bool) {
	idx := -1
	for i, mo := range mapped {
		if mo.Output.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return mapped, Mapped{}, false
	}
	removed := mapped[idx]

	rights := make([]Output, 0, idx)
	for _, mo := range mapped[:idx] {
		rights = append(rights, mo.Output)
	}
	out := MapAll(removed.Rect.TopLeft.X, rights)
	out = append(out, mapped[idx+1:]...)
	return out, removed, true
}

// Find returns the mapped output with the given id
func Find(id ID, mapped []Mapped) (Mapped, bool) {
	for _, mo := range mapped {
		if mo.Output.ID == id {
			return mo, true
		}
	}
	return Mapped{}, false
}
