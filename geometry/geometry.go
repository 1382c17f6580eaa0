// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package geometry

// V2 is a signed 2-vector in compositor space
type V2 struct {
	X int32
	Y int32
}

// Size is an unsigned extent. A Size is never zero in a valid rectangle
type Size struct {
	W uint32
	H uint32
}

// Add returns the component-wise sum of both vectors
func (v V2) Add(o V2) V2 {
	return V2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Rect is an axis-aligned rectangle. Both corners are inclusive:
// a rectangle of size (w, h) at origin (0, 0) has its bottom right
// corner at (w-1, h-1). The next free X column after it is w
type Rect struct {
	TopLeft     V2
	BottomRight V2
}

// NewRect builds the inclusive rectangle covering size starting at origin
func NewRect(origin V2, size Size) Rect {
	return Rect{
		TopLeft: origin,
		BottomRight: V2{
			X: origin.X + int32(size.W) - 1,
			Y: origin.Y + int32(size.H) - 1,
		},
	}
}

func (r Rect) Size() Size {
	return Size{
		W: uint32(r.BottomRight.X - r.TopLeft.X + 1),
		H: uint32(r.BottomRight.Y - r.TopLeft.Y + 1),
	}
}

// Translate moves the rectangle by the given vector
func (r Rect) Translate(v V2) Rect {
	return Rect{
		TopLeft:     r.TopLeft.Add(v),
		BottomRight: r.BottomRight.Add(v),
	}
}

// NextX is the first free column to the right of the rectangle
func (r Rect) NextX() int32 {
	return r.BottomRight.X + 1
}

// Overlaps reports whether both rectangles share at least one pixel
func (r Rect) Overlaps(o Rect) bool {
	return r.TopLeft.X <= o.BottomRight.X && o.TopLeft.X <= r.BottomRight.X &&
		r.TopLeft.Y <= o.BottomRight.Y && o.TopLeft.Y <= r.BottomRight.Y
}

// Contains reports whether the point lies inside the rectangle
func (r Rect) Contains(p V2) bool {
	return p.X >= r.TopLeft.X && p.X <= r.BottomRight.X &&
		p.Y >= r.TopLeft.Y && p.Y <= r.BottomRight.Y
}
