// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package layout turns a universe into rectangles. Compute is a pure
// function of its input: no state, no side effects, same universe in, same
// rectangles out
package layout

import (
	"github.com/sivertb/woburn/geometry"
	"github.com/sivertb/woburn/output"
	"github.com/sivertb/woburn/universe"
	"github.com/sivertb/woburn/zipper"
)

// Placement assigns one window its on-screen rectangle in global coordinates
type Placement[W comparable] struct {
	Rect   geometry.Rect
	Window W
}

// OutputLayout is everything laid out on one output
type OutputLayout[W comparable] struct {
	Output     output.Mapped
	Placements []Placement[W]
}

// Compute lays out every screen of the universe. The policy is a vertical
// stack with master: the focused window fills the left half, the remaining
// windows split the right half evenly top to bottom. A single window gets
// the whole screen. Windows with a floating rectangle keep it, translated to
// the screen's origin. Hidden workspaces produce nothing
func Compute[W comparable](u *universe.Universe[W]) []OutputLayout[W] {
	var out []OutputLayout[W]
	u.Screens.Each(func(s universe.Screen[W]) {
		out = append(out, OutputLayout[W]{
			Output:     s.Output,
			Placements: computeScreen(u, s),
		})
	})
	return out
}

func computeScreen[W comparable](u *universe.Universe[W], s universe.Screen[W]) []Placement[W] {
	windows := zipper.ToSlice(s.Workspace.Windows)
	if len(windows) == 0 {
		return nil
	}
	focused, _ := s.Workspace.Windows.Focus()
	screen := s.Output.Rect
	size := screen.Size()

	tiled := tile(size, len(windows))
	placements := make([]Placement[W], 0, len(windows))
	next := 0
	for _, w := range windows {
		var r geometry.Rect
		if fr, ok := u.Floating[w]; ok {
			r = fr.Translate(screen.TopLeft)
		} else if w == focused {
			r = tiled[0].Translate(screen.TopLeft)
		} else {
			next++
			r = tiled[next].Translate(screen.TopLeft)
		}
		placements = append(placements, Placement[W]{Rect: r, Window: w})
	}
	return placements
}

// tile splits a screen of the given size into n rectangles relative to its
// origin. Index 0 is the master slot
func tile(size geometry.Size, n int) []geometry.Rect {
	if n == 1 {
		return []geometry.Rect{geometry.NewRect(geometry.V2{}, size)}
	}
	masterW := size.W / 2
	stackW := size.W - masterW
	rects := make([]geometry.Rect, 0, n)
	rects = append(rects, geometry.NewRect(geometry.V2{}, geometry.Size{W: masterW, H: size.H}))

	stack := n - 1
	each := size.H / uint32(stack)
	y := int32(0)
	for i := 0; i < stack; i++ {
		h := each
		if i == stack-1 {
			// the last slot absorbs the rounding rest
			h = size.H - uint32(y)
		}
		rects = append(rects, geometry.NewRect(
			geometry.V2{X: int32(masterW), Y: y},
			geometry.Size{W: stackW, H: h},
		))
		y += int32(h)
	}
	return rects
}
