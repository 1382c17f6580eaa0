// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package universe holds the workspace/screen focus model. It deals in bare
// window identities of type W and never dereferences them; joining windows
// with their surface data is the engine's job
package universe

import (
	"github.com/sivertb/woburn/geometry"
	"github.com/sivertb/woburn/output"
	"github.com/sivertb/woburn/zipper"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// Workspace is a named ordered collection of windows with a focus
type Workspace[W comparable] struct {
	Tag     string
	Windows *zipper.Zipper[W]
}

// Screen is a workspace currently shown on an output
type Screen[W comparable] struct {
	Workspace Workspace[W]
	Output    output.Mapped
}

// Universe is the whole focus model: visible screens, hidden workspaces and
// the floating override set. A window lives in at most one workspace at a
// time; membership in Floating is an additional property, not a location
type Universe[W comparable] struct {
	Screens  *zipper.Zipper[Screen[W]]
	Hidden   []Workspace[W]
	Floating map[W]geometry.Rect
}

// New creates a universe with no screens and one empty hidden workspace per
// tag. Tags are expected to be unique
func New[W comparable](tags []string) *Universe[W] {
	u := &Universe[W]{
		Screens:  zipper.New[Screen[W]](),
		Floating: make(map[W]geometry.Rect),
	}
	for _, tag := range tags {
		u.Hidden = append(u.Hidden, Workspace[W]{Tag: tag, Windows: zipper.New[W]()})
	}
	return u
}

// SetOutputs rebuilds the screen list for a new set of outputs. Workspaces
// keep their order: the ones currently on screen come first, then the hidden
// ones, and they are zipped with the outputs by index. Workspaces beyond the
// output count go (back) to hidden; outputs beyond the workspace count get
// no screen. Floating is preserved
func (u *Universe[W]) SetOutputs(outs []output.Mapped) {
	workspaces := make([]Workspace[W], 0, u.Screens.Len()+len(u.Hidden))
	u.Screens.Each(func(s Screen[W]) {
		workspaces = append(workspaces, s.Workspace)
	})
	workspaces = append(workspaces, u.Hidden...)

	n := len(workspaces)
	if len(outs) < n {
		n = len(outs)
	}
	screens := make([]Screen[W], 0, n)
	for i := 0; i < n; i++ {
		screens = append(screens, Screen[W]{Workspace: workspaces[i], Output: outs[i]})
	}
	u.Screens = zipper.FromSlice(screens)
	u.Hidden = workspaces[n:]
}

// Insert places the window above the focused window of the focused screen's
// workspace and focuses it. Without any screen it goes to the first hidden
// workspace; without any workspace at all it is dropped
func (u *Universe[W]) Insert(w W) {
	if s, ok := u.Screens.Focus(); ok {
		s.Workspace.Windows.Insert(w)
		return
	}
	if len(u.Hidden) > 0 {
		u.Hidden[0].Windows.Insert(w)
	}
}

// Delete removes the window from wherever it lives: any screen workspace,
// any hidden workspace and the floating set
func (u *Universe[W]) Delete(w W) {
	match := func(o W) bool { return o == w }
	u.Screens.Each(func(s Screen[W]) {
		s.Workspace.Windows.Delete(match)
	})
	for _, ws := range u.Hidden {
		ws.Windows.Delete(match)
	}
	delete(u.Floating, w)
}

// Filter drops every window the predicate rejects, everywhere
func (u *Universe[W]) Filter(keep func(W) bool) {
	u.Screens.Each(func(s Screen[W]) {
		s.Workspace.Windows.Filter(keep)
	})
	for _, ws := range u.Hidden {
		ws.Windows.Filter(keep)
	}
	for w := range u.Floating {
		if !keep(w) {
			delete(u.Floating, w)
		}
	}
}

// Contains reports whether the window lives in any workspace
func (u *Universe[W]) Contains(w W) bool {
	match := func(o W) bool { return o == w }
	found := false
	u.Screens.Each(func(s Screen[W]) {
		if s.Workspace.Windows.Any(match) {
			found = true
		}
	})
	if found {
		return true
	}
	for _, ws := range u.Hidden {
		if ws.Windows.Any(match) {
			return true
		}
	}
	return false
}

// OnOutput returns the windows of the workspace shown on the given output in
// visual order. Empty if the output has no screen
func (u *Universe[W]) OnOutput(id output.ID) []W {
	screens := sliceutils.Filter(zipper.ToSlice(u.Screens), func(s Screen[W]) bool {
		return s.Output.Output.ID == id
	})
	if len(screens) == 0 {
		return nil
	}
	return zipper.ToSlice(screens[0].Workspace.Windows)
}

// Float pins the window to a fixed rectangle, relative to the top left of
// whatever screen its workspace is shown on
func (u *Universe[W]) Float(w W, r geometry.Rect) {
	u.Floating[w] = r
}

// Unfloat sends the window back into the tiled set
func (u *Universe[W]) Unfloat(w W) {
	delete(u.Floating, w)
}

// View brings the workspace with the given tag onto the focused screen,
// greedily: if it is visible on another screen the two screens swap
// workspaces, otherwise it swaps with the focused screen's workspace, which
// goes to hidden. No-op without screens or for an unknown tag
func (u *Universe[W]) View(tag string) {
	focused, ok := u.Screens.Focus()
	if !ok || focused.Workspace.Tag == tag {
		return
	}

	var shown *Workspace[W]
	u.Screens.Each(func(s Screen[W]) {
		if s.Workspace.Tag == tag {
			ws := s.Workspace
			shown = &ws
		}
	})
	if shown != nil {
		// visible elsewhere: the two screens trade workspaces. Tags are
		// unique and Modify hands out the pre-swap values, so matching the
		// other screen by tag and the focused one by output cannot collide
		u.Screens.Modify(func(s Screen[W]) Screen[W] {
			if s.Workspace.Tag == tag {
				s.Workspace = focused.Workspace
			} else if s.Output.Output.ID == focused.Output.Output.ID {
				s.Workspace = *shown
			}
			return s
		})
		return
	}

	for i, ws := range u.Hidden {
		if ws.Tag == tag {
			u.Hidden[i] = focused.Workspace
			u.Screens.Modify(func(s Screen[W]) Screen[W] {
				if s.Output.Output.ID == focused.Output.Output.ID {
					s.Workspace = ws
				}
				return s
			})
			return
		}
	}
}
