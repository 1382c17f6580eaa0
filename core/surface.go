package core

import (
	"github.com/sivertb/woburn/geometry"
)

// Buffer is an opaque handle to client pixel data. The client that attached
// it keeps ownership until the backend signals BufferReleased
type Buffer struct {
	Format uint32
	Size   geometry.Size
	Stride int32
	Client ClientID
}

// WindowState is the window role of a surface: what the shell needs to treat
// it as a toplevel (or popup) rather than raw pixels
type WindowState struct {
	Title    string
	Class    string
	Geometry geometry.Rect
	Popup    *PopupState
}

// PopupState marks a window as a popup anchored to a parent surface
type PopupState struct {
	Parent SurfaceID
	Offset geometry.V2
}

// State is the committed (or cached pending, for sync subsurfaces) content
// of one surface
type State struct {
	Buffer       *Buffer
	BufferOffset geometry.V2
	Scale        int32
	Damage       []geometry.Rect
	Opaque       []geometry.Rect
	Input        []geometry.Rect
	Transform    geometry.Transform
	Window       *WindowState
}

// NewState is the initial state of a freshly created surface
func NewState() State {
	return State{Scale: 1}
}

// Mapped reports whether this state makes the surface a window: it needs
// both a window role and content
func (s State) Mapped() bool {
	return s.Window != nil && s.Buffer != nil
}

// Surface couples a surface's committed state with its backend resources.
// Sync marks a subsurface whose commits are cached in Pending until the
// nearest desynced ancestor commits
type Surface struct {
	Current State
	Pending *State
	Sync    bool
	Backend BackendHandle
}

// NewSurface wraps a fresh backend handle into an unmapped surface
func NewSurface(handle BackendHandle) *Surface {
	return &Surface{Current: NewState(), Backend: handle}
}
