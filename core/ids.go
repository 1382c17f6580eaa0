package core

import "fmt"

// ClientID identifies one connected client for the lifetime of its
// connection. Ids are handed out by the session layer from a diet allocator
// and may be reused after a disconnect
type ClientID uint32

// SurfaceID identifies one surface within the scope of a single client.
// Different clients may use the same SurfaceID for unrelated surfaces
type SurfaceID uint32

// ClientSurfaceID identifies a surface globally. It is the window identity
// used throughout the universe and the layout
type ClientSurfaceID struct {
	Client  ClientID
	Surface SurfaceID
}

func (id ClientSurfaceID) String() string {
	return fmt.Sprintf("%d/%d", id.Client, id.Surface)
}

// BackendHandle is an opaque token for the backend-side resources of one
// surface. It is obtained on surface creation and handed back to the backend
// for destruction when the surface goes away
type BackendHandle uint64
