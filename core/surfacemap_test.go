package core

import (
	"testing"

	"github.com/sivertb/woburn/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapWith(t *testing.T, ids ...SurfaceID) *SurfaceMap {
	t.Helper()
	m := NewSurfaceMap()
	for i, sid := range ids {
		m.Insert(sid, NewSurface(BackendHandle(i+1)))
	}
	return m
}

func sidPtr(sid SurfaceID) *SurfaceID {
	return &sid
}

func TestSurfaceMapInsertLookup(t *testing.T) {
	m := newMapWith(t, 1)
	surf, ok := m.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, BackendHandle(1), surf.Backend)
	_, ok = m.Lookup(2)
	assert.False(t, ok)
}

func TestSurfaceMapAttachResolvesToRoot(t *testing.T) {
	m := newMapWith(t, 1, 2, 3)
	require.NoError(t, m.Attach(2, sidPtr(1)))
	require.NoError(t, m.Attach(3, sidPtr(2)))

	for _, sid := range []SurfaceID{1, 2, 3} {
		root, err := m.Root(sid)
		require.NoError(t, err)
		assert.Equal(t, SurfaceID(1), root)
	}
}

func TestSurfaceMapAttachRejectsCycles(t *testing.T) {
	m := newMapWith(t, 1, 2, 3)
	require.NoError(t, m.Attach(2, sidPtr(1)))
	require.NoError(t, m.Attach(3, sidPtr(2)))

	assert.ErrorIs(t, m.Attach(1, sidPtr(3)), ErrCycle)
	assert.ErrorIs(t, m.Attach(1, sidPtr(2)), ErrCycle)
	assert.ErrorIs(t, m.Attach(1, sidPtr(1)), ErrCycle)

	// the failed attach must not have touched anything
	root, err := m.Root(3)
	require.NoError(t, err)
	assert.Equal(t, SurfaceID(1), root)
}

func TestSurfaceMapAttachUnknownIds(t *testing.T) {
	m := newMapWith(t, 1)
	assert.ErrorIs(t, m.Attach(9, sidPtr(1)), ErrBadSurface)
	assert.ErrorIs(t, m.Attach(1, sidPtr(9)), ErrBadSurface)
}

func TestSurfaceMapAttachDetachRoundTrip(t *testing.T) {
	m := newMapWith(t, 1, 2, 3)
	require.NoError(t, m.Attach(3, sidPtr(2)))

	before, err := m.LookupAllIDs(2)
	require.NoError(t, err)

	require.NoError(t, m.Attach(2, sidPtr(1)))
	require.NoError(t, m.Attach(2, nil))

	after, err := m.LookupAllIDs(2)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	root, err := m.Root(2)
	require.NoError(t, err)
	assert.Equal(t, SurfaceID(2), root)
}

func TestSurfaceMapAttachMovesWholeSubtree(t *testing.T) {
	m := newMapWith(t, 1, 2, 3)
	require.NoError(t, m.Attach(3, sidPtr(2)))
	require.NoError(t, m.Attach(2, sidPtr(1)))

	ids, err := m.LookupAllIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []SurfaceID{1, 2, 3}, ids)
}

func TestSurfaceMapDeleteReparentsChildren(t *testing.T) {
	m := newMapWith(t, 1, 2, 3, 4)
	require.NoError(t, m.Attach(2, sidPtr(1)))
	require.NoError(t, m.Attach(3, sidPtr(2)))
	require.NoError(t, m.Attach(4, sidPtr(2)))

	require.NoError(t, m.Delete(2))
	_, ok := m.Lookup(2)
	assert.False(t, ok)

	// the direct children of 2 are their own roots now
	for _, sid := range []SurfaceID{3, 4} {
		root, err := m.Root(sid)
		require.NoError(t, err)
		assert.Equal(t, sid, root)
	}
	// 1 lost the whole branch
	ids, err := m.LookupAllIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []SurfaceID{1}, ids)
}

func TestSurfaceMapDeleteUnknown(t *testing.T) {
	m := newMapWith(t, 1)
	assert.ErrorIs(t, m.Delete(9), ErrBadSurface)
}

func TestSurfaceMapResolutionBounded(t *testing.T) {
	// a long parent chain still resolves within size(map) hops
	m := NewSurfaceMap()
	const n = 32
	for i := 1; i <= n; i++ {
		m.Insert(SurfaceID(i), NewSurface(BackendHandle(i)))
	}
	for i := 2; i <= n; i++ {
		require.NoError(t, m.Attach(SurfaceID(i), sidPtr(SurfaceID(i-1))))
	}
	root, err := m.Root(n)
	require.NoError(t, err)
	assert.Equal(t, SurfaceID(1), root)
}

func TestSurfaceMapLookupAllOffsets(t *testing.T) {
	m := newMapWith(t, 1, 2, 3)
	require.NoError(t, m.Attach(2, sidPtr(1)))
	require.NoError(t, m.Attach(3, sidPtr(2)))
	require.NoError(t, m.SetPosition(2, geometry.V2{X: 10, Y: 20}))
	require.NoError(t, m.SetPosition(3, geometry.V2{X: 1, Y: 2}))

	placed, err := m.LookupAll(geometry.V2{X: 100, Y: 200}, 1)
	require.NoError(t, err)
	require.Len(t, placed, 3)
	// flatten order: 1, then its above child 2, then 2's above child 3
	assert.Equal(t, PlacedSurface{Offset: geometry.V2{X: 100, Y: 200}, Handle: 1}, placed[0])
	assert.Equal(t, PlacedSurface{Offset: geometry.V2{X: 110, Y: 220}, Handle: 2}, placed[1])
	assert.Equal(t, PlacedSurface{Offset: geometry.V2{X: 111, Y: 222}, Handle: 3}, placed[2])
}

func TestSurfaceMapPlaceBelow(t *testing.T) {
	m := newMapWith(t, 1, 2)
	require.NoError(t, m.Attach(2, sidPtr(1)))

	ids, err := m.LookupAllIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []SurfaceID{1, 2}, ids)

	require.NoError(t, m.PlaceBelow(2))
	ids, err = m.LookupAllIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []SurfaceID{2, 1}, ids)

	require.NoError(t, m.PlaceAbove(2))
	ids, err = m.LookupAllIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []SurfaceID{1, 2}, ids)
}

func TestSurfaceMapRestackRootFails(t *testing.T) {
	m := newMapWith(t, 1)
	assert.ErrorIs(t, m.PlaceAbove(1), ErrBadSurface)
	assert.ErrorIs(t, m.SetPosition(1, geometry.V2{}), ErrBadSurface)
}

func TestSurfaceMapModifyState(t *testing.T) {
	m := newMapWith(t, 1)
	require.NoError(t, m.ModifyState(1, func(s *State) {
		s.Scale = 2
	}))
	surf, _ := m.Lookup(1)
	assert.Equal(t, int32(2), surf.Current.Scale)
	assert.ErrorIs(t, m.ModifyState(9, func(*State) {}), ErrBadSurface)
}
