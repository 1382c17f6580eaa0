package core

import (
	"errors"
	"fmt"

	"github.com/sivertb/woburn/geometry"
	"github.com/sivertb/woburn/tree"
)

var (
	// ErrBadSurface is returned for operations on unknown surface ids
	ErrBadSurface = errors.New("no such surface")
	// ErrCycle is returned when an attach would make a surface its own
	// ancestor
	ErrCycle = errors.New("attach would create a cycle")
)

// ChildRef is the label type of surface trees: the child's id plus the
// offset at which it is placed relative to its parent
type ChildRef struct {
	ID     SurfaceID
	Offset geometry.V2
}

// attachment says where a surface sits in the scene: either it is the root
// of a sub-tree and owns the canonical structure, or it points at its parent
// and the chain of parents eventually lands on a root
type attachment struct {
	tree   *tree.Tree[ChildRef]
	parent SurfaceID
	child  bool
}

type mapEntry struct {
	surface *Surface
	att     attachment
}

// SurfaceMap is the per-client scene graph: every surface the client owns,
// keyed by id, with the parent/child structure alongside.
// Invariant: every id resolves to exactly one root in at most Len hops
type SurfaceMap struct {
	entries map[SurfaceID]*mapEntry
}

// PlacedSurface is one element of a flattened sub-tree: where to paint which
// backend surface
type PlacedSurface struct {
	Offset geometry.V2
	Handle BackendHandle
}

func NewSurfaceMap() *SurfaceMap {
	return &SurfaceMap{entries: make(map[SurfaceID]*mapEntry)}
}

func (m *SurfaceMap) Len() int {
	return len(m.entries)
}

// Insert adds the surface as its own root. Overwriting an existing id is a
// caller bug; use Lookup first
func (m *SurfaceMap) Insert(sid SurfaceID, surf *Surface) {
	t := tree.Leaf(ChildRef{ID: sid})
	m.entries[sid] = &mapEntry{
		surface: surf,
		att:     attachment{tree: &t},
	}
}

func (m *SurfaceMap) Lookup(sid SurfaceID) (*Surface, bool) {
	e, ok := m.entries[sid]
	if !ok {
		return nil, false
	}
	return e.surface, true
}

// Root resolves the surface to the root of its sub-tree by following parent
// pointers. The hop count is bounded by the map size, so a (theoretically
// impossible) cycle degrades into ErrCycle instead of an endless loop
func (m *SurfaceMap) Root(sid SurfaceID) (SurfaceID, error) {
	cur := sid
	for hops := 0; hops <= len(m.entries); hops++ {
		e, ok := m.entries[cur]
		if !ok {
			return 0, ErrBadSurface
		}
		if !e.att.child {
			return cur, nil
		}
		cur = e.att.parent
	}
	return 0, ErrCycle
}

// detach makes sid the root of its own sub-tree. No-op if it already is one
func (m *SurfaceMap) detach(sid SurfaceID) error {
	e, ok := m.entries[sid]
	if !ok {
		return ErrBadSurface
	}
	if !e.att.child {
		return nil
	}
	root, err := m.Root(sid)
	if err != nil {
		return err
	}
	re := m.entries[root]
	z, ok := tree.Find(*re.att.tree, func(c ChildRef) bool { return c.ID == sid })
	if !ok {
		return fmt.Errorf("surface %d not in the tree of its root %d", sid, root)
	}
	remaining, removed, _, ok := z.Delete()
	if !ok {
		return fmt.Errorf("surface %d resolves to root %d but is that root", sid, root)
	}
	re.att.tree = &remaining
	e.att = attachment{tree: &removed}
	return nil
}

// Attach detaches sid from its current parent and, if parent is non-nil,
// splices its whole sub-tree under the parent at the parent's insertion
// point. Attaching a surface under its own descendant fails with ErrCycle
// and leaves the map untouched
func (m *SurfaceMap) Attach(sid SurfaceID, parent *SurfaceID) error {
	if _, ok := m.entries[sid]; !ok {
		return ErrBadSurface
	}
	if parent != nil {
		if _, ok := m.entries[*parent]; !ok {
			return ErrBadSurface
		}
		// positive ancestor walk: sid must not appear on the parent's chain
		cur := *parent
		for {
			if cur == sid {
				return ErrCycle
			}
			e := m.entries[cur]
			if !e.att.child {
				break
			}
			cur = e.att.parent
		}
	}
	if err := m.detach(sid); err != nil {
		return err
	}
	if parent == nil {
		return nil
	}

	proot, err := m.Root(*parent)
	if err != nil {
		return err
	}
	pe := m.entries[proot]
	z, ok := tree.Find(*pe.att.tree, func(c ChildRef) bool { return c.ID == *parent })
	if !ok {
		return fmt.Errorf("surface %d not in the tree of its root %d", *parent, proot)
	}
	focus := z.Focus()
	focus.Insert(*m.entries[sid].att.tree)
	rebuilt := z.WithFocus(focus).Rebuild()
	pe.att.tree = &rebuilt
	m.entries[sid].att = attachment{parent: *parent, child: true}
	return nil
}

// Delete removes the surface. It is detached from its parent first, then
// each of its direct children is promoted to a root of its own
func (m *SurfaceMap) Delete(sid SurfaceID) error {
	if err := m.detach(sid); err != nil {
		return err
	}
	e := m.entries[sid]
	sub := *e.att.tree
	for _, c := range sub.Below {
		m.promote(c)
	}
	for _, c := range sub.Above {
		m.promote(c)
	}
	delete(m.entries, sid)
	return nil
}

func (m *SurfaceMap) promote(sub tree.Tree[ChildRef]) {
	e, ok := m.entries[sub.Label.ID]
	if !ok {
		return
	}
	t := sub
	e.att = attachment{tree: &t}
}

// subtree returns the canonical tree rooted at sid, wherever it lives
func (m *SurfaceMap) subtree(sid SurfaceID) (tree.Tree[ChildRef], error) {
	e, ok := m.entries[sid]
	if !ok {
		return tree.Tree[ChildRef]{}, ErrBadSurface
	}
	if !e.att.child {
		return *e.att.tree, nil
	}
	root, err := m.Root(sid)
	if err != nil {
		return tree.Tree[ChildRef]{}, err
	}
	z, ok := tree.Find(*m.entries[root].att.tree, func(c ChildRef) bool { return c.ID == sid })
	if !ok {
		return tree.Tree[ChildRef]{}, fmt.Errorf("surface %d not in the tree of its root %d", sid, root)
	}
	return z.Focus(), nil
}

// LookupAll flattens the sub-tree rooted at sid in paint order (below, the
// surface itself, above), each element carrying its accumulated offset
// starting from rootOffset
func (m *SurfaceMap) LookupAll(rootOffset geometry.V2, sid SurfaceID) ([]PlacedSurface, error) {
	sub, err := m.subtree(sid)
	if err != nil {
		return nil, err
	}
	var out []PlacedSurface
	var walk func(t tree.Tree[ChildRef], at geometry.V2) error
	walk = func(t tree.Tree[ChildRef], at geometry.V2) error {
		for _, c := range t.Below {
			if err := walk(c, at.Add(c.Label.Offset)); err != nil {
				return err
			}
		}
		e, ok := m.entries[t.Label.ID]
		if !ok {
			return fmt.Errorf("tree references unknown surface %d", t.Label.ID)
		}
		out = append(out, PlacedSurface{Offset: at, Handle: e.surface.Backend})
		for _, c := range t.Above {
			if err := walk(c, at.Add(c.Label.Offset)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(sub, rootOffset); err != nil {
		return nil, err
	}
	return out, nil
}

// LookupAllIDs is LookupAll reduced to the surface ids, in the same order
func (m *SurfaceMap) LookupAllIDs(sid SurfaceID) ([]SurfaceID, error) {
	sub, err := m.subtree(sid)
	if err != nil {
		return nil, err
	}
	var out []SurfaceID
	sub.Walk(func(c ChildRef) {
		out = append(out, c.ID)
	})
	return out, nil
}

// Children returns the direct children of sid in paint order
func (m *SurfaceMap) Children(sid SurfaceID) ([]SurfaceID, error) {
	sub, err := m.subtree(sid)
	if err != nil {
		return nil, err
	}
	var out []SurfaceID
	for _, c := range sub.Below {
		out = append(out, c.Label.ID)
	}
	for _, c := range sub.Above {
		out = append(out, c.Label.ID)
	}
	return out, nil
}

// SetPosition updates the offset at which sid is placed under its parent.
// Positioning a root is meaningless and fails with ErrBadSurface
func (m *SurfaceMap) SetPosition(sid SurfaceID, pos geometry.V2) error {
	e, ok := m.entries[sid]
	if !ok || !e.att.child {
		return ErrBadSurface
	}
	return m.editInRoot(sid, func(z tree.Zipper[ChildRef]) (tree.Tree[ChildRef], error) {
		focus := z.Focus()
		focus.Label.Offset = pos
		return z.WithFocus(focus).Rebuild(), nil
	})
}

// PlaceAbove moves sid to the top of its parent's above stack
func (m *SurfaceMap) PlaceAbove(sid SurfaceID) error {
	return m.restack(sid, true)
}

// PlaceBelow moves sid to the bottom of its parent's below stack
func (m *SurfaceMap) PlaceBelow(sid SurfaceID) error {
	return m.restack(sid, false)
}

func (m *SurfaceMap) restack(sid SurfaceID, above bool) error {
	e, ok := m.entries[sid]
	if !ok || !e.att.child {
		return ErrBadSurface
	}
	parent := e.att.parent
	return m.editInRoot(sid, func(z tree.Zipper[ChildRef]) (tree.Tree[ChildRef], error) {
		remaining, removed, _, ok := z.Delete()
		if !ok {
			return tree.Tree[ChildRef]{}, ErrBadSurface
		}
		pz, ok := tree.Find(remaining, func(c ChildRef) bool { return c.ID == parent })
		if !ok {
			return tree.Tree[ChildRef]{}, fmt.Errorf("parent %d vanished while restacking %d", parent, sid)
		}
		focus := pz.Focus()
		if above {
			focus.Above = append(focus.Above, removed)
		} else {
			focus.Below = append([]tree.Tree[ChildRef]{removed}, focus.Below...)
		}
		return pz.WithFocus(focus).Rebuild(), nil
	})
}

// editInRoot runs fn on a zipper focused on sid inside its root tree and
// stores the rebuilt tree
func (m *SurfaceMap) editInRoot(sid SurfaceID, fn func(tree.Zipper[ChildRef]) (tree.Tree[ChildRef], error)) error {
	root, err := m.Root(sid)
	if err != nil {
		return err
	}
	re := m.entries[root]
	z, ok := tree.Find(*re.att.tree, func(c ChildRef) bool { return c.ID == sid })
	if !ok {
		return fmt.Errorf("surface %d not in the tree of its root %d", sid, root)
	}
	rebuilt, err := fn(z)
	if err != nil {
		return err
	}
	re.att.tree = &rebuilt
	return nil
}

// ModifyState applies fn to the surface's committed state
func (m *SurfaceMap) ModifyState(sid SurfaceID, fn func(*State)) error {
	e, ok := m.entries[sid]
	if !ok {
		return ErrBadSurface
	}
	fn(&e.surface.Current)
	return nil
}

// Handles returns the backend handles of every surface in the map
func (m *SurfaceMap) Handles() []BackendHandle {
	out := make([]BackendHandle, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.surface.Backend)
	}
	return out
}

// IDs returns every surface id in the map, in no particular order
func (m *SurfaceMap) IDs() []SurfaceID {
	out := make([]SurfaceID, 0, len(m.entries))
	for sid := range m.entries {
		out = append(out, sid)
	}
	return out
}
