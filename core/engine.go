package core

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sivertb/woburn/geometry"
	"github.com/sivertb/woburn/layout"
	"github.com/sivertb/woburn/output"
	"github.com/sivertb/woburn/universe"
)

type clientData struct {
	surfaces *SurfaceMap
}

// Engine is the compositor core: it ingests the serialized input stream,
// keeps the authoritative scene and focus model, and answers every input
// with an ordered batch of effects. It is strictly single threaded; callers
// serialize inputs before Dispatch and route the returned effects
type Engine struct {
	handles    HandleSource
	outputs    []output.Mapped // head is the right-most output
	clients    map[ClientID]*clientData
	universe   *universe.Universe[ClientSurfaceID]
	lastLayout []layout.OutputLayout[ClientSurfaceID]
}

func NewEngine(handles HandleSource, workspaceTags []string) *Engine {
	return &Engine{
		handles:  handles,
		clients:  make(map[ClientID]*clientData),
		universe: universe.New[ClientSurfaceID](workspaceTags),
	}
}

// Dispatch processes one input to completion and returns its effects in
// program order. It never blocks and never retries
func (e *Engine) Dispatch(in Input) []Effect {
	switch msg := in.(type) {
	case ClientAdd:
		return e.clientAdd(msg)
	case ClientDel:
		return e.clientDel(msg)
	case ClientRequest:
		return e.clientRequest(msg)
	case ViewWorkspace:
		return e.viewWorkspace(msg)
	case FloatWindow:
		return e.floatWindow(msg)
	case BufferReleased:
		return e.bufferReleased(msg)
	case OutputAdded:
		return e.outputAdded(msg)
	case OutputRemoved:
		return e.outputRemoved(msg)
	case OutputFrame:
		return e.outputFrame(msg)
	default:
		return []Effect{CoreError{Message: fmt.Sprintf("unhandled input %T", in)}}
	}
}

func (e *Engine) clientAdd(msg ClientAdd) []Effect {
	if _, ok := e.clients[msg.Client]; ok {
		return []Effect{CoreError{Message: fmt.Sprintf("client %d added twice", msg.Client)}}
	}
	e.clients[msg.Client] = &clientData{surfaces: NewSurfaceMap()}
	logrus.WithField("client", msg.Client).Debugln("Client added")

	// announce the current outputs, left to right
	var effects []Effect
	for i := len(e.outputs) - 1; i >= 0; i-- {
		effects = append(effects, e.eventTo(msg.Client, EventOutputAdded{Output: e.outputs[i]}))
	}
	return effects
}

func (e *Engine) clientDel(msg ClientDel) []Effect {
	cd, ok := e.clients[msg.Client]
	if !ok {
		return []Effect{CoreError{Message: fmt.Sprintf("unknown client %d removed", msg.Client)}}
	}
	handles := cd.surfaces.Handles()
	delete(e.clients, msg.Client)
	logrus.WithFields(logrus.Fields{
		"client":   msg.Client,
		"surfaces": len(handles),
	}).Debugln("Client removed")

	e.universe.Filter(func(w ClientSurfaceID) bool { return w.Client != msg.Client })
	effects := e.relayout()
	effects = append(effects, e.commitEffect())
	if len(handles) > 0 {
		effects = append(effects, BackendDispatch{Request: BackendSurfaceDestroy{Handles: handles}})
	}
	return effects
}

func (e *Engine) clientRequest(msg ClientRequest) []Effect {
	cd, ok := e.clients[msg.Client]
	if !ok {
		return []Effect{CoreError{Message: fmt.Sprintf("request from unknown client %d", msg.Client)}}
	}
	switch req := msg.Request.(type) {
	case SurfaceCreate:
		return e.surfaceCreate(msg.Client, cd, req)
	case SurfaceDestroy:
		return e.surfaceDestroy(msg.Client, cd, req)
	case SurfaceCommit:
		return e.surfaceCommit(msg.Client, cd, req)
	case SurfaceAttach:
		if err := cd.surfaces.Attach(req.Surface, req.Parent); err != nil {
			return e.protocolError(msg.Client, err)
		}
		return []Effect{e.commitEffect()}
	case SurfaceSetPosition:
		if err := cd.surfaces.SetPosition(req.Surface, req.Position); err != nil {
			return e.protocolError(msg.Client, err)
		}
		return []Effect{e.commitEffect()}
	case SurfaceSetSync:
		return e.surfaceSetSync(msg.Client, cd, req)
	case SurfacePlaceAbove:
		if err := cd.surfaces.PlaceAbove(req.Surface); err != nil {
			return e.protocolError(msg.Client, err)
		}
		return []Effect{e.commitEffect()}
	case SurfacePlaceBelow:
		if err := cd.surfaces.PlaceBelow(req.Surface); err != nil {
			return e.protocolError(msg.Client, err)
		}
		return []Effect{e.commitEffect()}
	default:
		return []Effect{CoreError{Message: fmt.Sprintf("unhandled request %T", msg.Request)}}
	}
}

func (e *Engine) surfaceCreate(cid ClientID, cd *clientData, req SurfaceCreate) []Effect {
	if _, ok := cd.surfaces.Lookup(req.Surface); ok {
		return []Effect{e.eventTo(cid, EventError{Code: BadSurface})}
	}
	cd.surfaces.Insert(req.Surface, NewSurface(e.handles.SurfaceHandle()))
	logrus.WithFields(logrus.Fields{
		"client":  cid,
		"surface": req.Surface,
	}).Debugln("Surface created")
	return nil
}

func (e *Engine) surfaceDestroy(cid ClientID, cd *clientData, req SurfaceDestroy) []Effect {
	surf, ok := cd.surfaces.Lookup(req.Surface)
	if !ok {
		return []Effect{e.eventTo(cid, EventError{Code: BadSurface})}
	}
	e.universe.Delete(ClientSurfaceID{Client: cid, Surface: req.Surface})
	effects := e.relayout()
	effects = append(effects, e.commitEffect())
	if err := cd.surfaces.Delete(req.Surface); err != nil {
		effects = append(effects, CoreError{Message: fmt.Sprintf("surface %d/%d vanished during destroy: %s", cid, req.Surface, err)})
		return effects
	}
	effects = append(effects, BackendDispatch{Request: BackendSurfaceDestroy{Handles: []BackendHandle{surf.Backend}}})
	return effects
}

// surfaceCommit applies a batch of new states atomically. Every entry is
// validated before anything mutates; one bad id drops the whole request
func (e *Engine) surfaceCommit(cid ClientID, cd *clientData, req SurfaceCommit) []Effect {
	for _, entry := range req.Batch {
		if _, ok := cd.surfaces.Lookup(entry.Surface); !ok {
			return []Effect{e.eventTo(cid, EventError{Code: BadSurface})}
		}
	}

	var ops []universeOp
	for _, entry := range req.Batch {
		surf, _ := cd.surfaces.Lookup(entry.Surface)
		if surf.Sync && e.isChild(cd, entry.Surface) {
			// a sync subsurface caches its state until an ancestor commit
			// picks it up
			st := entry.State
			surf.Pending = &st
			continue
		}
		e.applyState(cid, cd, entry.Surface, surf, entry.State, &ops)
	}

	for _, op := range ops {
		if op.insert {
			e.universe.Insert(op.window)
		} else {
			e.universe.Delete(op.window)
		}
	}
	var effects []Effect
	if len(ops) > 0 {
		effects = e.relayout()
	}
	effects = append(effects, e.commitEffect())
	return effects
}

type universeOp struct {
	window ClientSurfaceID
	insert bool
}

// applyState commits one surface's state and cascades into sync children
// whose commits were cached
func (e *Engine) applyState(cid ClientID, cd *clientData, sid SurfaceID, surf *Surface, st State, ops *[]universeOp) {
	was := surf.Current.Mapped()
	surf.Current = st
	now := st.Mapped()
	switch {
	case !was && now:
		*ops = append(*ops, universeOp{window: ClientSurfaceID{Client: cid, Surface: sid}, insert: true})
	case was && !now:
		*ops = append(*ops, universeOp{window: ClientSurfaceID{Client: cid, Surface: sid}, insert: false})
	}

	children, err := cd.surfaces.Children(sid)
	if err != nil {
		return
	}
	for _, child := range children {
		csurf, ok := cd.surfaces.Lookup(child)
		if !ok || !csurf.Sync || csurf.Pending == nil {
			continue
		}
		pending := *csurf.Pending
		csurf.Pending = nil
		e.applyState(cid, cd, child, csurf, pending, ops)
	}
}

func (e *Engine) surfaceSetSync(cid ClientID, cd *clientData, req SurfaceSetSync) []Effect {
	surf, ok := cd.surfaces.Lookup(req.Surface)
	if !ok {
		return []Effect{e.eventTo(cid, EventError{Code: BadSurface})}
	}
	surf.Sync = req.Sync
	if req.Sync || surf.Pending == nil {
		return nil
	}
	// desync applies the cached state right away
	pending := *surf.Pending
	surf.Pending = nil
	var ops []universeOp
	e.applyState(cid, cd, req.Surface, surf, pending, &ops)
	for _, op := range ops {
		if op.insert {
			e.universe.Insert(op.window)
		} else {
			e.universe.Delete(op.window)
		}
	}
	var effects []Effect
	if len(ops) > 0 {
		effects = e.relayout()
	}
	effects = append(effects, e.commitEffect())
	return effects
}

func (e *Engine) isChild(cd *clientData, sid SurfaceID) bool {
	root, err := cd.surfaces.Root(sid)
	return err == nil && root != sid
}

func (e *Engine) viewWorkspace(msg ViewWorkspace) []Effect {
	e.universe.View(msg.Tag)
	effects := e.relayout()
	effects = append(effects, e.commitEffect())
	return effects
}

func (e *Engine) floatWindow(msg FloatWindow) []Effect {
	if !e.universe.Contains(msg.Window) {
		return []Effect{e.eventTo(msg.Window.Client, EventError{Code: BadWindow})}
	}
	if msg.Rect != nil {
		e.universe.Float(msg.Window, *msg.Rect)
	} else {
		e.universe.Unfloat(msg.Window)
	}
	effects := e.relayout()
	effects = append(effects, e.commitEffect())
	return effects
}

func (e *Engine) bufferReleased(msg BufferReleased) []Effect {
	if _, ok := e.clients[msg.Buffer.Client]; !ok {
		// the owner disconnected before the backend let go of the buffer
		logrus.WithField("client", msg.Buffer.Client).Debugln("Dropping buffer release for a gone client")
		return nil
	}
	return []Effect{e.eventTo(msg.Buffer.Client, EventBufferReleased{Buffer: msg.Buffer})}
}

func (e *Engine) outputAdded(msg OutputAdded) []Effect {
	// a backend may re-announce an output it already reported; the stale
	// entry goes away first so the remap does not count it twice
	if _, ok := output.Find(msg.Output.ID, e.outputs); ok {
		e.outputs, _, _ = output.Delete(msg.Output.ID, e.outputs)
	}
	mo := output.Map(output.NextX(e.outputs), msg.Output)
	e.outputs = append([]output.Mapped{mo}, e.outputs...)
	logrus.WithFields(logrus.Fields{
		"output": msg.Output.ID,
		"name":   msg.Output.Name,
		"rect":   mo.Rect,
	}).Infoln("Output added")

	effects := []Effect{e.broadcast(EventOutputAdded{Output: mo})}
	e.universe.SetOutputs(e.leftToRight())
	effects = append(effects, e.relayout()...)
	return effects
}

func (e *Engine) outputRemoved(msg OutputRemoved) []Effect {
	remaining, removed, ok := output.Delete(msg.ID, e.outputs)
	if !ok {
		return []Effect{CoreError{Message: fmt.Sprintf("backend removed unknown output %d", msg.ID)}}
	}
	e.outputs = remaining
	logrus.WithField("output", msg.ID).Infoln("Output removed")

	effects := []Effect{e.broadcast(EventOutputRemoved{Output: removed})}
	e.universe.SetOutputs(e.leftToRight())
	effects = append(effects, e.relayout()...)
	return effects
}

func (e *Engine) outputFrame(msg OutputFrame) []Effect {
	var effects []Effect
	for _, ol := range e.lastLayout {
		if ol.Output.Output.ID != msg.ID {
			continue
		}
		for _, p := range ol.Placements {
			cd, ok := e.clients[p.Window.Client]
			if !ok {
				effects = append(effects, CoreError{Message: fmt.Sprintf("window %s laid out for a gone client", p.Window)})
				continue
			}
			sids, err := cd.surfaces.LookupAllIDs(p.Window.Surface)
			if err != nil {
				effects = append(effects, CoreError{Message: fmt.Sprintf("window %s not in its surface map: %s", p.Window, err)})
				continue
			}
			effects = append(effects, e.eventTo(p.Window.Client, EventSurfaceFrame{Surfaces: sids}))
		}
	}
	return effects
}

// relayout recomputes the layout, emits a WindowConfigure for every window
// whose allotted size changed, and replaces the previous layout. A window
// that merely moved keeps its buffer, so position-only changes emit nothing
func (e *Engine) relayout() []Effect {
	type key struct {
		size   geometry.Size
		window ClientSurfaceID
	}
	old := make(map[key]bool)
	for _, ol := range e.lastLayout {
		for _, p := range ol.Placements {
			old[key{size: p.Rect.Size(), window: p.Window}] = true
		}
	}

	newLayout := layout.Compute(e.universe)
	var effects []Effect
	for _, ol := range newLayout {
		for _, p := range ol.Placements {
			if old[key{size: p.Rect.Size(), window: p.Window}] {
				continue
			}
			effects = append(effects, e.eventTo(p.Window.Client, EventWindowConfigure{
				Surface: p.Window.Surface,
				Size:    p.Rect.Size(),
			}))
		}
	}
	e.lastLayout = newLayout
	return effects
}

// commitEffect builds the full draw description for the backend from the
// last layout
func (e *Engine) commitEffect() Effect {
	outs := make([]OutputCommit, 0, len(e.lastLayout))
	for _, ol := range e.lastLayout {
		oc := OutputCommit{Output: ol.Output.Output.ID}
		for _, p := range ol.Placements {
			cd, ok := e.clients[p.Window.Client]
			if !ok {
				continue
			}
			placed, err := cd.surfaces.LookupAll(p.Rect.TopLeft, p.Window.Surface)
			if err != nil {
				logrus.WithError(err).WithField("window", p.Window).Errorln("Skipping window in commit")
				continue
			}
			oc.Windows = append(oc.Windows, WindowCommit{Rect: p.Rect, Surfaces: placed})
		}
		outs = append(outs, oc)
	}
	return BackendDispatch{Request: BackendCommit{Outputs: outs}}
}

// leftToRight reverses the internal head-is-right-most list into the order
// the universe zips workspaces with
func (e *Engine) leftToRight() []output.Mapped {
	out := make([]output.Mapped, 0, len(e.outputs))
	for i := len(e.outputs) - 1; i >= 0; i-- {
		out = append(out, e.outputs[i])
	}
	return out
}

func (e *Engine) protocolError(cid ClientID, err error) []Effect {
	logrus.WithError(err).WithField("client", cid).Debugln("Protocol error")
	return []Effect{e.eventTo(cid, EventError{Code: BadSurface})}
}

func (e *Engine) eventTo(cid ClientID, ev Event) Effect {
	target := cid
	return ClientEvent{Target: &target, Event: ev}
}

func (e *Engine) broadcast(ev Event) Effect {
	return ClientEvent{Event: ev}
}

// Inspection accessors for the repl and the tool mode. They read the live
// state; callers serialize against Dispatch

// Outputs returns the mapped outputs, head right-most
func (e *Engine) Outputs() []output.Mapped {
	return e.outputs
}

// Universe exposes the focus model for inspection
func (e *Engine) Universe() *universe.Universe[ClientSurfaceID] {
	return e.universe
}

// LastLayout returns the most recently computed layout
func (e *Engine) LastLayout() []layout.OutputLayout[ClientSurfaceID] {
	return e.lastLayout
}

// ClientCount returns the number of connected clients
func (e *Engine) ClientCount() int {
	return len(e.clients)
}
