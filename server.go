package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sivertb/woburn/config"
	"github.com/sivertb/woburn/core"
	"github.com/sivertb/woburn/diet"
	"github.com/sivertb/woburn/geometry"
	"github.com/sivertb/woburn/output"
	"github.com/sivertb/woburn/util/multiplexer"
	"github.com/swaywm/go-wlroots/wlroots"
)

// clientBinding ties one wlroots toplevel to the core identity it was given.
// Every toplevel acts as its own client towards the core; its popups and
// subsurfaces would be further surfaces under the same id
type clientBinding struct {
	id       core.ClientID
	surface  wlroots.XDGSurface
	surfaces map[core.SurfaceID]wlroots.XDGSurface
}

type Server struct {
	display     wlroots.Display
	backend     wlroots.Backend
	renderer    wlroots.Renderer
	allocator   wlroots.Allocator
	scene       wlroots.Scene
	sceneLayout wlroots.SceneOutputLayout

	xdgShell     wlroots.XDGShell
	outputLayout wlroots.OutputLayout
	outputs      []*wlroots.Output

	engine     *core.Engine
	engineLock sync.Mutex
	inboundC   chan core.Input
	inbound    *multiplexer.ManyToOne[core.Input]
	events     *multiplexer.OneToMany[core.ClientID, core.Event]
	clientIDs  *diet.Diet

	bindLock sync.Mutex
	bindings []*clientBinding

	handleLock   sync.Mutex
	nextHandle   core.BackendHandle
	nodes        map[core.BackendHandle]wlroots.SceneTree
	pendingNodes []wlroots.SceneTree

	nextOutputID output.ID
	outputIDs    map[string]output.ID
}

// SurfaceHandle implements core.HandleSource. The engine calls it while it
// processes the SurfaceCreate we posted; posts and creations happen in the
// same order, so the oldest pending scene node belongs to this handle
func (server *Server) SurfaceHandle() core.BackendHandle {
	server.handleLock.Lock()
	defer server.handleLock.Unlock()
	server.nextHandle++
	h := server.nextHandle
	if len(server.pendingNodes) > 0 {
		server.nodes[h] = server.pendingNodes[0]
		server.pendingNodes = server.pendingNodes[1:]
	}
	return h
}

// PostInput feeds one message into the serialized engine queue
func (server *Server) PostInput(in core.Input) {
	if err := server.inbound.Send(in); err != nil {
		logrus.WithError(err).Debugln("Dropping input, engine queue is closed")
	}
}

// RunEngine drains the serialized queue, one message at a time, and routes
// the effects. This is the only goroutine that mutates core state
func (server *Server) RunEngine(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-server.inboundC:
			if !ok {
				return nil
			}
			server.engineLock.Lock()
			effects := server.engine.Dispatch(in)
			server.engineLock.Unlock()
			for _, effect := range effects {
				server.applyEffect(effect)
			}
		}
	}
}

func (server *Server) applyEffect(effect core.Effect) {
	switch eff := effect.(type) {
	case core.ClientEvent:
		if eff.Target == nil {
			server.events.Broadcast(eff.Event)
		} else {
			server.events.SendTo(*eff.Target, eff.Event)
		}
	case core.BackendDispatch:
		server.applyBackendRequest(eff.Request)
	case core.CoreError:
		logrus.WithField("message", eff.Message).Errorln("Core inconsistency")
	}
}

func (server *Server) applyBackendRequest(req core.BackendRequest) {
	switch r := req.(type) {
	case core.BackendCommit:
		server.handleLock.Lock()
		for _, oc := range r.Outputs {
			for _, win := range oc.Windows {
				for _, placed := range win.Surfaces {
					node, ok := server.nodes[placed.Handle]
					if !ok {
						continue
					}
					node.Node().SetPosition(float64(placed.Offset.X), float64(placed.Offset.Y))
				}
			}
		}
		server.handleLock.Unlock()
	case core.BackendSurfaceDestroy:
		server.handleLock.Lock()
		for _, h := range r.Handles {
			if node, ok := server.nodes[h]; ok {
				node.Node().Destroy()
				delete(server.nodes, h)
			}
		}
		server.handleLock.Unlock()
	}
}

// runClientWriter plays the role of the per-client writer task: it drains
// the client's event queue and translates the events back into wlroots
// calls on the toplevel
func (server *Server) runClientWriter(binding *clientBinding, events <-chan core.Event) {
	for ev := range events {
		switch e := ev.(type) {
		case core.EventWindowConfigure:
			surf, ok := binding.surfaces[e.Surface]
			if !ok {
				continue
			}
			surf.TopLevelSetSize(e.Size.W, e.Size.H)
		case core.EventError:
			logrus.WithFields(logrus.Fields{
				"client": binding.id,
				"code":   e.Code,
			}).Warnln("Protocol error")
		default:
			logrus.WithFields(logrus.Fields{
				"client": binding.id,
				"event":  fmt.Sprintf("%T", ev),
			}).Debugln("Client event")
		}
	}
}

func (server *Server) findBinding(xdgSurface wlroots.XDGSurface) *clientBinding {
	server.bindLock.Lock()
	defer server.bindLock.Unlock()
	for _, b := range server.bindings {
		if b.surface == xdgSurface {
			return b
		}
	}
	return nil
}

func (server *Server) dropBinding(binding *clientBinding) {
	server.bindLock.Lock()
	defer server.bindLock.Unlock()
	for i, b := range server.bindings {
		if b == binding {
			server.bindings = append(server.bindings[:i], server.bindings[i+1:]...)
			return
		}
	}
}

func (server *Server) handleNewFrame(out wlroots.Output) {
	/* This function is called every time an output is ready to display a frame,
	 * generally at the output's refresh rate (e.g. 60Hz). */
	sOut, err := server.scene.SceneOutput(out)
	if err != nil {
		return
	}

	/* Render the scene if needed and commit the output */
	sOut.Commit()
	sOut.SendFrameDone(time.Now())

	if id, ok := server.outputIDs[out.Name()]; ok {
		server.PostInput(core.OutputFrame{ID: id})
	}
}

func (server *Server) handleOutputRequestState(out wlroots.Output, state wlroots.OutputState) {
	/* This function is called when the backend requests a new state for
	 * the output. For example, Wayland and X11 backends request a new mode
	 * when the output window is resized. */
	out.CommitState(state)
}

func (server *Server) handleOutputDestroy(out wlroots.Output) {
	logrus.WithField("name", out.Name()).Debugln("Output getting destroyed")
	if id, ok := server.outputIDs[out.Name()]; ok {
		delete(server.outputIDs, out.Name())
		server.PostInput(core.OutputRemoved{ID: id})
	}
}

func (server *Server) handleNewOutput(out wlroots.Output) {
	/* This event is raised by the backend when a new output (aka a display or
	 * monitor) becomes available. */
	logrus.WithField("name", out.Name()).Debugln("New output added")
	server.outputs = append(server.outputs, &out)

	/* Configures the output created by the backend to use our allocator
	 * and our renderer. Must be done once, before commiting the output */
	out.InitRender(server.allocator, server.renderer)

	/* The output may be disabled, switch it on. */
	oState := wlroots.NewOutputState()
	oState.StateInit()
	oState.StateSetEnabled(true)

	/* Some backends don't have modes. DRM+KMS does, and we need to set a mode
	 * before we can use the output. We just pick the monitor's preferred
	 * mode; the core only cares about the resulting size. */
	size := geometry.Size{W: 1920, H: 1080}
	mode, err := out.PrefferedMode()
	if err == nil {
		oState.SetMode(mode)
		size = geometry.Size{W: uint32(mode.Width()), H: uint32(mode.Height())}
	}

	/* Atomically applies the new output state. */
	out.CommitState(oState)
	oState.Finish()

	out.OnFrame(server.handleNewFrame)
	out.OnRequestState(server.handleOutputRequestState)
	out.OnDestroy(server.handleOutputDestroy)

	/* Adds this to the output layout. The core maintains its own strip of
	 * global coordinates; the wlroots layout exists so that wl_output
	 * globals are advertised to clients. */
	lOutput := server.outputLayout.AddOutputAuto(out)
	sceneOutput := server.scene.NewOutput(out)
	server.sceneLayout.AddOutput(lOutput, sceneOutput)

	server.nextOutputID++
	id := server.nextOutputID
	server.outputIDs[out.Name()] = id
	server.PostInput(core.OutputAdded{Output: output.Output{
		ID:        id,
		Name:      out.Name(),
		Size:      size,
		Scale:     1,
		Transform: geometry.TransformNormal,
	}})

	if err := out.SetTitle(fmt.Sprintf("woburn - %s", out.Name())); err != nil {
		return
	}
}

func (server *Server) handleMapXDGToplevel(xdgSurface wlroots.XDGSurface) {
	/* Called when the surface is mapped, or ready to display on-screen. The
	 * core treats this as the commit that carries both a window role and a
	 * buffer, which is what flips the surface into a window. */
	binding := server.findBinding(xdgSurface)
	if binding == nil {
		return
	}
	box := xdgSurface.Geometry()
	st := core.NewState()
	st.Window = &core.WindowState{
		Title: xdgSurface.TopLevel().Title(),
		Geometry: geometry.NewRect(
			geometry.V2{X: int32(box.X), Y: int32(box.Y)},
			geometry.Size{W: uint32(max(box.Width, 1)), H: uint32(max(box.Height, 1))},
		),
	}
	st.Buffer = &core.Buffer{
		Size:   geometry.Size{W: uint32(max(box.Width, 1)), H: uint32(max(box.Height, 1))},
		Client: binding.id,
	}
	server.PostInput(core.ClientRequest{
		Client: binding.id,
		Request: core.SurfaceCommit{
			Batch: []core.CommitEntry{{Surface: 1, State: st}},
		},
	})
}

func (server *Server) handleUnMapXDGToplevel(xdgSurface wlroots.XDGSurface) {
	/* Called when the surface is unmapped, and should no longer be shown.
	 * A commit without a buffer unmaps the window in the core. */
	binding := server.findBinding(xdgSurface)
	if binding == nil {
		return
	}
	st := core.NewState()
	server.PostInput(core.ClientRequest{
		Client: binding.id,
		Request: core.SurfaceCommit{
			Batch: []core.CommitEntry{{Surface: 1, State: st}},
		},
	})
}

func (server *Server) handleDestroyXDGToplevel(xdgSurface wlroots.XDGSurface) {
	binding := server.findBinding(xdgSurface)
	if binding == nil {
		return
	}
	server.dropBinding(binding)
	server.PostInput(core.ClientDel{Client: binding.id})
	server.events.CloseReceiver(binding.id)
	server.clientIDs.Free(uint32(binding.id))
}

func (server *Server) handleNewXDGSurface(xdgSurface wlroots.XDGSurface) {
	/* This event is raised when wlr_xdg_shell receives a new xdg surface from a
	 * client, either a toplevel (application window) or popup. */
	logrus.WithField("surface", xdgSurface).Debugln("New surface inbound")

	if xdgSurface.Role() == wlroots.XDGSurfaceRolePopup {
		parent := xdgSurface.Popup().Parent()
		if parent.Nil() {
			logrus.WithField("surface", xdgSurface).Fatalln("xdgSurface popup parent is nil")
		}
		xdgSurface.SetData(parent.XDGSurface().SceneTree().NewXDGSurface(xdgSurface))
		return
	}
	if xdgSurface.Role() != wlroots.XDGSurfaceRoleTopLevel {
		logrus.WithFields(logrus.Fields{
			"surface": xdgSurface,
			"role":    xdgSurface.Role(),
		}).Fatalln("xdgSurface role is not XDGSurfaceRoleTopLevel")
	}

	rawID, ok := server.clientIDs.Alloc()
	if !ok {
		logrus.Errorln("Client id space exhausted, refusing surface")
		return
	}
	cid := core.ClientID(rawID)

	node := server.scene.Tree().NewXDGSurface(xdgSurface.TopLevel().Base())
	xdgSurface.SetData(node)

	binding := &clientBinding{
		id:      cid,
		surface: xdgSurface,
		surfaces: map[core.SurfaceID]wlroots.XDGSurface{
			1: xdgSurface,
		},
	}
	server.bindLock.Lock()
	server.bindings = append(server.bindings, binding)
	server.bindLock.Unlock()

	events, err := server.events.MakeReceiver(cid, 64)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to register client event queue")
	} else {
		go server.runClientWriter(binding, events)
	}

	/* The scene node is queued before the SurfaceCreate is posted, so the
	 * pending node queue stays in step with the order the engine mints
	 * handles in. */
	server.handleLock.Lock()
	server.pendingNodes = append(server.pendingNodes, node)
	server.handleLock.Unlock()
	server.PostInput(core.ClientAdd{Client: cid})
	server.PostInput(core.ClientRequest{Client: cid, Request: core.SurfaceCreate{Surface: 1}})

	xdgSurface.OnMap(server.handleMapXDGToplevel)
	xdgSurface.OnUnmap(server.handleUnMapXDGToplevel)
	xdgSurface.OnDestroy(server.handleDestroyXDGToplevel)
}

func (server *Server) GetOutputs() []*wlroots.Output {
	return server.outputs
}

// DrainInputs processes everything currently queued, synchronously. Tool
// mode uses it instead of a running engine loop
func (server *Server) DrainInputs() {
	for {
		select {
		case in := <-server.inboundC:
			server.engineLock.Lock()
			effects := server.engine.Dispatch(in)
			server.engineLock.Unlock()
			for _, effect := range effects {
				server.applyEffect(effect)
			}
		default:
			return
		}
	}
}

// Inspect runs fn against the engine while no input is being processed
func (server *Server) Inspect(fn func(e *core.Engine)) {
	server.engineLock.Lock()
	defer server.engineLock.Unlock()
	fn(server.engine)
}

func NewServer(conf *config.Config) (server *Server, err error) {
	server = new(Server)

	server.inboundC = make(chan core.Input, 256)
	server.inbound = multiplexer.NewManyToOne(server.inboundC)
	server.events = multiplexer.NewOneToMany[core.ClientID, core.Event]()
	server.clientIDs = diet.New()
	server.nodes = make(map[core.BackendHandle]wlroots.SceneTree)
	server.outputIDs = make(map[string]output.ID)
	server.engine = core.NewEngine(server, conf.WorkspaceTags)

	/* The Wayland display is managed by libwayland. It handles accepting
	 * clients from the Unix socket, manging Wayland globals, and so on. */
	server.display = wlroots.NewDisplay()

	/* The backend is a wlroots feature which abstracts the underlying input and
	 * output hardware. The autocreate option will choose the most suitable
	 * backend based on the current environment, such as opening an X11 window
	 * if an X11 server is running. */
	server.backend, err = server.display.BackendAutocreate()
	if err != nil {
		return nil, err
	}

	/* Autocreates a renderer, either Pixman, GLES2 or Vulkan for us. The user
	 * can also specify a renderer using the WLR_RENDERER env var.
	 * The renderer is responsible for defining the various pixel formats it
	 * supports for shared memory, this configures that for clients. */
	server.renderer, err = server.backend.RendererAutoCreate()
	if err != nil {
		return nil, err
	}
	server.renderer.InitDisplay(server.display)

	/* Autocreates an allocator for us.
	 * The allocator is the bridge between the renderer and the backend. It
	 * handles the buffer creation, allowing wlroots to render onto the
	 * screen */
	server.allocator, err = server.backend.AllocatorAutocreate(server.renderer)
	if err != nil {
		return nil, err
	}

	/* This creates some hands-off wlroots interfaces. The compositor is
	 * necessary for clients to allocate surfaces, the subcompositor allows to
	 * assign the role of subsurfaces to surfaces and the data device manager
	 * handles the clipboard. */
	server.display.CompositorCreate(5, server.renderer)
	server.display.SubCompositorCreate()
	server.display.DataDeviceManagerCreate()

	/* Creates an output layout, which a wlroots utility for working with an
	 * arrangement of screens in a physical layout. */
	server.outputLayout = wlroots.NewOutputLayout()

	/* Configure a listener to be notified when new outputs are available on the
	 * backend. */
	server.backend.OnNewOutput(server.handleNewOutput)

	/* Create a scene graph. This is a wlroots abstraction that handles all
	 * rendering and damage tracking. The core decides what goes where; the
	 * scene graph just draws it. */
	server.scene = wlroots.NewScene()
	server.sceneLayout = server.scene.AttachOutputLayout(server.outputLayout)

	/* Set up xdg-shell version 3. The xdg-shell is a Wayland protocol which is
	 * used for application windows. */
	server.xdgShell = server.display.XDGShellCreate(3)
	server.xdgShell.OnNewSurface(server.handleNewXDGSurface)

	return server, nil
}

func (server *Server) Start() error {
	/* Add a Unix socket to the Wayland display. */
	socket, err := server.display.AddSocketAuto()
	if err != nil {
		server.backend.Destroy()
		return err
	}
	logrus.WithField("socket", socket).Debugln("got wl socket")

	/* Start the backend. This will enumerate outputs and inputs, become the DRM
	 * master, etc */
	if err = server.backend.Start(); err != nil {
		server.backend.Destroy()
		server.display.Destroy()
		return err
	}

	/* Set the WAYLAND_DISPLAY environment variable to our socket and run the
	 * startup command if requested. */
	if res := os.Getenv("WAYLAND_DISPLAY"); res != "" {
		logrus.WithField("WAYLAND_DISPLAY", res).Debugln("Wayland display already set, overwriting")
	}
	if err = os.Setenv("WAYLAND_DISPLAY", socket); err != nil {
		return err
	}

	logrus.WithField("WAYLAND_DISPLAY", socket).Infoln("Running Wayland compositor")
	return err
}

func (server *Server) Run() error {
	/* Run the Wayland event loop. This does not return until you exit the
	 * compositor. */
	server.display.Run()

	/* Once display.Run() returns, we destroy all clients then shut down the
	 * server. */
	server.inbound.Close()
	server.events.Close()
	server.display.DestroyClients()
	server.scene.Tree().Node().Destroy()
	server.outputLayout.Destroy()
	server.display.Destroy()
	return nil
}

func (server *Server) Stop() {
	server.display.Terminate()
}
