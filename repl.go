package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sivertb/woburn/core"
	"github.com/sivertb/woburn/geometry"
	"github.com/sivertb/woburn/repl"
	"github.com/sivertb/woburn/universe"
	"github.com/sivertb/woburn/util"
	"github.com/sivertb/woburn/util/wrappers"
	"github.com/sivertb/woburn/zipper"
)

func replRunner(ctx context.Context, server *Server) error {
	// Give repl some wrappers around stdin and stdout so that it closes those instead of stdin & stdout themselves
	commandRepl := repl.NewRepl(wrappers.NewReaderWrapper(os.Stdin), wrappers.NewWriterWrapper(os.Stdout))
	go func() {
		<-ctx.Done()
		commandRepl.Close()
	}()
	logrus.Debugln("Starting repl")
	return commandRepl.Run(func(input string, r *repl.Repl) (string, error) {
		if cmdString, ok := strings.CutPrefix(input, "run "); ok {
			parts := strings.Split(cmdString, " ")
			// This is safe b/c it'll unpack into a slice of length 0
			args := parts[1:]
			cmd := exec.Command(parts[0], args...)
			cmd.Stdout = r.Output
			cmd.Stderr = r.Output
			go func(cmd *exec.Cmd, cmdString string) {
				err := cmd.Start()
				if err != nil {
					logrus.WithError(err).WithField("command", cmdString).Errorln("Command failed to start")
					return
				}
				err = cmd.Wait()
				if exiterr, ok := err.(*exec.ExitError); ok {
					logrus.WithError(err).WithFields(logrus.Fields{
						"exit-code": exiterr.ExitCode(),
						"command":   cmdString,
					}).Warningln("Bad command completion")
				}
			}(cmd, cmdString)
			return "Running " + parts[0], nil
		} else if input == "quit" {
			server.Stop()
			return "Quitting", errors.New("normal stop")
		} else if tag, ok := strings.CutPrefix(input, "view "); ok {
			server.PostInput(core.ViewWorkspace{Tag: strings.TrimSpace(tag)})
			return "Viewing " + tag, nil
		} else if rawArgs, ok := strings.CutPrefix(input, "float "); ok {
			return replFloat(server, rawArgs)
		} else if rawArgs, ok := strings.CutPrefix(input, "unfloat "); ok {
			w, err := parseWindow(rawArgs)
			if err != nil {
				return err.Error(), nil
			}
			server.PostInput(core.FloatWindow{Window: w})
			return "Unfloating " + w.String(), nil
		} else if target, ok := strings.CutPrefix(input, "inspect "); ok {
			return replInspect(server, target)
		} else {
			return "Unknown command", nil
		}
	})
}

// replFloat parses "float <client> <surface> <x> <y> <w> <h>"
func replFloat(server *Server, rawArgs string) (string, error) {
	fields := strings.Fields(rawArgs)
	if len(fields) != 6 {
		return "Usage: float <client> <surface> <x> <y> <w> <h>", nil
	}
	w, err := parseWindow(fields[0] + " " + fields[1])
	if err != nil {
		return err.Error(), nil
	}
	nums := make([]int64, 4)
	for i, raw := range fields[2:] {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Sprintf("Bad number %q", raw), nil
		}
		nums[i] = n
	}
	rect := geometry.NewRect(
		geometry.V2{X: int32(nums[0]), Y: int32(nums[1])},
		geometry.Size{W: uint32(nums[2]), H: uint32(nums[3])},
	)
	server.PostInput(core.FloatWindow{Window: w, Rect: &rect})
	return "Floating " + w.String(), nil
}

func parseWindow(raw string) (core.ClientSurfaceID, error) {
	var rawClient, rawSurface string
	util.Unpack(strings.Fields(raw), &rawClient, &rawSurface)
	cid, err := strconv.ParseUint(rawClient, 10, 32)
	if err != nil {
		return core.ClientSurfaceID{}, fmt.Errorf("bad client id %q", rawClient)
	}
	sid, err := strconv.ParseUint(rawSurface, 10, 32)
	if err != nil {
		return core.ClientSurfaceID{}, fmt.Errorf("bad surface id %q", rawSurface)
	}
	return core.ClientSurfaceID{
		Client:  core.ClientID(cid),
		Surface: core.SurfaceID(sid),
	}, nil
}

func replInspect(server *Server, target string) (string, error) {
	var out strings.Builder
	switch strings.TrimSpace(target) {
	case "outputs":
		server.Inspect(func(e *core.Engine) {
			for _, mo := range e.Outputs() {
				fmt.Fprintf(&out, "%d %s: %dx%d at x=%d (scale %d, %s)\n",
					mo.Output.ID, mo.Output.Name,
					mo.Rect.Size().W, mo.Rect.Size().H,
					mo.Rect.TopLeft.X, mo.Output.Scale, mo.Output.Transform)
			}
		})
	case "universe":
		server.Inspect(func(e *core.Engine) {
			u := e.Universe()
			u.Screens.Each(func(s universe.Screen[core.ClientSurfaceID]) {
				fmt.Fprintf(&out, "screen %d: workspace %q %v\n",
					s.Output.Output.ID, s.Workspace.Tag, zipper.ToSlice(s.Workspace.Windows))
			})
			for _, ws := range u.Hidden {
				fmt.Fprintf(&out, "hidden: workspace %q %v\n", ws.Tag, zipper.ToSlice(ws.Windows))
			}
			for w, r := range u.Floating {
				fmt.Fprintf(&out, "floating: %s at %+v\n", w, r)
			}
		})
	case "layout":
		server.Inspect(func(e *core.Engine) {
			for _, ol := range e.LastLayout() {
				fmt.Fprintf(&out, "output %d:\n", ol.Output.Output.ID)
				for _, p := range ol.Placements {
					fmt.Fprintf(&out, "  %s: %+v\n", p.Window, p.Rect)
				}
			}
		})
	case "clients":
		server.Inspect(func(e *core.Engine) {
			fmt.Fprintf(&out, "%d clients connected\n", e.ClientCount())
		})
	default:
		return "Unknown inspect target (outputs, universe, layout, clients)", nil
	}
	if out.Len() == 0 {
		return "(nothing)", nil
	}
	return strings.TrimRight(out.String(), "\n"), nil
}
