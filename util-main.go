package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sivertb/woburn/common/ipc"
	"github.com/sivertb/woburn/config"
	"github.com/sivertb/woburn/core"
	"github.com/swaywm/go-wlroots/wlroots"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

var (
	utilAction *string = flag.String(
		"action",
		"",
		"The action to perform. Can be one of:"+
			"\n\t- none: Do nothing"+
			"\n\t- outputs: List available outputs"+
			"\n\t- modes <output>: List available modes for an output",
	)
	outputSelection *string = flag.String(
		"output",
		"",
		"Output to perform the action on. Required for some actions",
	)
)

func utilMain(conf *config.Config) {
	if *help {
		utilHelpMessage()
		return
	}

	// Init a server, used for stuff like getting displays
	server, err := NewServer(conf)
	if err != nil {
		logrus.WithError(err).Fatal("initializing server")
	}
	if err = server.Start(); err != nil {
		logrus.WithError(err).Fatal("starting server")
	}

	switch *utilAction {
	case "outputs":
		utilListOutputs(server)
	case "modes":
		if *outputSelection == "" {
			fmt.Println("Output has to be specified")
			return
		} else {
			utilListOutputModes(server, *outputSelection)
		}
	}
}

func utilHelpMessage() {
	fmt.Println("---- Help message for woburn in tool mode ----")
	fmt.Println("\nIn tool mode, woburn will offer various tools for figuring out configurations and similar")
	fmt.Println("\nGeneral flags:")
	fmt.Println("\t-config: Path to the config file. Default is the XDG config dir")
	fmt.Println("\t-tool: Start as a tool instead of a compositor")
	fmt.Println("\t-help: Show this help message (only read together with -tool)")
	fmt.Println("\nTool flags:")
	fmt.Println("\t-action: The action to perform. Can be one of:")
	fmt.Println("\t\t- outputs: List available outputs")
	fmt.Println("\t\t- modes: List available modes for an output. Use with -output")
	fmt.Println("\t-output: Output to perform the action on. Required for -action modes")
}

func utilListOutputs(server *Server) {
	/* The backend posted its outputs into the engine queue during Start;
	 * without a running engine loop they get drained here so that the
	 * placements below are filled in. */
	server.DrainInputs()

	resp := ipc.OutputResponse{
		Placements: map[string]ipc.OutputPlacement{},
	}
	for _, out := range server.GetOutputs() {
		resp.Outputs = append(resp.Outputs, out.Name())
	}
	resp.OutputsFound = len(resp.Outputs)
	server.Inspect(func(e *core.Engine) {
		for _, mo := range e.Outputs() {
			resp.Placements[mo.Output.Name] = ipc.OutputPlacement{
				X:      mo.Rect.TopLeft.X,
				Width:  mo.Rect.Size().W,
				Height: mo.Rect.Size().H,
			}
		}
	})
	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		logrus.WithError(err).Errorln("Failed to encode output list")
		return
	}
	fmt.Println(string(raw))
}

func utilListOutputModes(server *Server, outputName string) {
	outputs := server.GetOutputs()
	filtered := sliceutils.Filter(outputs, func(output *wlroots.Output) bool {
		return output.Name() == outputName
	})
	if len(filtered) == 0 {
		fmt.Printf("Output %s not found\n", outputName)
		return
	}
	modes := filtered[0].Modes()
	fmt.Printf("Modes for output %s:\n", outputName)
	for _, mode := range modes {
		if mode.Preferred() {
			fmt.Printf("\t- %dx%d@%d (preferred)\n", mode.Width(), mode.Height(), mode.Refresh())
		} else {
			fmt.Printf("\t- %dx%d@%d\n", mode.Width(), mode.Height(), mode.Refresh())
		}
	}
}
