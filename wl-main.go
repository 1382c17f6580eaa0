package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
	"github.com/sivertb/woburn/config"
	"github.com/sivertb/woburn/util/sutureext"
	"github.com/swaywm/go-wlroots/wlroots"
)

func fatal(msg string, err error) {
	fmt.Printf("error %s: %s\n", msg, err)
	os.Exit(1)
}

func wlMain(conf *config.Config) {
	wlroots.OnLog(wlroots.LogImportanceError, func(importance wlroots.LogImportance, msg string) {
		switch importance {
		case wlroots.LogImportanceDebug:
			logrus.Debugln(msg)
		case wlroots.LogImportanceInfo:
			logrus.Infoln(msg)
		case wlroots.LogImportanceError:
			logrus.Errorln(msg)
		case wlroots.LogImportanceSilent:
			return
		}
	})

	// start the server
	server, err := NewServer(conf)
	if err != nil {
		fatal("initializing server", err)
	}
	if err = server.Start(); err != nil {
		fatal("starting server", err)
	}

	/* The engine loop and the optional repl run supervised next to the
	 * wayland event loop; if one of them dies it is restarted without
	 * taking the compositor down. */
	super := sutureext.New("woburn")
	super.Add(sutureext.NewServiceFunc("engine", server.RunEngine))
	if conf.StartType == config.START_REPL {
		super.Add(sutureext.NewServiceFunc("repl", func(ctx context.Context) error {
			return replRunner(ctx, server)
		}))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errC := super.ServeBackground(ctx)

	if conf.StartType == config.START_SINGLE_COMMAND && conf.StartCommand != nil {
		cmd := exec.Command("/bin/sh", "-c", *conf.StartCommand)
		if err := cmd.Start(); err != nil {
			logrus.WithError(err).WithField("command", *conf.StartCommand).Errorln("Start command failed")
		}
	}

	// run the wayland event loop
	if err = server.Run(); err != nil {
		fatal("running server", err)
	}
	cancel()
	<-errC
}
