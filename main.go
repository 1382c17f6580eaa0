// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"flag"

	"github.com/sirupsen/logrus"
	"github.com/sivertb/woburn/config"
)

var (
	configPath *string = flag.String("config", "", "Path to the config file. Defaults to the XDG config dir")
	toolMode   *bool   = flag.Bool("tool", false, "Start as a tool instead of a compositor")
	help       *bool   = flag.Bool("help", false, "Show the help message")
	debug      *bool   = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatalln("Failed to load config")
	}

	if *toolMode {
		utilMain(conf)
		return
	}
	wlMain(conf)
}
