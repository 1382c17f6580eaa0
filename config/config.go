// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

type StartType int

const (
	// Tells woburn to start a repl in parallel for interacting with it
	START_REPL = StartType(iota)
	// Tells woburn to execute a specific command on startup
	START_SINGLE_COMMAND
	// Tells woburn to start without any specific targets
	// Note: Good luck interacting with it :3
	START_NONE
)

type Config struct {
	StartType StartType `envconfig:"START_TYPE,omitempty" toml:"start_type,omitempty"`
	// What command to execute on start. Only matters if StartType is set to START_SINGLE_COMMAND
	StartCommand *string `envconfig:"START_COMMAND,omitempty" toml:"start_command,omitempty"`
	// Tags of the workspaces the compositor starts with. Tags must be unique
	WorkspaceTags []string `envconfig:"WORKSPACE_TAGS,omitempty" toml:"workspace_tags,omitempty"`
}

// DefaultTags are used when the config names no workspaces
var DefaultTags = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}

// Load reads the config from the given path, falling back to the XDG config
// home. A missing file is not an error, it just means all defaults.
// A .env file in the working directory is loaded first so that the
// WOBURN_* environment overrides work in dev setups too
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if path == "" {
		found, err := xdg.SearchConfigFile("woburn/config.toml")
		if err != nil {
			logrus.WithError(err).Debugln("No config file found, using defaults")
		} else {
			path = found
		}
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			logrus.WithField("path", path).Debugln("Config file does not exist, using defaults")
		} else if err = toml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if len(cfg.WorkspaceTags) == 0 {
		cfg.WorkspaceTags = DefaultTags
	}
	if err := checkTags(cfg.WorkspaceTags); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if raw, ok := os.LookupEnv("WOBURN_START_COMMAND"); ok {
		cfg.StartType = START_SINGLE_COMMAND
		cfg.StartCommand = &raw
	}
	if raw, ok := os.LookupEnv("WOBURN_WORKSPACE_TAGS"); ok {
		cfg.WorkspaceTags = strings.Split(raw, ",")
	}
}

func checkTags(tags []string) error {
	seen := map[string]bool{}
	for _, tag := range tags {
		if tag == "" {
			return errors.New("empty workspace tag")
		}
		if seen[tag] {
			return fmt.Errorf("duplicate workspace tag %q", tag)
		}
		seen[tag] = true
	}
	return nil
}
