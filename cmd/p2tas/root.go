/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Blenderiste09/p2tas-lang/internal/config"
	applog "github.com/Blenderiste09/p2tas-lang/internal/log"
	"github.com/Blenderiste09/p2tas-lang/internal/tasscript"
	"github.com/Blenderiste09/p2tas-lang/internal/tools"
)

// exitError ends the program with code without printing anything further.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// app is the state shared by all commands, filled in before any command runs.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string

	cfg     config.AppConfig
	catalog *tools.Catalog
	parser  *tasscript.Parser
	log     *slog.Logger
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if a.log != nil {
		a.log.Debug("command failed", slog.Any("err", err))
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "p2tas",
		Short:         "Language tools and playback control for Portal 2 TAS scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the config file (default is the per-user config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: console or json")

	root.AddCommand(
		newLSPCmd(a),
		newCheckCmd(a),
		newTicksCmd(a),
		newToolsCmd(a),
		newVersionCmd(a),
	)
	root.AddCommand(newPlaybackCmds(a)...)
	return root
}

// setup loads the configuration, reconfigures logging and builds the parser.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	a.log = applog.WithOperation(applog.WithComponent("cli"), cmd.Name())

	a.catalog = tools.Builtin()
	if path := cfg.Tools.CatalogFile; path != "" {
		user, err := tools.LoadFile(path)
		if err != nil {
			return err
		}
		a.catalog = a.catalog.Merge(user)
		a.log.Debug("tool catalog loaded", slog.String("path", path), slog.Int("tools", len(user.Names())))
	}

	policy := tasscript.PlaceholdersUntilResolved
	if cfg.Completion.Placeholders == config.PlaceholdersHide {
		policy = tasscript.PlaceholdersHidden
	}
	a.parser = tasscript.NewParser(a.catalog, tasscript.WithPlaceholderPolicy(policy))
	return nil
}
