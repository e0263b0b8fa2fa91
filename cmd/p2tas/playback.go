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
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Blenderiste09/p2tas-lang/internal/lsp"
	"github.com/Blenderiste09/p2tas-lang/internal/sar"
)

func newLSPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := lsp.NewServer(a.parser).Serve(cmd.Context(), a.stdin, a.stdout)
			switch {
			case errors.Is(err, lsp.ErrExitWithoutShutdown):
				return &exitError{code: 1}
			case errors.Is(err, context.Canceled):
				return nil
			}
			return err
		},
	}
}

// withSAR connects to the plugin, runs fn and disconnects.
func (a *app) withSAR(ctx context.Context, fn func(*sar.Client) error) error {
	c := sar.NewClient(a.cfg.SAR.Address(),
		sar.WithDialTimeout(time.Duration(a.cfg.SAR.EffectiveDialTimeout())*time.Millisecond))
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func parseTick(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid tick %q", s)
	}
	return uint32(n), nil
}

func newPlaybackCmds(a *app) []*cobra.Command {
	simple := func(use, short string, send func(*sar.Client) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withSAR(cmd.Context(), send)
			},
		}
	}

	play := &cobra.Command{
		Use:   "play <file>",
		Short: "Start playback of a script in the game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := sar.PlaybackPath(args[0], a.cfg.SAR.GameDir)
			if err != nil {
				return err
			}
			a.log.Info("requesting playback", slog.String("script", name))
			return a.withSAR(cmd.Context(), func(c *sar.Client) error { return c.Play(name) })
		},
	}

	rate := &cobra.Command{
		Use:   "rate <rate>",
		Short: "Set the playback rate, 1 being real time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := strconv.ParseFloat(args[0], 32)
			if err != nil || r <= 0 {
				return fmt.Errorf("invalid rate %q", args[0])
			}
			return a.withSAR(cmd.Context(), func(c *sar.Client) error { return c.SetRate(float32(r)) })
		},
	}

	var pauseAfter bool
	ff := &cobra.Command{
		Use:   "ff <tick>",
		Short: "Fast-forward playback to a tick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tick, err := parseTick(args[0])
			if err != nil {
				return err
			}
			return a.withSAR(cmd.Context(), func(c *sar.Client) error { return c.FastForward(tick, pauseAfter) })
		},
	}
	ff.Flags().BoolVar(&pauseAfter, "pause", false, "Pause once the tick is reached")

	pauseAt := &cobra.Command{
		Use:   "pause-at <tick>",
		Short: "Pause playback when a tick is reached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tick, err := parseTick(args[0])
			if err != nil {
				return err
			}
			return a.withSAR(cmd.Context(), func(c *sar.Client) error { return c.PauseAt(tick) })
		},
	}

	return []*cobra.Command{
		play,
		simple("stop", "Stop playback", (*sar.Client).Stop),
		rate,
		simple("pause", "Pause playback", (*sar.Client).Pause),
		simple("resume", "Resume paused playback", (*sar.Client).Resume),
		ff,
		pauseAt,
		simple("advance", "Advance paused playback by one tick", (*sar.Client).Advance),
	}
}
