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
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Blenderiste09/p2tas-lang/internal/tasscript"
)

// checkResult is the outcome of checking one file.
type checkResult struct {
	path   string
	script *tasscript.Script
}

func (r checkResult) errors() int {
	n := 0
	for _, d := range r.script.Diagnostics {
		if d.Severity == tasscript.SeverityError {
			n++
		}
	}
	return n
}

func newCheckCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report the diagnostics of TAS scripts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.checkFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			failed := printResults(a.stdout, results)
			if watch {
				return a.watch(cmd.Context(), args)
			}
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Check again whenever a file changes")
	return cmd
}

// checkFiles parses every file concurrently. Results keep the order of paths.
func (a *app) checkFiles(ctx context.Context, paths []string) ([]checkResult, error) {
	results := make([]checkResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := a.checkFile(p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *app) checkFile(path string) (checkResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return checkResult{}, fmt.Errorf("read script: %w", err)
	}
	start := time.Now()
	s := a.parser.Parse(string(data))
	a.log.Debug("checked", slog.String("path", path), slog.Int("diagnostics", len(s.Diagnostics)),
		slog.Duration("took", time.Since(start)))
	return checkResult{path: path, script: s}, nil
}

// printResults writes one "file:line:col: severity: message" line per
// diagnostic and reports whether any error was found.
func printResults(w io.Writer, results []checkResult) bool {
	failed := false
	for _, r := range results {
		for _, d := range r.script.Diagnostics {
			_, _ = fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", r.path, d.Line+1, d.Start+1, d.Severity, d.Message)
		}
		if r.errors() > 0 {
			failed = true
		}
	}
	return failed
}

// watch re-checks a file whenever it is written until ctx is done. The
// parent directories are watched since editors often replace files on save.
func (a *app) watch(ctx context.Context, paths []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]string, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = p
		dir := filepath.Dir(abs)
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	a.log.Info("watching", slog.Int("files", len(targets)))
	_, _ = fmt.Fprintln(a.stderr, "Watching for changes, press Ctrl+C to stop.")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watch error", slog.Any("err", err))
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			p, tracked := targets[filepath.Clean(ev.Name)]
			if !tracked || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			r, err := a.checkFile(p)
			if err != nil {
				// The file may be mid-replace; the next event checks it again.
				a.log.Debug("recheck failed", slog.String("path", p), slog.Any("err", err))
				continue
			}
			_, _ = fmt.Fprintf(a.stdout, "== %s: %s\n", p, summary(r))
			printResults(a.stdout, []checkResult{r})
		}
	}
}

func summary(r checkResult) string {
	n := len(r.script.Diagnostics)
	switch {
	case n == 0:
		return "ok"
	case n == 1:
		return "1 problem"
	default:
		return fmt.Sprintf("%d problems", n)
	}
}

// formatTools joins the active tools of a line for display.
func formatTools(ts []string) string {
	if len(ts) == 0 {
		return "-"
	}
	return strings.Join(ts, ", ")
}
