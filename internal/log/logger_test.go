/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewWritesJSONToFile verifies the rotated file sink receives JSON lines
// carrying the static and contextual attributes.
func TestNewWritesJSONToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "p2tas.log")
	var console bytes.Buffer
	l := New(Options{Level: "debug", Format: "console", File: fpath}, &console)

	l = WithOperation(l.With(slog.String("component", "testcomp")), "op1")
	l.Info("hello world", slog.String("k", "v"))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "p2tas" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "testcomp" || m["op"] != "op1" || m["msg"] != "hello world" {
		t.Fatalf("unexpected record: %v", m)
	}
	if !strings.Contains(console.String(), "INF hello world") {
		t.Fatalf("console sink missing record: %q", console.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "true")
	t.Setenv(EnvFile, "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("P2TAS_SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn"}, &buf)

	if l.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	l.With(slog.String("k", "v")).WithGroup("grp").Error("boom",
		slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true), slog.String("s", "two words"))

	out := buf.String()
	for _, want := range []string{" ERR boom", "k=v", "grp.n=42", "grp.pi=3.14", "grp.ok=true", `grp.s="two words"`, "app=p2tas"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestConsoleHandlerSource(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Level: "info", AddSource: true}, &buf).Info("here")
	if out := buf.String(); !strings.Contains(out, "src=") || !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("expected call site in output, got %q", out)
	}

	buf.Reset()
	New(Options{Level: "info"}, &buf).Info("here")
	if out := buf.String(); strings.Contains(out, "src=") {
		t.Fatalf("source should be off by default, got %q", out)
	}
}

func TestInitInstallsDefault(t *testing.T) {
	var buf bytes.Buffer
	old := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = old })

	Init(Options{Level: "debug"})
	WithComponent("lsp").Debug("ready", slog.Duration("took", time.Millisecond))
	if out := buf.String(); !strings.Contains(out, "DBG ready") || !strings.Contains(out, "component=lsp") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	if L() != slog.Default() {
		t.Fatalf("Init should install the logger as slog default")
	}
}
