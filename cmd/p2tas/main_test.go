/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// cli runs the command line against a config file that does not exist, so
// only defaults and the test's environment apply.
func cli(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...)
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeScript(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestCheckClean(t *testing.T) {
	path := writeScript(t, "ok.p2tas", "start now\n+1>||||strafe vec\n")
	code, out, _ := cli(t, "", "check", path)
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestCheckReportsDiagnostics(t *testing.T) {
	bad := writeScript(t, "bad.p2tas", "start now\n+0>||||bogus")
	warn := writeScript(t, "warn.p2tas", "start now\nrepeat 2\n5>||||\nend")
	code, out, _ := cli(t, "", "check", bad, warn)
	assert.Equal(t, 1, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, bad+":2:8: error: Unknown tool 'bogus'", lines[0])
	assert.Equal(t, warn+":3:1: warning: Absolute tick inside a loop, use a relative tick", lines[1])
}

func TestCheckWarningsDoNotFail(t *testing.T) {
	warn := writeScript(t, "warn.p2tas", "start now\nrepeat 2\n5>||||\nend")
	code, out, _ := cli(t, "", "check", warn)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "warning")
}

func TestCheckMissingFile(t *testing.T) {
	code, _, errOut := cli(t, "", "check", filepath.Join(t.TempDir(), "missing.p2tas"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "read script")
}

func TestCheckWatch(t *testing.T) {
	path := writeScript(t, "route.p2tas", "start now\n+1>||||")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out, errOut syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"--config", filepath.Join(t.TempDir(), "c.yaml"), "check", "--watch", path}, strings.NewReader(""), &out, &errOut)
	}()

	require.Eventually(t, func() bool { return strings.Contains(errOut.String(), "Watching for changes") },
		5*time.Second, 20*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("start now\n+1>||||bogus"), 0o644))
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Unknown tool 'bogus'") },
		5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "== "+path+": 1 problem")

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestTicks(t *testing.T) {
	path := writeScript(t, "route.p2tas", "start now\n+5>||||strafe vec\nrepeat 2\n+1>||||\nend")
	code, out, _ := cli(t, "", "ticks", path)
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	second := strings.Fields(lines[1])
	assert.Equal(t, []string{"2", "5", "strafe"}, second[:3])
	last := strings.Fields(lines[4])
	assert.Equal(t, []string{"5", "7"}, last[:2])
	assert.Equal(t, "-", strings.Fields(lines[0])[2])
}

func TestToolsListsCatalog(t *testing.T) {
	code, out, _ := cli(t, "", "tools")
	require.Equal(t, 0, code)
	for _, name := range []string{"absmov", "autoaim", "autojump", "decel", "setang", "strafe"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "<n>ups")
	assert.Contains(t, out, "continues")
}

func TestUserCatalogIsMerged(t *testing.T) {
	catalog := writeScript(t, "tools.json", `{"tools":[{"name":"cam","description":"Camera control","arguments":[{"name":"fov","type":"unit","unit":"fov"}]}]}`)
	t.Setenv("P2TAS_TOOL_CATALOG", catalog)

	code, out, _ := cli(t, "", "tools")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "cam")
	assert.Contains(t, out, "setang")

	script := writeScript(t, "cam.p2tas", "start now\n+0>||||cam 90fov")
	code, out, _ = cli(t, "", "check", script)
	assert.Equal(t, 0, code, out)
}

func TestBrokenUserCatalogFails(t *testing.T) {
	t.Setenv("P2TAS_TOOL_CATALOG", writeScript(t, "tools.json", `{"tools":[{}]}`))
	code, _, errOut := cli(t, "", "tools")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
}

func TestInvalidConfigFails(t *testing.T) {
	cfg := writeScript(t, "config.yaml", "completion:\n  placeholders: sometimes\n")
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--config", cfg, "version"}, strings.NewReader(""), &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "completion.placeholders")
}

func TestVersion(t *testing.T) {
	code, out, _ := cli(t, "", "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "p2tas "), out)
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := cli(t, "", "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown command")
}

// fakePlugin accepts connections and reports everything each one sent.
func fakePlugin(t *testing.T) <-chan []byte {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	addr := ln.Addr().(*net.TCPAddr)
	t.Setenv("P2TAS_SAR_HOST", "127.0.0.1")
	t.Setenv("P2TAS_SAR_PORT", strconv.Itoa(addr.Port))

	got := make(chan []byte, 8)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			b, _ := io.ReadAll(conn)
			_ = conn.Close()
			got <- b
		}
	}()
	return got
}

func received(t *testing.T, got <-chan []byte) []byte {
	t.Helper()
	select {
	case b := <-got:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("plugin received nothing")
		return nil
	}
}

func TestPlaybackCommands(t *testing.T) {
	got := fakePlugin(t)
	gameDir := t.TempDir()
	t.Setenv("P2TAS_GAME_DIR", gameDir)
	script := filepath.Join(gameDir, "sp", "route.p2tas")

	cases := []struct {
		args []string
		want []byte
	}{
		{[]string{"play", script}, append(append([]byte{0, 0, 0, 0, 8}, "sp/route"...), 0, 0, 0, 0)},
		{[]string{"stop"}, []byte{1}},
		{[]string{"rate", "2"}, []byte{2, 0x40, 0, 0, 0}},
		{[]string{"resume"}, []byte{3}},
		{[]string{"pause"}, []byte{4}},
		{[]string{"ff", "300", "--pause"}, []byte{5, 0, 0, 0x01, 0x2c, 1}},
		{[]string{"pause-at", "16"}, []byte{6, 0, 0, 0, 16}},
		{[]string{"advance"}, []byte{7}},
	}
	for _, tc := range cases {
		t.Run(tc.args[0], func(t *testing.T) {
			code, _, errOut := cli(t, "", tc.args...)
			require.Equal(t, 0, code, errOut)
			assert.Equal(t, tc.want, received(t, got))
		})
	}
}

func TestPlaybackArgumentErrors(t *testing.T) {
	for _, args := range [][]string{
		{"play", "notes.txt"},
		{"rate", "fast"},
		{"rate", "0"},
		{"ff", "-3"},
		{"pause-at", "soon"},
	} {
		code, _, errOut := cli(t, "", args...)
		assert.Equal(t, 1, code, "%v", args)
		assert.Contains(t, errOut, "Error:", "%v", args)
	}
}

func TestPlaybackWithoutPlugin(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	t.Setenv("P2TAS_SAR_HOST", "127.0.0.1")
	t.Setenv("P2TAS_SAR_PORT", strconv.Itoa(port))

	code, _, errOut := cli(t, "", "stop")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "connect to 127.0.0.1:"+strconv.Itoa(port))
}

func TestLSPCommand(t *testing.T) {
	var in bytes.Buffer
	for _, m := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	} {
		_, _ = fmt.Fprintf(&in, "Content-Length: %d\r\n\r\n%s", len(m), m)
	}
	code, out, _ := cli(t, in.String(), "lsp")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"capabilities"`)
	assert.Contains(t, out, `"id":2`)
}

func TestLSPExitWithoutShutdown(t *testing.T) {
	m := `{"jsonrpc":"2.0","method":"exit"}`
	code, _, _ := cli(t, fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(m), m), "lsp")
	assert.Equal(t, 1, code)
}
