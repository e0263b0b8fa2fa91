/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package sar talks to the game plugin's TAS playback socket.
package sar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"time"

	applog "github.com/Blenderiste09/p2tas-lang/internal/log"
)

// DefaultAddress is where the plugin listens unless configured otherwise.
const DefaultAddress = "localhost:6555"

// ScriptExt is the file extension of TAS scripts.
const ScriptExt = ".p2tas"

var (
	ErrNotConnected   = errors.New("sar: not connected")
	ErrNotTASFile     = errors.New("sar: file is not a TAS script")
	ErrOutsideGameDir = errors.New("sar: file is not inside the game's tas directory")
)

// Option configures a Client.
type Option func(*Client)

// WithDialTimeout bounds how long Connect waits for the socket.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// WithDialer replaces the network dialer.
func WithDialer(dial func(ctx context.Context, network, addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.dial = dial }
}

// Client sends playback commands to the plugin. It is safe for concurrent use.
type Client struct {
	addr        string
	dialTimeout time.Duration
	dial        func(ctx context.Context, network, addr string) (net.Conn, error)
	log         *slog.Logger

	mu   sync.Mutex
	conn net.Conn
	done chan struct{}
}

// NewClient returns an unconnected client for addr.
func NewClient(addr string, opts ...Option) *Client {
	if addr == "" {
		addr = DefaultAddress
	}
	var d net.Dialer
	c := &Client{addr: addr, dialTimeout: 3 * time.Second, dial: d.DialContext, log: applog.WithComponent("sar")}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Connect opens the socket and starts draining incoming data. Connecting an
// already connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	if c.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.dialTimeout)
		defer cancel()
	}
	conn, err := c.dial(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.addr, err)
	}
	c.conn = conn
	c.done = make(chan struct{})
	go c.drain(conn, c.done)
	c.log.Info("connected", slog.String("addr", c.addr))
	return nil
}

// drain consumes what the plugin sends until the connection closes.
func (c *Client) drain(conn net.Conn, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			c.log.Debug("received data", slog.Int("bytes", n))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				c.log.Warn("connection lost", slog.Any("err", err))
			}
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			c.log.Info("disconnected", slog.String("addr", c.addr))
			return
		}
	}
}

// Done is closed when the current connection ends. It is nil before Connect.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close shuts the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) send(op string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	if _, err := c.conn.Write(msg); err != nil {
		return fmt.Errorf("send %s: %w", op, err)
	}
	c.log.Debug("sent", slog.String("op", op), slog.Int("bytes", len(msg)))
	return nil
}

// Play requests playback of a script given as a path relative to the game's
// tas directory, without extension. See PlaybackPath.
func (c *Client) Play(path string) error { return c.send("play", encodePlay(path)) }

func (c *Client) Stop() error { return c.send("stop", []byte{opStop}) }

// SetRate sets the playback speed, 1 being real time.
func (c *Client) SetRate(rate float32) error { return c.send("rate", encodeRate(rate)) }

func (c *Client) Resume() error { return c.send("resume", []byte{opResume}) }

func (c *Client) Pause() error { return c.send("pause", []byte{opPause}) }

// FastForward skips to tick, optionally pausing once it is reached.
func (c *Client) FastForward(tick uint32, pauseAfter bool) error {
	return c.send("fast-forward", encodeFastForward(tick, pauseAfter))
}

// PauseAt pauses playback when tick is reached.
func (c *Client) PauseAt(tick uint32) error {
	return c.send("next-pause-tick", encodeNextPauseTick(tick))
}

// Advance steps a paused playback by one tick.
func (c *Client) Advance() error { return c.send("advance", []byte{opAdvance}) }

// PlaybackPath turns a script file path into the name the plugin expects:
// relative to gameDir when one is known, the bare file name otherwise, with
// forward slashes and without the extension.
func PlaybackPath(scriptPath, gameDir string) (string, error) {
	p := filepath.Base(scriptPath)
	if gameDir != "" {
		abs, err := filepath.Abs(scriptPath)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", scriptPath, err)
		}
		dir, err := filepath.Abs(gameDir)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", gameDir, err)
		}
		rel, err := filepath.Rel(dir, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %s", ErrOutsideGameDir, scriptPath)
		}
		p = filepath.ToSlash(rel)
	}
	name, ok := strings.CutSuffix(p, ScriptExt)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %s", ErrNotTASFile, scriptPath)
	}
	return name, nil
}
