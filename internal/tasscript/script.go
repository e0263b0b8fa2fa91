/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tasscript parses TAS scripts: one statement per line, each
// framebulk tagged with a tick and a '|'-separated set of inputs and tools.
// Parsing resolves the absolute tick and the active tools of every line and
// collects diagnostics; it never fails.
package tasscript

import (
	"log/slog"
	"math"
	"strings"

	applog "github.com/Blenderiste09/p2tas-lang/internal/log"
	"github.com/Blenderiste09/p2tas-lang/internal/tools"
)

// PlaceholderPolicy decides when placeholder arguments (pitch, yaw, tick
// counts) are offered as completions.
type PlaceholderPolicy int

const (
	// PlaceholdersUntilResolved offers placeholders until any non-placeholder
	// argument of the tool has been given.
	PlaceholdersUntilResolved PlaceholderPolicy = iota
	// PlaceholdersHidden never offers placeholders.
	PlaceholdersHidden
)

// Option configures a Parser.
type Option func(*Parser)

// WithPlaceholderPolicy sets how completion treats placeholder arguments.
func WithPlaceholderPolicy(p PlaceholderPolicy) Option {
	return func(ps *Parser) { ps.placeholders = p }
}

// WithLogger sets the logger used for parse summaries.
func WithLogger(l *slog.Logger) Option {
	return func(ps *Parser) { ps.log = l }
}

// Parser turns script text into resolved lines. It holds no per-parse state
// and may be shared between goroutines.
type Parser struct {
	catalog      *tools.Catalog
	placeholders PlaceholderPolicy
	log          *slog.Logger
}

// NewParser returns a parser validating tools against catalog. A nil catalog
// means the builtin one.
func NewParser(catalog *tools.Catalog, opts ...Option) *Parser {
	if catalog == nil {
		catalog = tools.Builtin()
	}
	p := &Parser{catalog: catalog}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = applog.WithComponent("tasscript")
	}
	return p
}

// Catalog returns the tool catalog the parser validates against.
func (p *Parser) Catalog() *tools.Catalog { return p.catalog }

// Script is the result of one parse. It is never modified after Parse returns.
type Script struct {
	// Lines holds one entry per physical line of the input.
	Lines       []Line
	Diagnostics []Diagnostic

	catalog      *tools.Catalog
	placeholders PlaceholderPolicy
}

// Parse parses text with the builtin tool catalog.
func Parse(text string) *Script {
	return NewParser(nil).Parse(text)
}

type loopFrame struct {
	iterations int
	entryTick  int
	line       int
}

// pass is the state of a single left-to-right parse.
type pass struct {
	p         *Parser
	diags     Collector
	lines     []Line
	depth     int
	loops     []loopFrame
	seenStart bool
	prev      int // index of the last non-comment line, -1 if none
}

// Parse resolves every line of text. Both "\n" and "\r\n" separate lines; a
// trailing newline yields a final empty line.
func (p *Parser) Parse(text string) *Script {
	raw := strings.Split(text, "\n")
	ps := &pass{p: p, lines: make([]Line, 0, len(raw)), prev: -1}
	for i, l := range raw {
		ps.line(i, strings.TrimSuffix(l, "\r"))
	}
	for _, f := range ps.loops {
		ps.diags.AddToLine(f.line, firstNonSpace(ps.lines[f.line].Text), "Unterminated loop")
	}

	s := &Script{
		Lines:        ps.lines,
		Diagnostics:  ps.diags.Diagnostics(),
		catalog:      p.catalog,
		placeholders: p.placeholders,
	}
	p.log.Debug("parsed script",
		slog.Int("lines", len(s.Lines)),
		slog.Int("diagnostics", len(s.Diagnostics)),
		slog.Int("unterminated_loops", len(ps.loops)))
	return s
}

func (ps *pass) previous() Line {
	if ps.prev < 0 {
		return commentLine("")
	}
	return ps.lines[ps.prev]
}

func (ps *pass) push(l Line) {
	ps.lines = append(ps.lines, l)
	if l.Kind != KindComment {
		ps.prev = len(ps.lines) - 1
	}
}

// placeholder records a line that does not take part in tick resolution.
func (ps *pass) placeholder(meta Line, prev Line) {
	meta.Kind = KindComment
	meta.Tick = prev.Tick
	meta.ActiveTools = cloneTools(prev.ActiveTools)
	ps.push(meta)
}

func (ps *pass) line(i int, raw string) {
	code, depth, meta := stripComments(raw, i, ps.depth, &ps.diags)
	ps.depth = depth
	prev := ps.previous()

	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		ps.placeholder(meta, prev)
		return
	}

	keyword := firstWord(trimmed)
	if keyword == "start" {
		if ps.seenStart {
			ps.diags.AddToLine(i, 0, "Multiple start lines found")
			ps.placeholder(meta, prev)
			return
		}
		ps.seenStart = true
		l := ps.buildStart(i, raw, code)
		l.mergeComments(meta)
		ps.push(l)
		return
	}
	if !ps.seenStart {
		ps.diags.AddToLine(i, 0, "Expected 'start' statement")
		ps.seenStart = true
	}

	var l Line
	switch keyword {
	case "repeat":
		l = ps.buildRepeat(i, raw, code, prev)
		ps.loops = append(ps.loops, loopFrame{iterations: l.Iterations, entryTick: prev.Tick, line: i})
	case "end":
		if len(ps.loops) == 0 {
			ps.diags.AddToLine(i, 0, "End line outside of loop")
			l = Line{Text: raw, Kind: KindEnd, Tick: prev.Tick, ActiveTools: cloneTools(prev.ActiveTools)}
			break
		}
		l = ps.buildEnd(i, raw, code, prev)
		f := ps.loops[len(ps.loops)-1]
		ps.loops = ps.loops[:len(ps.loops)-1]
		// The body's first pass is already part of the tick; add the rest.
		duration := l.Tick - f.entryTick
		if duration > 0 && f.iterations-1 > (math.MaxInt-l.Tick)/duration {
			ps.diags.AddToLine(i, firstNonSpace(code), "Loop length is out of range")
			l.Tick = math.MaxInt
			break
		}
		l.Tick += (f.iterations - 1) * duration
	default:
		l = ps.buildFramebulk(i, raw, code, prev)
	}
	l.mergeComments(meta)
	ps.push(l)
}
