/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tasscript

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Blenderiste09/p2tas-lang/internal/tools"
)

// framebulkFields is the number of '|'-separated fields of a framebulk:
// movement, angles, buttons, commands and tools.
const framebulkFields = 5

var buttonsRe = regexp.MustCompile(`^(?:[A-Za-z]\d*)+$`)

func (ps *pass) buildStart(i int, raw, code string) Line {
	line := Line{Text: raw, Kind: KindStart}
	words := splitWords(code, 0)
	if len(words) < 2 {
		ps.diags.AddToLine(i, words[0].End, "Expected start type (now, save, map, cm or next)")
		return line
	}
	ps.checkStartArgs(i, words[1:], true)
	return line
}

// checkStartArgs validates "<type> [args]" following the start keyword.
func (ps *pass) checkStartArgs(i int, ws []Word, allowNext bool) {
	st, ok := tools.LookupStartType(ws[0].Text)
	if !ok || (st.Name == "next" && !allowNext) {
		ps.diags.Add(i, ws[0].Start, ws[0].End, fmt.Sprintf("Unknown start type '%s'", ws[0].Text))
		return
	}
	rest := ws[1:]
	switch {
	case st.Arguments < 0:
		if len(rest) > 0 {
			ps.checkStartArgs(i, rest, false)
		}
	case len(rest) < st.Arguments:
		ps.diags.AddToLine(i, ws[0].End, fmt.Sprintf("Expected %s name after 'start %s'", st.Name, st.Name))
	case len(rest) > st.Arguments:
		extra := rest[st.Arguments:]
		ps.diags.Add(i, extra[0].Start, extra[len(extra)-1].End, "Unexpected arguments after start type")
	}
}

func (ps *pass) buildRepeat(i int, raw, code string, prev Line) Line {
	line := Line{Text: raw, Kind: KindRepeatStart, Tick: prev.Tick, ActiveTools: cloneTools(prev.ActiveTools), Iterations: 1}
	words := splitWords(code, 0)
	if len(words) < 2 {
		return line
	}
	w := words[1]
	n, err := strconv.Atoi(w.Text)
	switch {
	case err != nil:
		ps.diags.Add(i, w.Start, w.End, fmt.Sprintf("Invalid iteration count '%s'", w.Text))
	case n < 1:
		ps.diags.Add(i, w.Start, w.End, "Iteration count must be at least 1")
	default:
		line.Iterations = n
	}
	if len(words) > 2 {
		ps.diags.Add(i, words[2].Start, words[len(words)-1].End, "Unexpected arguments after iteration count")
	}
	return line
}

func (ps *pass) buildEnd(i int, raw, code string, prev Line) Line {
	line := Line{Text: raw, Kind: KindEnd, Tick: prev.Tick, ActiveTools: cloneTools(prev.ActiveTools)}
	if words := splitWords(code, 0); len(words) > 1 {
		ps.diags.Add(i, words[1].Start, words[len(words)-1].End, "Unexpected arguments after 'end'")
	}
	return line
}

func (ps *pass) buildFramebulk(i int, raw, code string, prev Line) Line {
	line := Line{Text: raw, Kind: KindFramebulk, Tick: prev.Tick}
	inherited := cloneTools(prev.ActiveTools)

	gt := strings.IndexByte(code, '>')
	if gt < 0 {
		ps.diags.AddToLine(i, firstNonSpace(code), "Expected '>' after the tick")
		line.ActiveTools = inherited
		return line
	}

	base := prev.Tick
	if prev.Kind == KindStart {
		base = 0
	}
	line.Tick = ps.resolveTick(i, code[:gt], prev.Tick, base)
	line.ActiveTools = ps.advanceTools(inherited, line.Tick-base)

	fields := splitFields(code, gt+1)
	if len(fields) > framebulkFields {
		extra := fields[framebulkFields]
		ps.diags.AddToLine(i, extra.Start-1, fmt.Sprintf("Too many '|' separators, expected at most %d", framebulkFields-1))
	}
	if len(fields) > 0 {
		ps.checkNumbers(i, fields[0], "movement")
	}
	if len(fields) > 1 {
		ps.checkNumbers(i, fields[1], "view angle")
	}
	if len(fields) > 2 {
		for _, w := range splitWords(fields[2].Text, fields[2].Start) {
			if !buttonsRe.MatchString(w.Text) {
				ps.diags.Add(i, w.Start, w.End, fmt.Sprintf("Invalid buttons '%s'", w.Text))
			}
		}
	}
	if len(fields) > 4 {
		line.Tools = parseToolCalls(fields[4].Text, fields[4].Start)
		line.ActiveTools = ps.applyTools(i, line.Tools, line.Tick, line.ActiveTools)
	}
	return line
}

// resolveTick parses the tick field. Invalid ticks fall back to the previous
// tick so the tick sequence never decreases.
func (ps *pass) resolveTick(i int, field string, prevTick, base int) int {
	t := strings.TrimSpace(field)
	col := firstNonSpace(field)
	end := col + len(t)
	if t == "" {
		ps.diags.Add(i, 0, len(field)+1, "Expected a tick before '>'")
		return prevTick
	}
	if rel, ok := strings.CutPrefix(t, "+"); ok {
		if !isDigits(rel) {
			ps.diags.Add(i, col, end, fmt.Sprintf("Invalid relative tick '%s'", t))
			return prevTick
		}
		n, err := strconv.Atoi(rel)
		if err != nil || n > math.MaxInt-base {
			ps.diags.Add(i, col, end, fmt.Sprintf("Tick '%s' is out of range", t))
			return prevTick
		}
		return base + n
	}
	if !isDigits(t) {
		ps.diags.Add(i, col, end, fmt.Sprintf("Invalid tick '%s'", t))
		return prevTick
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		ps.diags.Add(i, col, end, fmt.Sprintf("Tick '%s' is out of range", t))
		return prevTick
	}
	if n < prevTick {
		ps.diags.Add(i, col, end, fmt.Sprintf("Tick %d is lower than the previous tick %d", n, prevTick))
		return prevTick
	}
	if len(ps.loops) > 0 {
		ps.diags.AddWithSeverity(i, col, end, SeverityWarning, "Absolute tick inside a loop, use a relative tick")
	}
	return n
}

func (ps *pass) checkNumbers(i int, f Word, what string) {
	words := splitWords(f.Text, f.Start)
	if len(words) > 2 {
		ps.diags.Add(i, words[2].Start, words[len(words)-1].End, fmt.Sprintf("Expected at most two %s values", what))
	}
	for _, w := range words {
		if _, err := strconv.ParseFloat(w.Text, 64); err != nil {
			ps.diags.Add(i, w.Start, w.End, fmt.Sprintf("Invalid %s value '%s'", what, w.Text))
		}
	}
}

// advanceTools ages the inherited timed tools by delta ticks. Expired tools
// are dropped, except continuing tools which lose their timer and stay.
func (ps *pass) advanceTools(ts []ActiveTool, delta int) []ActiveTool {
	out := ts[:0]
	for _, t := range ts {
		if !t.Timed {
			out = append(out, t)
			continue
		}
		t.Remaining -= delta
		if t.Remaining > 0 {
			out = append(out, t)
			continue
		}
		if tool, ok := ps.p.catalog.Lookup(t.Name); ok && tool.Continues {
			t.Timed, t.Remaining, t.StartTick = false, 0, 0
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// applyTools validates the tool calls of a line and updates the active set.
func (ps *pass) applyTools(i int, calls []ToolCall, tick int, active []ActiveTool) []ActiveTool {
	for _, call := range calls {
		tool, ok := ps.p.catalog.Lookup(call.Name.Text)
		if !ok {
			ps.diags.Add(i, call.Name.Start, call.Name.End, fmt.Sprintf("Unknown tool '%s'", call.Name.Text))
			continue
		}
		duration, off := 0, false
		for k, idx := range assignArguments(tool, wordTexts(call.Args)) {
			w := call.Args[k]
			switch {
			case idx == argInvalid:
				ps.diags.Add(i, w.Start, w.End, fmt.Sprintf("Invalid argument '%s' for tool '%s'", w.Text, tool.Name))
			case idx == argRepeated:
				ps.diags.Add(i, w.Start, w.End, fmt.Sprintf("Argument '%s' was already given for tool '%s'", w.Text, tool.Name))
			case tool.Arguments[idx].Off:
				off = true
			case tool.Arguments[idx].Duration:
				n, err := strconv.Atoi(w.Text)
				if err != nil || n < 0 {
					ps.diags.Add(i, w.Start, w.End, fmt.Sprintf("Invalid tick count '%s'", w.Text))
					continue
				}
				duration = n
			}
		}
		active = activate(active, tool, tick, off, duration)
	}
	return active
}

const (
	argInvalid  = -1
	argRepeated = -2
)

// assignArguments maps each word to the first unused argument of tool that
// accepts it. Words matching only already used arguments yield argRepeated,
// words matching nothing argInvalid. Completion relies on the same
// assignment to decide which arguments were already given.
func assignArguments(tool *tools.Tool, words []string) []int {
	used := make([]bool, len(tool.Arguments))
	out := make([]int, len(words))
	for k, w := range words {
		out[k] = argInvalid
		for j, a := range tool.Arguments {
			if !a.Matches(w) {
				continue
			}
			if used[j] {
				out[k] = argRepeated
				continue
			}
			used[j] = true
			out[k] = j
			break
		}
	}
	return out
}

// activate applies one tool call to the active set. The set keeps the order
// in which tools were first activated.
func activate(active []ActiveTool, tool *tools.Tool, tick int, off bool, duration int) []ActiveTool {
	idx := -1
	for k, a := range active {
		if a.Name == tool.Name {
			idx = k
			break
		}
	}
	var entry ActiveTool
	switch {
	case off:
	case duration > 0:
		entry = ActiveTool{Name: tool.Name, StartTick: tick, Remaining: duration, Timed: true}
	case tool.Persistent || tool.Continues:
		entry = ActiveTool{Name: tool.Name, StartTick: tick}
	}
	switch {
	case entry.Name == "" && idx >= 0:
		return append(active[:idx:idx], active[idx+1:]...)
	case entry.Name == "":
		return active
	case idx >= 0:
		active[idx] = entry
		return active
	default:
		return append(active, entry)
	}
}

// splitFields splits s[from:] on '|' keeping byte offsets into s.
func splitFields(s string, from int) []Word {
	var out []Word
	start := from
	for i := from; i <= len(s); i++ {
		if i == len(s) || s[i] == '|' {
			out = append(out, Word{Text: s[start:i], Start: start, End: i})
			start = i + 1
		}
	}
	return out
}

// parseToolCalls tokenizes the tools field: ';' separates calls, ' '
// separates the tool name and its arguments.
func parseToolCalls(field string, offset int) []ToolCall {
	var calls []ToolCall
	start := 0
	for i := 0; i <= len(field); i++ {
		if i < len(field) && field[i] != ';' {
			continue
		}
		if words := splitWords(field[start:i], offset+start); len(words) > 0 {
			calls = append(calls, ToolCall{Name: words[0], Args: words[1:]})
		}
		start = i + 1
	}
	return calls
}

func wordTexts(ws []Word) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Text
	}
	return out
}

func firstNonSpace(s string) int {
	if i := strings.IndexFunc(s, func(r rune) bool { return r != ' ' && r != '\t' }); i >= 0 {
		return i
	}
	return 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
