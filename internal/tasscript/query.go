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
	"strings"

	"github.com/Blenderiste09/p2tas-lang/internal/tools"
)

// CompletionKind tells editors how to present a completion.
type CompletionKind int

const (
	CompletionKeyword CompletionKind = iota
	CompletionTool
	CompletionArgument
)

// Completion is one suggestion at a position.
type Completion struct {
	Label         string
	Kind          CompletionKind
	Documentation string
	// InsertText, when set, replaces Label on insertion. Snippet marks it as
	// a snippet with tab stops.
	InsertText string
	Snippet    bool
}

// Hover is the markdown shown for a position.
type Hover struct {
	Contents []string
}

var keywordCompletions = []Completion{
	{Label: "start", Kind: CompletionKeyword, Documentation: "Begins the script. Must be the first statement."},
	{Label: "repeat", Kind: CompletionKeyword, Documentation: "Repeats the following lines up to the matching `end` the given number of times."},
	{Label: "end", Kind: CompletionKeyword, Documentation: "Closes the innermost `repeat` block."},
}

// LineCount returns the number of resolved lines.
func (s *Script) LineCount() int { return len(s.Lines) }

// Catalog returns the tool catalog the script was validated against.
func (s *Script) Catalog() *tools.Catalog { return s.catalog }

func (s *Script) lineAt(i int) (*Line, bool) {
	if s == nil || i < 0 || i >= len(s.Lines) {
		return nil, false
	}
	return &s.Lines[i], true
}

// TickAt returns the absolute tick of a line.
func (s *Script) TickAt(line int) (int, bool) {
	l, ok := s.lineAt(line)
	if !ok {
		return 0, false
	}
	return l.Tick, true
}

// ActiveToolsAt returns the tools in effect on a line, formatted as the tool
// name plus the remaining tick count for timed tools.
func (s *Script) ActiveToolsAt(line int) []string {
	l, ok := s.lineAt(line)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l.ActiveTools))
	for _, t := range l.ActiveTools {
		out = append(out, t.String())
	}
	return out
}

// isFirstCodeLine reports whether no statement precedes line.
func (s *Script) isFirstCodeLine(line int) bool {
	for j := 0; j < line; j++ {
		if s.Lines[j].Kind != KindComment {
			return false
		}
	}
	return true
}

// CompletionsAt returns the completions for a cursor at char on line.
func (s *Script) CompletionsAt(line, char int) []Completion {
	l, ok := s.lineAt(line)
	if !ok || char < 0 || char > len(l.Text) || l.inComment(char) {
		return nil
	}
	first := s.isFirstCodeLine(line)
	if !first && char <= strings.LastIndexByte(l.Text, '|') {
		return nil
	}

	pos := ResolvePosition(l.Text, char)
	if pos.OnToolName {
		if char == 0 {
			var out []Completion
			for _, c := range keywordCompletions {
				if c.Label == "start" && !first {
					continue
				}
				out = append(out, c)
			}
			return out
		}
		out := make([]Completion, 0, len(s.catalog.Names()))
		for _, t := range s.catalog.Tools() {
			out = append(out, Completion{Label: t.Name, Kind: CompletionTool, Documentation: t.Description})
		}
		return out
	}

	if pos.Tool == "start" {
		if !first || len(pos.Args) != 0 {
			return nil
		}
		out := make([]Completion, 0, len(tools.StartTypes))
		for _, st := range tools.StartTypes {
			out = append(out, Completion{Label: st.Name, Kind: CompletionKeyword, Documentation: st.Description})
		}
		return out
	}

	// Unknown tools already carry a diagnostic; there is nothing to offer.
	tool, ok := s.catalog.Lookup(pos.Tool)
	if !ok {
		return nil
	}
	return s.argumentCompletions(tool, pos.Args)
}

func (s *Script) argumentCompletions(tool *tools.Tool, given []string) []Completion {
	used := make([]bool, len(tool.Arguments))
	resolved := false
	for _, idx := range assignArguments(tool, given) {
		if idx < 0 {
			continue
		}
		used[idx] = true
		if !tool.Arguments[idx].Placeholder {
			resolved = true
		}
	}
	hidePlaceholders := s.placeholders == PlaceholdersHidden || resolved

	var out []Completion
	for j, a := range tool.Arguments {
		if used[j] || (a.Placeholder && hidePlaceholders) {
			continue
		}
		c := Completion{Label: a.Name, Kind: CompletionArgument, Documentation: a.Description}
		if a.HasUnit() {
			c.InsertText = "$1" + a.Unit
			c.Snippet = true
		}
		out = append(out, c)
	}
	return out
}

// HoverAt returns hover information for a cursor at char on line.
func (s *Script) HoverAt(line, char int) (Hover, bool) {
	l, ok := s.lineAt(line)
	if !ok || char < 0 || char > len(l.Text) || l.inComment(char) {
		return Hover{}, false
	}

	switch l.Kind {
	case KindRepeatStart:
		return Hover{Contents: []string{fmt.Sprintf("Tick: %d", l.Tick), fmt.Sprintf("Repeats %d times", l.Iterations)}}, true
	case KindEnd:
		return Hover{Contents: []string{fmt.Sprintf("Tick: %d", l.Tick)}}, true
	case KindFramebulk:
	default:
		return Hover{}, false
	}

	if gt := strings.IndexByte(l.Text, '>'); gt >= 0 && char < gt {
		return Hover{Contents: []string{fmt.Sprintf("Tick: %d", l.Tick)}}, true
	}
	if strings.Count(l.Text, "|") != framebulkFields-1 || char <= strings.LastIndexByte(l.Text, '|') {
		return Hover{}, false
	}

	pos := ResolvePosition(l.Text, char)
	if pos.OnToolName {
		tool, ok := s.catalog.Lookup(pos.Word)
		if !ok {
			return Hover{}, false
		}
		return Hover{Contents: []string{tools.Describe(tool)}}, true
	}
	tool, ok := s.catalog.Lookup(pos.Tool)
	if !ok {
		return Hover{}, false
	}
	arg, ok := tool.Argument(pos.Word)
	if !ok {
		return Hover{}, false
	}
	return Hover{Contents: []string{tools.DescribeArgument(tool, arg)}}, true
}
