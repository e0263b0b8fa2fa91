/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tasscript

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Blenderiste09/p2tas-lang/internal/tools"
)

func labels(cs []Completion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Label
	}
	return out
}

func completionsAt(text string, line, char int) []string {
	return labels(Parse(text).CompletionsAt(line, char))
}

func TestCompletions(t *testing.T) {
	cases := []struct {
		name string
		text string
		line int
		char int
		want []string
	}{
		{"tools after pipe", "start now\n+0>||||", 1, 7, []string{"absmov", "autoaim", "autojump", "decel", "setang", "strafe"}},
		{"tools after semicolon", "start now\n+0>||||strafe vec;", 1, 18, []string{"absmov", "autoaim", "autojump", "decel", "setang", "strafe"}},
		{"before last pipe", "start now\n+0>||||", 1, 5, nil},
		{"strafe arguments", "start now\n+0>||||strafe ", 1, 14, []string{
			"vec", "ang", "veccam", "max", "keep", "ups", "deg", "forward", "forwardvel", "left", "right", "nopitchlock", "off",
		}},
		{"strafe without given", "start now\n+0>||||strafe vec 30ups ", 1, 24, []string{
			"ang", "veccam", "max", "keep", "deg", "forward", "forwardvel", "left", "right", "nopitchlock", "off",
		}},
		{"setang placeholders", "start now\n+0>||||setang ", 1, 14, []string{"pitch", "yaw", "ticks", "linear", "sine", "cubic", "exp"}},
		{"setang after pitch", "start now\n+0>||||setang 10 ", 1, 17, []string{"yaw", "ticks", "linear", "sine", "cubic", "exp"}},
		{"setang resolved", "start now\n+0>||||setang 10 linear ", 1, 24, []string{"sine", "cubic", "exp"}},
		{"unknown tool", "start now\n+0>||||bogus ", 1, 13, nil},
		{"keywords on first line", "", 0, 0, []string{"start", "repeat", "end"}},
		{"keywords later", "start now\n", 1, 0, []string{"repeat", "end"}},
		{"start types", "start ", 0, 6, []string{"now", "save", "map", "cm", "next"}},
		{"start type given", "start now ", 0, 10, nil},
		{"inside comment", "start now\n+0>|||| // strafe ", 1, 18, nil},
		{"inside block comment", "start now\n+0>||||/* strafe */", 1, 12, nil},
		{"line out of range", "start now", 5, 0, nil},
		{"char out of range", "start now\n+0>||||", 1, 99, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := completionsAt(tc.text, tc.line, tc.char)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("completions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompletionsHiddenPlaceholders(t *testing.T) {
	s := NewParser(nil, WithPlaceholderPolicy(PlaceholdersHidden)).Parse("start now\n+0>||||setang ")
	if diff := cmp.Diff([]string{"linear", "sine", "cubic", "exp"}, labels(s.CompletionsAt(1, 14))); diff != "" {
		t.Fatalf("completions mismatch (-want +got):\n%s", diff)
	}
}

func TestUnitCompletionIsSnippet(t *testing.T) {
	s := Parse("start now\n+0>||||decel ")
	got := s.CompletionsAt(1, 13)
	want := []Completion{
		{Label: "ups", Kind: CompletionArgument, Documentation: "Target speed in units per second.", InsertText: "$1ups", Snippet: true},
		{Label: "off", Kind: CompletionArgument, Documentation: "Stops decelerating."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("completions mismatch (-want +got):\n%s", diff)
	}
}

func TestCompletionsUseCustomCatalog(t *testing.T) {
	catalog := tools.NewCatalog(tools.Tool{Name: "cmd", Arguments: []tools.Argument{{Name: "now", Type: tools.Keyword}}})
	s := NewParser(catalog).Parse("start now\n+0>||||")
	if diff := cmp.Diff([]string{"cmd"}, labels(s.CompletionsAt(1, 7))); diff != "" {
		t.Fatalf("completions mismatch (-want +got):\n%s", diff)
	}
	if s.Catalog() != catalog {
		t.Fatalf("script should keep the parser catalog")
	}
}

func TestHover(t *testing.T) {
	text := strings.Join([]string{
		"start now",
		"+10>||||setang 1 2",
		"repeat 3",
		"+1>||||",
		"end",
		"+0>||||strafe 300ups // fast",
		"// c",
	}, "\n")
	s := Parse(text)
	catalog := tools.Builtin()
	setang, _ := catalog.Lookup("setang")
	strafe, _ := catalog.Lookup("strafe")
	pitch, _ := setang.Argument("pitch")
	ups, _ := strafe.Argument("300ups")

	cases := []struct {
		name string
		line int
		char int
		want []string
	}{
		{"tick", 1, 1, []string{"Tick: 10"}},
		{"tool", 1, 10, []string{tools.Describe(setang)}},
		{"argument", 1, 16, []string{tools.DescribeArgument(setang, pitch)}},
		{"repeat", 2, 0, []string{"Tick: 10", "Repeats 3 times"}},
		{"end", 4, 1, []string{"Tick: 13"}},
		{"unit argument", 5, 16, []string{tools.DescribeArgument(strafe, ups)}},
		{"start line", 0, 2, nil},
		{"comment line", 6, 2, nil},
		{"inputs", 3, 5, nil},
		{"trailing comment", 5, 25, nil},
		{"out of range", 9, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, ok := s.HoverAt(tc.line, tc.char)
			if ok != (tc.want != nil) {
				t.Fatalf("HoverAt ok = %v, want %v", ok, tc.want != nil)
			}
			if diff := cmp.Diff(tc.want, h.Contents, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("hover mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestActiveToolsAt(t *testing.T) {
	s := Parse("start now\n+0>||||setang 1 2 5;strafe vec")
	if diff := cmp.Diff([]string{"setang (5 ticks remaining)", "strafe"}, s.ActiveToolsAt(1)); diff != "" {
		t.Fatalf("active tools mismatch (-want +got):\n%s", diff)
	}
	if got := s.ActiveToolsAt(7); got != nil {
		t.Fatalf("out of range line should have no tools, got %v", got)
	}
}

func TestTickAt(t *testing.T) {
	s := Parse("start now\n+3>||||")
	if tick, ok := s.TickAt(1); !ok || tick != 3 {
		t.Fatalf("TickAt(1) = %d, %v", tick, ok)
	}
	if _, ok := s.TickAt(2); ok {
		t.Fatalf("TickAt beyond the last line should fail")
	}
}
