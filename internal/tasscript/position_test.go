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
)

func TestResolvePosition(t *testing.T) {
	spaced := "+0>||||  setang   10    20"
	cases := []struct {
		name string
		text string
		char int
		want Position
	}{
		{"second argument", "+0>||||setang 10 20", 18, Position{Word: "20", Tool: "setang", Args: []string{"10"}}},
		{"extra spacing", spaced, strings.Index(spaced, "20") + 1, Position{Word: "20", Tool: "setang", Args: []string{"10"}}},
		{"third argument", "+0>||||autoaim 1 2 3", 20, Position{Word: "3", Tool: "autoaim", Args: []string{"1", "2"}}},
		{"after tool name", "+0>||||strafe ", 14, Position{Tool: "strafe"}},
		{"inside tool name", "+0>||||strafe vec", 9, Position{Word: "strafe", OnToolName: true}},
		{"tool after semicolon", "+0>||||strafe vec;set", 21, Position{Word: "set", OnToolName: true}},
		{"empty after semicolon", "+0>||||strafe vec;", 18, Position{OnToolName: true}},
		{"start argument", "start sa", 8, Position{Word: "sa", Tool: "start"}},
		{"empty line", "", 0, Position{OnToolName: true}},
		{"offset past end", "+0>||||strafe", 99, Position{Word: "strafe", OnToolName: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolvePosition(tc.text, tc.char)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("ResolvePosition(%q, %d) mismatch (-want +got):\n%s", tc.text, tc.char, diff)
			}
		})
	}
}

// The resolver and the tools field tokenizer must agree on which tool and
// which preceding arguments a word belongs to.
func TestResolvePositionAgreesWithTokenizer(t *testing.T) {
	text := "+0>||||setang 1 2 3 linear; strafe vec 300ups ;autojump on"
	s := Parse("start now\n" + text)
	calls := s.Lines[1].Tools
	if len(calls) != 3 {
		t.Fatalf("expected 3 tool calls, got %+v", calls)
	}
	for _, call := range calls {
		got := ResolvePosition(text, call.Name.Start+1)
		if !got.OnToolName || got.Word != call.Name.Text {
			t.Errorf("tool name %q resolved to %+v", call.Name.Text, got)
		}
		for k, arg := range call.Args {
			got := ResolvePosition(text, arg.Start+1)
			want := Position{Word: arg.Text, Tool: call.Name.Text, Args: wordTexts(call.Args[:k])}
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("argument %q mismatch (-want +got):\n%s", arg.Text, diff)
			}
		}
	}
}
