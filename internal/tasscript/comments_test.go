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
)

func TestStripComments(t *testing.T) {
	cases := []struct {
		name         string
		raw          string
		depth        int
		code         string
		wantDepth    int
		isComment    bool
		commentStart int
		mlEnd        int
		diags        int
	}{
		{name: "no comment", raw: "+1>||||", code: "+1>||||", commentStart: -1, mlEnd: -1},
		{name: "trailing single line", raw: "+1>|||| // hi", code: "+1>|||| ", isComment: true, commentStart: 8, mlEnd: -1},
		{name: "single line only", raw: "// only", code: "", isComment: true, commentStart: 0, mlEnd: -1},
		{name: "inline block", raw: "+1>/* x */||||", code: "+1>       ||||", isComment: true, commentStart: -1, mlEnd: 8},
		{name: "block opens", raw: "+1>|||| /* open", code: "+1>|||| ", wantDepth: 1, isComment: true, commentStart: 8, mlEnd: -1},
		{name: "block continues", raw: "still comment", depth: 1, code: "", wantDepth: 1, isComment: true, commentStart: 0, mlEnd: -1},
		{name: "block closes", raw: "end */+1>||||", depth: 1, code: "      +1>||||", isComment: true, commentStart: -1, mlEnd: 4},
		{name: "never opened", raw: "*/ +1>||||", code: "*/ +1>||||", commentStart: -1, mlEnd: -1, diags: 1},
		{name: "slashes inside block", raw: "/* http://x */ +1>||||", code: strings.Repeat(" ", 15) + "+1>||||", isComment: true, commentStart: -1, mlEnd: 12},
		{name: "nested open", raw: "a /* b /* c */ d", code: "a ", wantDepth: 1, isComment: true, commentStart: 2, mlEnd: 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Collector
			code, depth, meta := stripComments(tc.raw, 0, tc.depth, &c)
			if code != tc.code {
				t.Fatalf("code = %q, want %q", code, tc.code)
			}
			if depth != tc.wantDepth {
				t.Fatalf("depth = %d, want %d", depth, tc.wantDepth)
			}
			if meta.IsComment != tc.isComment || meta.CommentStart != tc.commentStart || meta.MultilineCommentEnd != tc.mlEnd {
				t.Fatalf("meta = {IsComment:%v CommentStart:%d MultilineCommentEnd:%d}, want {%v %d %d}",
					meta.IsComment, meta.CommentStart, meta.MultilineCommentEnd, tc.isComment, tc.commentStart, tc.mlEnd)
			}
			if meta.Text != tc.raw {
				t.Fatalf("meta text = %q, want raw line", meta.Text)
			}
			if got := len(c.Diagnostics()); got != tc.diags {
				t.Fatalf("diagnostics = %d, want %d", got, tc.diags)
			}
		})
	}
}

func TestStripCommentsNeverOpenedSpan(t *testing.T) {
	var c Collector
	stripComments("+1>|||| */", 3, 0, &c)
	d := c.Diagnostics()
	if len(d) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", d)
	}
	if d[0].Line != 3 || d[0].Start != 8 || d[0].End != 10 || d[0].Message != "Comment was never opened!" {
		t.Fatalf("unexpected diagnostic %+v", d[0])
	}
}

func TestStripCommentsRoundTrip(t *testing.T) {
	for _, raw := range []string{"", "start now", "  +10>1 0|0 90|J|sv_cheats 1|setang 0 0 5", "repeat 3", "end"} {
		var c Collector
		code, depth, meta := stripComments(raw, 0, 0, &c)
		if code != raw || depth != 0 || meta.IsComment {
			t.Fatalf("stripComments(%q) = %q, %d, IsComment=%v", raw, code, depth, meta.IsComment)
		}
	}
}

func TestLineInComment(t *testing.T) {
	var c Collector
	_, _, meta := stripComments("+1>/* x */|||| // tail", 0, 0, &c)
	for col, want := range map[int]bool{2: false, 3: false, 5: true, 10: false, 12: false, 15: false, 16: true, 20: true} {
		if got := meta.inComment(col); got != want {
			t.Fatalf("inComment(%d) = %v, want %v", col, got, want)
		}
	}
	_, _, full := stripComments("inside", 0, 1, &c)
	if !full.inComment(0) || !full.inComment(6) {
		t.Fatalf("line inside a block comment should be comment at every column")
	}
}
