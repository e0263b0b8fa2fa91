/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tasscript

import "fmt"

// Kind classifies a script line.
type Kind int

const (
	// KindComment covers comment-only and empty lines.
	KindComment Kind = iota
	KindStart
	KindRepeatStart
	KindEnd
	KindFramebulk
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindStart:
		return "start"
	case KindRepeatStart:
		return "repeat"
	case KindEnd:
		return "end"
	case KindFramebulk:
		return "framebulk"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ActiveTool is a tool whose effect carries over to following lines.
type ActiveTool struct {
	Name      string
	StartTick int
	// Remaining is only meaningful when Timed is set.
	Remaining int
	Timed     bool
}

func (a ActiveTool) String() string {
	if a.Timed && a.Remaining > 0 {
		return fmt.Sprintf("%s (%d ticks remaining)", a.Name, a.Remaining)
	}
	return a.Name
}

// Word is a space-delimited token of a line with its byte span.
type Word struct {
	Text  string
	Start int
	End   int
}

// ToolCall is one ';'-separated tool invocation in the tools field.
type ToolCall struct {
	Name Word
	Args []Word
}

// Line is a resolved script line.
type Line struct {
	// Text is the raw line as it appears in the document.
	Text      string
	Kind      Kind
	IsComment bool
	// CommentStart is the column where a trailing comment begins, or -1.
	CommentStart int
	// MultilineCommentEnd is the column of a "*/" on this line, or -1.
	MultilineCommentEnd int
	Tick                int
	ActiveTools         []ActiveTool
	Tools               []ToolCall
	// Iterations is the loop count of a repeat line.
	Iterations int

	commentSpans []span
}

// span is a half-open column range; start -1 means the line began inside a comment.
type span struct{ start, end int }

func commentLine(text string) Line {
	return Line{Text: text, Kind: KindComment, CommentStart: -1, MultilineCommentEnd: -1}
}

// mergeComments copies the comment metadata of meta onto l.
func (l *Line) mergeComments(meta Line) {
	l.IsComment = meta.IsComment
	l.CommentStart = meta.CommentStart
	l.MultilineCommentEnd = meta.MultilineCommentEnd
	l.commentSpans = meta.commentSpans
}

// inComment reports whether a cursor at column col lies inside a comment.
func (l *Line) inComment(col int) bool {
	for _, sp := range l.commentSpans {
		if col > sp.start && col < sp.end {
			return true
		}
	}
	return false
}

func cloneTools(ts []ActiveTool) []ActiveTool {
	if len(ts) == 0 {
		return nil
	}
	return append([]ActiveTool(nil), ts...)
}

// firstWord returns the first word of s as splitWords delimits it.
func firstWord(s string) string {
	words := splitWords(s, 0)
	if len(words) == 0 {
		return ""
	}
	return words[0].Text
}

// splitWords splits s on spaces, keeping byte spans relative to offset.
// Only ' ' separates words, matching the position resolver.
func splitWords(s string, offset int) []Word {
	var out []Word
	start := -1
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if start >= 0 {
				out = append(out, Word{Text: s[start:i], Start: offset + start, End: offset + i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	return out
}
