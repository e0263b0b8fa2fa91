/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tasscript

import "strings"

// stripComments removes the comments of one raw line and returns the code
// text, the multi-line comment depth after the line, and a comment line
// describing what was stripped.
//
// Inline /* ... */ spans are replaced by spaces so column positions in the
// returned text still line up with the raw line. Trailing comments (// or an
// unclosed /*) are cut off.
func stripComments(raw string, index, depth int, c *Collector) (string, int, Line) {
	meta := commentLine(raw)
	code := []byte(raw)
	cut := len(raw)
	reachedCode := depth == 0
	openAt := -1 // column of the "/*" that opened the current comment on this line
	from := -1
	if depth > 0 {
		meta.IsComment = true
	}

	blank := func(from, to int) {
		for j := from; j < to && j < len(code); j++ {
			code[j] = ' '
		}
	}

	for i := 0; i < len(raw); {
		switch {
		case depth > 0 && strings.HasPrefix(raw[i:], "/*"):
			depth++
			blank(i, i+2)
			i += 2
		case depth > 0 && strings.HasPrefix(raw[i:], "*/"):
			depth--
			meta.MultilineCommentEnd = i
			blank(i, i+2)
			i += 2
			if depth == 0 {
				meta.commentSpans = append(meta.commentSpans, span{from, i})
				openAt = -1
				reachedCode = true
			}
		case depth > 0:
			code[i] = ' '
			i++
		case strings.HasPrefix(raw[i:], "//"):
			meta.IsComment = true
			meta.CommentStart = i
			meta.commentSpans = append(meta.commentSpans, span{i, EndOfLine})
			cut = i
			i = len(raw)
		case strings.HasPrefix(raw[i:], "/*"):
			depth++
			meta.IsComment = true
			openAt, from = i, i
			blank(i, i+2)
			i += 2
		case strings.HasPrefix(raw[i:], "*/"):
			c.Add(index, i, i+2, "Comment was never opened!")
			i += 2
		default:
			i++
		}
	}

	if depth > 0 {
		meta.commentSpans = append(meta.commentSpans, span{from, EndOfLine})
	}
	if !reachedCode {
		// The whole line lies inside a multi-line comment.
		meta.CommentStart = 0
		return "", depth, meta
	}
	if openAt >= 0 {
		meta.CommentStart = openAt
		cut = openAt
	}
	return string(code[:cut]), depth, meta
}
