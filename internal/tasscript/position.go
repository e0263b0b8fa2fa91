/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tasscript

// Position describes what a character offset of a line points at.
type Position struct {
	// Word is the word touching the offset.
	Word string
	// Tool is the tool the offset belongs to when it is on an argument.
	Tool string
	// Args are the argument words between the tool name and the offset, in
	// document order.
	Args []string
	// OnToolName is set when the offset is on the tool name itself.
	OnToolName bool
}

// ResolvePosition finds the tool and argument at char by scanning the line
// outwards from the offset. '|' and ';' end a tool invocation and ' '
// separates words, exactly like the tools field tokenizer.
func ResolvePosition(text string, char int) Position {
	if char < 0 {
		char = 0
	}
	if char > len(text) {
		char = len(text)
	}

	var pos Position
	word := []byte{}
	for i := char; i < len(text) && text[i] != ' ' && text[i] != ';'; i++ {
		word = append(word, text[i])
	}

	var tool []byte
	var args []string
	completedWord := false
	onTool := false
	delimited := false
	for i := char - 1; i >= 0; i-- {
		c := text[i]
		if c == ' ' {
			completedWord = true
			continue
		}
		if c == '|' || c == ';' {
			onTool = len(tool) == 0
			delimited = true
			break
		}
		switch {
		case !completedWord:
			word = append([]byte{c}, word...)
		case text[i+1] == ' ':
			// Last character of a new word: the previous tool candidate
			// turns out to be an argument.
			if len(tool) > 0 {
				args = append(args, string(tool))
			}
			tool = []byte{c}
		default:
			tool = append([]byte{c}, tool...)
		}
	}
	if !delimited {
		onTool = len(tool) == 0
	}

	for l, r := 0, len(args)-1; l < r; l, r = l+1, r-1 {
		args[l], args[r] = args[r], args[l]
	}
	pos.Word = string(word)
	pos.Tool = string(tool)
	pos.Args = args
	pos.OnToolName = onTool
	return pos
}
