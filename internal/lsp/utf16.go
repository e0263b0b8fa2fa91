/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package lsp

import "unicode/utf16"

// toUTF16 converts a byte column of line into UTF-16 code units. Columns past
// the end of the line clamp to its length.
func toUTF16(line string, col int) int {
	if col > len(line) {
		col = len(line)
	}
	if col <= 0 {
		return 0
	}
	n := 0
	for _, r := range line[:col] {
		n += utf16.RuneLen(r)
	}
	return n
}

// fromUTF16 converts a UTF-16 column into a byte column of line.
func fromUTF16(line string, col int) int {
	if col <= 0 {
		return 0
	}
	n := 0
	for i, r := range line {
		if n >= col {
			return i
		}
		n += utf16.RuneLen(r)
	}
	return len(line)
}
