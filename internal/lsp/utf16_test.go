/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Blenderiste09/p2tas-lang/internal/tasscript"
)

func TestUTF16Conversion(t *testing.T) {
	line := "aé😀b" // 1, 2, 4 and 1 bytes; 1, 1, 2 and 1 code units
	for byteCol, want := range map[int]int{0: 0, 1: 1, 3: 2, 7: 4, 8: 5, tasscript.EndOfLine: 5} {
		assert.Equal(t, want, toUTF16(line, byteCol), "toUTF16(%d)", byteCol)
	}
	for u16, want := range map[int]int{0: 0, 1: 1, 2: 3, 4: 7, 5: 8, 99: 8} {
		assert.Equal(t, want, fromUTF16(line, u16), "fromUTF16(%d)", u16)
	}
}

func TestUTF16ASCIIIsIdentity(t *testing.T) {
	line := "+10>||||setang 1 2"
	for i := 0; i <= len(line); i++ {
		assert.Equal(t, i, toUTF16(line, i))
		assert.Equal(t, i, fromUTF16(line, i))
	}
}
