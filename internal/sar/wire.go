/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sar

import (
	"encoding/binary"
	"math"
)

// Opcodes of the playback socket. Every message is one opcode byte followed
// by big-endian fields.
const (
	opPlay          byte = 0
	opStop          byte = 1
	opRate          byte = 2
	opResume        byte = 3
	opPause         byte = 4
	opFastForward   byte = 5
	opNextPauseTick byte = 6
	opAdvance       byte = 7
)

// encodePlay builds a play request: [u32 len][path][u32 0]. The trailing slot
// is the second script of a coop pair and stays empty.
func encodePlay(path string) []byte {
	b := make([]byte, 0, 9+len(path))
	b = append(b, opPlay)
	b = binary.BigEndian.AppendUint32(b, uint32(len(path)))
	b = append(b, path...)
	return binary.BigEndian.AppendUint32(b, 0)
}

func encodeRate(rate float32) []byte {
	return binary.BigEndian.AppendUint32([]byte{opRate}, math.Float32bits(rate))
}

func encodeFastForward(tick uint32, pauseAfter bool) []byte {
	b := binary.BigEndian.AppendUint32([]byte{opFastForward}, tick)
	if pauseAfter {
		return append(b, 1)
	}
	return append(b, 0)
}

func encodeNextPauseTick(tick uint32) []byte {
	return binary.BigEndian.AppendUint32([]byte{opNextPauseTick}, tick)
}
