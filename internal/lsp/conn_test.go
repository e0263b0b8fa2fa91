/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package lsp

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewConn(nil, &buf)
	require.NoError(t, w.Write(map[string]any{"jsonrpc": "2.0", "method": "ping"}))
	require.NoError(t, w.Write(map[string]any{"jsonrpc": "2.0", "id": 1}))

	r := NewConn(&buf, nil)
	first, err := r.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"ping"}`, string(first))
	second, err := r.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1}`, string(second))

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConnIgnoresOtherHeaders(t *testing.T) {
	in := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\ncontent-length: 2\r\n\r\n{}"
	body, err := NewConn(strings.NewReader(in), nil).Read()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
}

func TestConnMissingContentLength(t *testing.T) {
	_, err := NewConn(strings.NewReader("X-Other: 1\r\n\r\n{}"), nil).Read()
	assert.True(t, errors.Is(err, ErrMissingContentLength), "got %v", err)
}

func TestConnTruncatedBody(t *testing.T) {
	_, err := NewConn(strings.NewReader("Content-Length: 10\r\n\r\n{}"), nil).Read()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingContentLength)
}
