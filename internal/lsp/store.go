/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package lsp

import (
	"sync"

	"github.com/Blenderiste09/p2tas-lang/internal/tasscript"
)

// Store holds the parsed script of every open document. A script is replaced
// as a whole, so readers always see one complete parse.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*tasscript.Script
}

func NewStore() *Store {
	return &Store{docs: make(map[string]*tasscript.Script)}
}

func (s *Store) Set(uri string, script *tasscript.Script) {
	s.mu.Lock()
	s.docs[uri] = script
	s.mu.Unlock()
}

func (s *Store) Get(uri string) (*tasscript.Script, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	script, ok := s.docs[uri]
	return script, ok
}

func (s *Store) Delete(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
