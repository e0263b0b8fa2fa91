/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tools holds the schema of the tools a TAS framebulk can invoke:
// tool names, their typed arguments and how each tool takes part in the
// active-tool state of a script. The catalog is read-only once built.
package tools

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ArgumentType describes what kind of word an argument accepts.
type ArgumentType int

const (
	// Keyword arguments are literal words such as "off" or "vec".
	Keyword ArgumentType = iota
	// Number arguments accept a plain (possibly fractional) number.
	Number
	// Unit arguments accept a number immediately followed by a unit suffix, e.g. "300ups".
	Unit
	// Text arguments accept any word.
	Text
)

func (t ArgumentType) String() string {
	switch t {
	case Keyword:
		return "keyword"
	case Number:
		return "number"
	case Unit:
		return "unit"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("ArgumentType(%d)", int(t))
	}
}

// parseArgumentType is the inverse of ArgumentType.String.
func parseArgumentType(s string) (ArgumentType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keyword":
		return Keyword, true
	case "number":
		return Number, true
	case "unit":
		return Unit, true
	case "text":
		return Text, true
	}
	return Keyword, false
}

// Argument is one entry of a tool's ordered argument list.
type Argument struct {
	Name        string
	Description string
	Type        ArgumentType
	// Matcher must match the whole word. A nil matcher matches the name literally.
	Matcher *regexp.Regexp
	// Unit is the suffix inserted after a Unit argument's value (e.g. "ups").
	Unit string
	// Placeholder arguments stand for a value rather than a word the user
	// would pick from a list (pitch, yaw, tick counts).
	Placeholder bool
	// Duration marks the argument whose value is the number of ticks the
	// tool stays active.
	Duration bool
	// Off marks the argument that switches the tool off.
	Off bool
}

// HasUnit reports whether the argument carries a unit suffix.
func (a Argument) HasUnit() bool { return a.Type == Unit }

// Matches reports whether word is a valid value for the argument.
func (a Argument) Matches(word string) bool {
	if a.Matcher == nil {
		return word == a.Name
	}
	return a.Matcher.MatchString(word)
}

// Tool is a named directive usable in the tools field of a framebulk.
type Tool struct {
	Name        string
	Description string
	Arguments   []Argument
	// Persistent tools stay active after being applied until switched off.
	Persistent bool
	// Continues marks the tool kind that keeps running indefinitely once its
	// timed phase elapses instead of being dropped.
	Continues bool
}

// Argument returns the first argument accepting word, by matcher or by name.
func (t *Tool) Argument(word string) (Argument, bool) {
	for _, a := range t.Arguments {
		if a.Matches(word) || a.Name == word {
			return a, true
		}
	}
	return Argument{}, false
}

// Catalog is a lookup from tool name to its schema.
type Catalog struct {
	byName map[string]*Tool
	names  []string
}

// NewCatalog builds a catalog from the given tools. Later tools replace
// earlier ones with the same name.
func NewCatalog(ts ...Tool) *Catalog {
	c := &Catalog{byName: make(map[string]*Tool, len(ts))}
	for i := range ts {
		t := ts[i]
		c.byName[t.Name] = &t
	}
	c.reindex()
	return c
}

func (c *Catalog) reindex() {
	c.names = c.names[:0]
	for n := range c.byName {
		c.names = append(c.names, n)
	}
	sort.Strings(c.names)
}

// Lookup returns the tool registered under name.
func (c *Catalog) Lookup(name string) (*Tool, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.byName[name]
	return t, ok
}

// Names returns all tool names in lexical order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// Tools returns all tools in lexical order of their names.
func (c *Catalog) Tools() []*Tool {
	if c == nil {
		return nil
	}
	out := make([]*Tool, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n])
	}
	return out
}

// Merge returns a new catalog with the tools of other layered over c.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	m := &Catalog{byName: make(map[string]*Tool)}
	for _, src := range []*Catalog{c, other} {
		if src == nil {
			continue
		}
		for n, t := range src.byName {
			m.byName[n] = t
		}
	}
	m.reindex()
	return m
}

// Describe renders the markdown hover text for a tool.
func Describe(t *Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", t.Name)
	if t.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Description)
	}
	if len(t.Arguments) > 0 {
		b.WriteString("\n\nArguments:")
		for _, a := range t.Arguments {
			fmt.Fprintf(&b, "\n- `%s`", argumentLabel(a))
			if a.Description != "" {
				b.WriteString(": ")
				b.WriteString(a.Description)
			}
		}
	}
	return b.String()
}

// DescribeArgument renders the markdown hover text for one argument of a tool.
func DescribeArgument(t *Tool, a Argument) string {
	s := fmt.Sprintf("**%s** `%s` (%s)", t.Name, argumentLabel(a), a.Type)
	if a.Description != "" {
		s += "\n\n" + a.Description
	}
	return s
}

func argumentLabel(a Argument) string {
	switch {
	case a.HasUnit():
		return "<value>" + a.Unit
	case a.Placeholder:
		return "<" + a.Name + ">"
	default:
		return a.Name
	}
}
