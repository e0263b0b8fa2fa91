/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// ErrInvalidCatalog is returned when a catalog document does not conform to the catalog schema.
var ErrInvalidCatalog = errors.New("invalid tool catalog")

//go:embed catalog.schema.json
var catalogSchema []byte

type fileCatalog struct {
	Tools []fileTool `json:"tools"`
}

type fileTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Persistent  bool           `json:"persistent"`
	Continues   bool           `json:"continues"`
	Arguments   []fileArgument `json:"arguments"`
}

type fileArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Pattern     string `json:"pattern"`
	Unit        string `json:"unit"`
	Placeholder bool   `json:"placeholder"`
	Duration    bool   `json:"duration"`
	Off         bool   `json:"off"`
}

// LoadFile reads a JSON catalog from path. See Parse.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tool catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse validates data against the catalog schema and builds a catalog from it.
// Unit arguments without a pattern get one derived from their unit suffix.
func Parse(data []byte) (*Catalog, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(catalogSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
	}

	var fc fileCatalog
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	ts := make([]Tool, 0, len(fc.Tools))
	for _, ft := range fc.Tools {
		t := Tool{Name: ft.Name, Description: ft.Description, Persistent: ft.Persistent, Continues: ft.Continues}
		for _, fa := range ft.Arguments {
			a, err := fa.compile()
			if err != nil {
				return nil, fmt.Errorf("%w: tool %q: %v", ErrInvalidCatalog, ft.Name, err)
			}
			t.Arguments = append(t.Arguments, a)
		}
		ts = append(ts, t)
	}
	return NewCatalog(ts...), nil
}

func (fa fileArgument) compile() (Argument, error) {
	typ, ok := parseArgumentType(fa.Type)
	if !ok {
		return Argument{}, fmt.Errorf("argument %q: unknown type %q", fa.Name, fa.Type)
	}
	a := Argument{
		Name:        fa.Name,
		Description: fa.Description,
		Type:        typ,
		Unit:        fa.Unit,
		Placeholder: fa.Placeholder,
		Duration:    fa.Duration,
		Off:         fa.Off,
	}
	pattern := fa.Pattern
	switch {
	case pattern != "":
	case typ == Number && fa.Duration:
		pattern = integerRe.String()
	case typ == Number:
		pattern = numberRe.String()
	case typ == Unit:
		if fa.Unit == "" {
			return Argument{}, fmt.Errorf("argument %q: unit arguments need a unit", fa.Name)
		}
		pattern = `^-?\d+(\.\d+)?` + regexp.QuoteMeta(fa.Unit) + `$`
	case typ == Text:
		pattern = `^\S+$`
	}
	if pattern != "" {
		if !strings.HasPrefix(pattern, "^") {
			pattern = "^(?:" + pattern + ")$"
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Argument{}, fmt.Errorf("argument %q: %v", fa.Name, err)
		}
		a.Matcher = re
	}
	return a, nil
}
