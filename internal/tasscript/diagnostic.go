/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tasscript

import "math"

// Severity follows the numbering used by the Language Server Protocol.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// EndOfLine is used as end column for diagnostics spanning the rest of a line.
const EndOfLine = math.MaxInt32

// Diagnostic is a problem found on one line. Start and End are byte columns
// into the raw line text, End exclusive.
type Diagnostic struct {
	Line     int
	Start    int
	End      int
	Severity Severity
	Message  string
}

// Collector accumulates the diagnostics of a single parse.
type Collector struct {
	diags []Diagnostic
}

// Add records an error spanning [start, end) on line.
func (c *Collector) Add(line, start, end int, msg string) {
	c.AddWithSeverity(line, start, end, SeverityError, msg)
}

// AddToLine records an error from col to the end of line.
func (c *Collector) AddToLine(line, col int, msg string) {
	c.AddWithSeverity(line, col, EndOfLine, SeverityError, msg)
}

// AddWithSeverity records a diagnostic with an explicit severity.
func (c *Collector) AddWithSeverity(line, start, end int, sev Severity, msg string) {
	if end < start {
		end = start
	}
	c.diags = append(c.diags, Diagnostic{Line: line, Start: start, End: end, Severity: sev, Message: msg})
}

// Diagnostics returns the collected diagnostics in the order they were found.
func (c *Collector) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), c.diags...)
}
