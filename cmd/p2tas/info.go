/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Blenderiste09/p2tas-lang/internal/tools"
	"github.com/Blenderiste09/p2tas-lang/internal/version"
)

func newTicksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ticks <file>",
		Short: "Print the absolute tick and active tools of every line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			s := a.parser.Parse(string(data))
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for i, l := range s.Lines {
				_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", i+1, l.Tick, formatTools(s.ActiveToolsAt(i)), l.Text)
			}
			return tw.Flush()
		},
	}
}

func newToolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the checker accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, t := range a.catalog.Tools() {
				var flags []string
				if t.Persistent {
					flags = append(flags, "persistent")
				}
				if t.Continues {
					flags = append(flags, "continues")
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, strings.Join(flags, ","), t.Description)
				for _, arg := range t.Arguments {
					_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", argName(arg), arg.Type, arg.Description)
				}
			}
			return tw.Flush()
		},
	}
}

func argName(a tools.Argument) string {
	if a.HasUnit() {
		return "<n>" + a.Unit
	}
	if a.Placeholder {
		return "<" + a.Name + ">"
	}
	return a.Name
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.stdout, "p2tas %s\n", version.String())
			return err
		},
	}
}
