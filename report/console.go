//
// Copyright 2018 The Rsviz Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"github.com/rsviz/rsviz/stats"
)

// console collects a per-category, per-field overview to print on
// stdout at the end of the run, so a user gets a summary without
// opening the output files. In verbose mode it also keeps an ascii
// preview of each pooled histogram.
type console struct {
	rows     [][]string
	previews []string
	verbose  bool
}

func (c *console) addRow(category, field string, count int, mean, stddev float64) {
	c.rows = append(c.rows, []string{
		category,
		field,
		fmt.Sprintf("%d", count),
		fmt.Sprintf("%g", mean),
		fmt.Sprintf("%g", stddev),
	})
}

func (c *console) addPreview(caption string, h *stats.Histogram) {
	if !c.verbose || h == nil {
		return
	}
	series := make([]float64, 0, h.Size())
	for _, start := range h.Buckets() {
		series = append(series, float64(h.Count(start)))
	}
	c.previews = append(c.previews,
		asciigraph.Plot(series, asciigraph.Height(8), asciigraph.Caption(caption)))
}

func (c *console) render(w io.Writer) {
	if len(c.rows) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Field", "Count", "Mean", "Stddev"})
	table.SetAutoFormatHeaders(false)
	for _, row := range c.rows {
		table.Append(row)
	}
	table.Render()

	for _, preview := range c.previews {
		fmt.Fprintf(w, "\n%s\n", preview)
	}
}
