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

// Package report implements the batch reporting pipeline: it ingests
// JSON resource usage summary records, groups them by category and a
// user-chosen split field, accumulates per-group statistics and
// renders text data files and gnuplot scripts (boxplots, ridge
// histograms, regression fits) into a per-category directory tree.
package report

import (
	"strconv"
)

// What a category is called in the summary data.
const fieldCategory = "category"

// The field holding the task identifier used for the optional
// work-units lookup.
const fieldTaskID = "task_id"

const fieldWallTime = "wall_time"

// Record is one parsed resource usage summary. The JSON object is
// held as decoded and only read through the field accessors below.
// UnitsTotal and UnitsProcessed are zero unless the work-units lookup
// filled them in.
type Record struct {
	Filename       string
	UnitsTotal     int64
	UnitsProcessed int64

	fields map[string]interface{}
}

func newRecord(filename string, fields map[string]interface{}) *Record {
	return &Record{Filename: filename, fields: fields}
}

// StringField returns the field's value when it is a string.
func (r *Record) StringField(name string) (string, bool) {
	s, ok := r.fields[name].(string)
	return s, ok
}

// NumericField extracts a numeric field. A value is either a bare
// number or a two-element [value, "unit"] array; in the second form
// the unit string is returned alongside. The second return is the
// unit ("" when the value carries none), the third whether a usable
// number was found at all.
func (r *Record) NumericField(name string) (float64, string, bool) {
	switch v := r.fields[name].(type) {
	case float64:
		return v, "", true
	case []interface{}:
		if len(v) == 0 {
			return 0, "", false
		}
		num, ok := v[0].(float64)
		if !ok {
			return 0, "", false
		}
		unit := ""
		if len(v) > 1 {
			unit, _ = v[1].(string)
		}
		return num, unit, true
	}
	return 0, "", false
}

// TaskID returns the record's task identifier as a string. Summaries
// write it as either a string or a number.
func (r *Record) TaskID() (string, bool) {
	switch v := r.fields[fieldTaskID].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	}
	return "", false
}
