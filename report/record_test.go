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
	"testing"
)

func Test_Record_NumericField(t *testing.T) {
	r := recordWith(map[string]interface{}{
		"bare":    12.5,
		"unitted": []interface{}{384.0, "MB"},
		"empty":   []interface{}{},
		"text":    "not a number",
	})

	if v, unit, ok := r.NumericField("bare"); !ok || v != 12.5 || unit != "" {
		t.Errorf("bare: %v %q %v", v, unit, ok)
	}
	if v, unit, ok := r.NumericField("unitted"); !ok || v != 384 || unit != "MB" {
		t.Errorf("unitted: %v %q %v", v, unit, ok)
	}
	if _, _, ok := r.NumericField("empty"); ok {
		t.Errorf("empty array extracted a value")
	}
	if _, _, ok := r.NumericField("text"); ok {
		t.Errorf("string extracted a value")
	}
	if _, _, ok := r.NumericField("absent"); ok {
		t.Errorf("absent field extracted a value")
	}
}

func Test_Record_TaskID(t *testing.T) {
	if id, ok := recordWith(map[string]interface{}{"task_id": "t-17"}).TaskID(); !ok || id != "t-17" {
		t.Errorf("string task_id: %q %v", id, ok)
	}
	if id, ok := recordWith(map[string]interface{}{"task_id": 17.0}).TaskID(); !ok || id != "17" {
		t.Errorf("numeric task_id: %q %v", id, ok)
	}
	if _, ok := recordWith(map[string]interface{}{}).TaskID(); ok {
		t.Errorf("absent task_id resolved")
	}
}

func Test_UnitsTable(t *testing.T) {
	u := NewUnitsTable()
	u.Observe("memory", "MB")
	u.Observe("memory", "MB")
	if unit := u.Unit("memory"); unit != "MB" {
		t.Errorf("Unit(memory) = %q, want MB", unit)
	}

	// First unit seen wins, disagreement warns once.
	u.Observe("memory", "GB")
	if unit := u.Unit("memory"); unit != "MB" {
		t.Errorf("Unit(memory) after disagreement = %q, want MB", unit)
	}
	if !u.warned["memory"] {
		t.Errorf("disagreement did not latch the warning")
	}
	u.Observe("memory", "GB") // must not warn again; latch stays set
	if !u.warned["memory"] {
		t.Errorf("warning latch was cleared")
	}

	// Bare numbers carry no unit and record nothing.
	u.Observe("wall_time", "")
	if unit := u.Unit("wall_time"); unit != "" {
		t.Errorf("Unit(wall_time) = %q, want \"\"", unit)
	}
}
