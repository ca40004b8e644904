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

import "log"

// UnitsTable records the unit of measure seen for each field. The
// first unit seen wins; a later disagreement is logged once per field
// and otherwise ignored. The table is owned by one report run, so the
// once-per-field warning latch cannot leak across runs.
type UnitsTable struct {
	units  map[string]string
	warned map[string]bool
}

func NewUnitsTable() *UnitsTable {
	return &UnitsTable{
		units:  make(map[string]string),
		warned: make(map[string]bool),
	}
}

// Observe notes the unit seen on a field value. Empty units (bare
// numbers) are not recorded.
func (u *UnitsTable) Observe(field, unit string) {
	if unit == "" {
		return
	}
	seen, ok := u.units[field]
	if !ok {
		u.units[field] = unit
		return
	}
	if seen != unit && !u.warned[field] {
		log.Printf("Inconsistent units for field %q: keeping %q, ignoring %q.", field, seen, unit)
		u.warned[field] = true
	}
}

// Unit returns the unit of record for a field, "" when none was seen.
func (u *UnitsTable) Unit(field string) string {
	return u.units[field]
}
