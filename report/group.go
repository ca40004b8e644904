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
	"log"
	"sort"
)

// GroupByField partitions records by the string value of the given
// field. Records missing the field, or whose field is not a string,
// are dropped; the drop count is the second return, reported as a
// warning but never fatal.
func GroupByField(records []*Record, field string) (map[string][]*Record, int) {
	grouped := make(map[string][]*Record)
	dropped := 0
	for _, r := range records {
		key, ok := r.StringField(field)
		if !ok {
			dropped++
			continue
		}
		grouped[key] = append(grouped[key], r)
	}
	if dropped > 0 {
		log.Printf("Dropped %d of %d records when grouping by field %q.", dropped, len(records), field)
	}
	log.Printf("Split into %d groups by field %q.", len(grouped), field)
	return grouped, dropped
}

// FilterByThreshold removes groups with fewer than threshold members,
// returning the number removed.
func FilterByThreshold(grouping map[string][]*Record, threshold int) int {
	filtered := 0
	for key, members := range grouping {
		if len(members) < threshold {
			delete(grouping, key)
			filtered++
		}
	}
	if filtered > 0 {
		log.Printf("Filtered out %d groups with fewer than %d matches.", filtered, threshold)
	}
	return filtered
}

// sortedGroupKeys returns the grouping's keys in sorted order, for
// deterministic iteration and output.
func sortedGroupKeys(grouping map[string][]*Record) []string {
	keys := make([]string, 0, len(grouping))
	for key := range grouping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
