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
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func Test_reader_readNDJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "summaries.json",
		`{"category": "analysis", "host": "h1", "wall_time": 10}
{"category": "analysis", "host": "h2", "wall_time": [20, "s"]}
`)

	rd := newReader(0)
	records, err := rd.readNDJSON(path)
	if err != nil {
		t.Fatalf("readNDJSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if v, unit, ok := records[1].NumericField("wall_time"); !ok || v != 20 || unit != "s" {
		t.Errorf("wall_time of second record: %v %q %v", v, unit, ok)
	}
}

func Test_reader_readNDJSONMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "summaries.json",
		`{"category": "a"}
this is not json
{"category": "b"}
`)

	rd := newReader(0)
	records, err := rd.readNDJSON(path)
	if err != nil {
		t.Fatalf("readNDJSON: %v", err)
	}
	// Reading stops at the malformed object; what came before is kept.
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
	if rd.skipped == 0 {
		t.Errorf("malformed input was not counted")
	}
}

func Test_reader_readNDJSONMissing(t *testing.T) {
	rd := newReader(0)
	if _, err := rd.readNDJSON("/does/not/exist"); err == nil {
		t.Errorf("missing input file did not error")
	}
}

func Test_reader_readListFile(t *testing.T) {
	dir := t.TempDir()
	s1 := writeFile(t, dir, "s1.summary", `{"category": "a", "memory": [100, "MB"]}`)
	s2 := writeFile(t, dir, "s2.summary", `{"category": "a", "memory": [200, "MB"]}`)
	bad := writeFile(t, dir, "bad.summary", `not json at all`)
	// s1 listed twice: the second read must hit the cache.
	list := writeFile(t, dir, "list", s1+"\n"+s2+"\n"+s1+"\n"+bad+"\n\n")

	rd := newReader(16)
	records, err := rd.readListFile(list)
	if err != nil {
		t.Fatalf("readListFile: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(records))
	}
	if rd.skipped != 1 {
		t.Errorf("skipped = %d, want 1", rd.skipped)
	}
	if rd.hits != 1 || rd.misses != 3 {
		t.Errorf("cache hits/misses = %d/%d, want 1/3", rd.hits, rd.misses)
	}
	if records[0].Filename != s1 {
		t.Errorf("Filename = %q, want %q", records[0].Filename, s1)
	}
}

func Test_reader_cacheDisabled(t *testing.T) {
	dir := t.TempDir()
	s1 := writeFile(t, dir, "s1.summary", `{"category": "a"}`)
	list := writeFile(t, dir, "list", s1+"\n"+s1+"\n")

	rd := newReader(0)
	if rd.cache != nil {
		t.Fatalf("cache not disabled for size 0")
	}
	records, err := rd.readListFile(list)
	if err != nil {
		t.Fatalf("readListFile: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
}
