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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"
)

// reader ingests summary records from an NDJSON stream or from a list
// file naming one summary file per line. List files commonly repeat
// filenames, so parsed summaries go through an LRU cache. Skipped
// input is counted; the warnings for it are throttled so a bad input
// file cannot flood the log.
type reader struct {
	cache       *lru.Cache // nil when caching is disabled
	warnLimiter *rate.Limiter

	skipped      int
	hits, misses int
}

func newReader(cacheSize int) *reader {
	rd := &reader{
		warnLimiter: rate.NewLimiter(rate.Limit(1), 10),
	}
	// 0 cap == disable the cache
	if cacheSize > 0 {
		rd.cache, _ = lru.New(cacheSize)
	}
	return rd
}

// warnSkip counts a skipped input and logs it, subject to the rate
// limit. The final tally is always reported by the caller.
func (rd *reader) warnSkip(format string, args ...interface{}) {
	rd.skipped++
	if rd.warnLimiter.Allow() {
		log.Printf(format, args...)
	}
}

// readNDJSON reads a stream of JSON objects, one after another, from
// a single file. Inability to open the file is fatal for the run; a
// malformed object ends the stream with a warning, everything read up
// to it is kept.
func (rd *reader) readNDJSON(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open summaries file %q: %v", path, err)
	}
	defer f.Close()

	var records []*Record
	dec := json.NewDecoder(f)
	for {
		var fields map[string]interface{}
		err := dec.Decode(&fields)
		if err == io.EOF {
			break
		}
		if err != nil {
			rd.warnSkip("Stopping at malformed JSON object in %q after %d records: %v", path, len(records), err)
			break
		}
		records = append(records, newRecord("", fields))
	}
	log.Printf("Read %d JSON objects from %q.", len(records), path)
	return records, nil
}

// readListFile reads a file listing one summary filename per line and
// parses each referenced file. Unparseable or unreadable summaries
// are skipped and tallied.
func (rd *reader) readListFile(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open list file %q: %v", path, err)
	}
	defer f.Close()

	var records []*Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		filename := strings.TrimSpace(scanner.Text())
		if filename == "" {
			continue
		}
		fields, err := rd.parseSummaryFile(filename)
		if err != nil {
			rd.warnSkip("Skipping summary %q: %v", filename, err)
			continue
		}
		records = append(records, newRecord(filename, fields))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading list file %q: %v", path, err)
	}
	if rd.cache != nil {
		log.Printf("Summary cache: %d hits, %d misses.", rd.hits, rd.misses)
	}
	log.Printf("Successfully read %d summary files.", len(records))
	return records, nil
}

// parseSummaryFile parses the first JSON object of a summary file,
// consulting the cache first. The parsed object is shared between all
// records referencing the same file and is treated as read-only.
func (rd *reader) parseSummaryFile(filename string) (map[string]interface{}, error) {
	if rd.cache != nil {
		if cached, ok := rd.cache.Get(filename); ok {
			rd.hits++
			return cached.(map[string]interface{}), nil
		}
		rd.misses++
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&fields); err != nil {
		return nil, fmt.Errorf("no JSON object found: %v", err)
	}
	if rd.cache != nil {
		rd.cache.Add(filename, fields)
	}
	return fields, nil
}
