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

// Package ridge renders stacked ("mountain") histogram plots: one
// cumulative histogram over all values, and below it one vertically
// offset histogram per key, all sharing a single bucket grid so the
// distributions are directly comparable. The output is a text data
// file plus a gnuplot script referencing it.
package ridge

import (
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/rsviz/rsviz/stats"
)

const (
	fieldSep  = " "
	recordSep = "\n"

	// Written in place of a frequency that must not be plotted.
	// Never 0, which is a real frequency.
	missingToken = "?"
)

// Style selects how per-key rows are laid out in the data file.
type Style int

const (
	// Classic pads the bucket rows with a row of zeros on each side
	// and writes a zero for every absent bucket.
	Classic Style = iota
	// Clean tracks a start/finish state per key so frequencies
	// outside a key's observed range come out as a non-plotted
	// placeholder, and fills large gaps between occupied buckets
	// with intermediate rows so the plotted lines do not connect
	// distant points.
	Clean
)

// Order selects the left-to-right (bottom-to-top) display order of
// the keys.
type Order int

const (
	// ByMean orders keys by ascending sample mean, which tends to
	// put similar-looking mountains next to each other.
	ByMean Order = iota
	ByKey
)

type mountain struct {
	stat  *stats.Stats
	hist  *stats.Histogram
	dirty bool
}

// Plot accumulates key/value pairs and renders them as a ridge plot.
// Histograms are derived lazily: they are rebuilt only when values
// were inserted since the last render.
type Plot struct {
	Title   string
	Style   Style
	Order   Order
	Spacing float64 // vertical offset between consecutive mountains

	table          map[string]*mountain
	cumulative     *stats.Stats
	cumulativeHist *stats.Histogram
	bucketSize     float64
	dirty          bool
}

func NewPlot(title string) *Plot {
	return &Plot{
		Title:      title,
		Spacing:    1.0,
		table:      make(map[string]*mountain),
		cumulative: stats.NewStats(),
		dirty:      true,
	}
}

// Insert adds a value under the given key. The value also feeds the
// cumulative distribution.
func (p *Plot) Insert(key string, value float64) {
	mtn := p.table[key]
	if mtn == nil {
		mtn = &mountain{stat: stats.NewStats()}
		p.table[key] = mtn
	}
	mtn.stat.Insert(value)
	mtn.dirty = true
	p.cumulative.Insert(value)
	p.dirty = true
}

// Len is the number of distinct keys inserted so far.
func (p *Plot) Len() int { return len(p.table) }

// BucketSize returns the shared bucket width, deriving histograms
// first if needed.
func (p *Plot) BucketSize() float64 {
	p.buildHistograms()
	return p.bucketSize
}

// buildHistograms fixes the shared bucket width from the cumulative
// distribution and (re)builds any histogram that is out of date.
// Outliers are always kept: a key's own whisker range can retain
// values the pooled whiskers would discard, and every value binned
// for a key must also occupy a cumulative bucket so that the sweep
// over the cumulative grid visits it.
func (p *Plot) buildHistograms() {
	if !p.dirty {
		return
	}
	p.bucketSize = p.cumulative.IdealBucketSize()
	p.cumulativeHist = p.cumulative.BuildHistogram(p.bucketSize, stats.KeepOutliers)
	for _, mtn := range p.table {
		if !mtn.dirty && mtn.hist != nil && mtn.hist.BucketSize() == p.bucketSize {
			continue
		}
		mtn.hist = mtn.stat.BuildHistogram(p.bucketSize, stats.KeepOutliers)
		mtn.dirty = false
	}
	p.dirty = false
}

// renderKeys returns the keys with at least one binned value, in
// display order. A key whose every inserted value was rejected as
// non-finite has no histogram and gets no column; it is dropped
// before sorting so its NaN mean cannot disturb the mean ordering.
func (p *Plot) renderKeys() []string {
	keys := make([]string, 0, len(p.table))
	for key, mtn := range p.table {
		if mtn.hist != nil {
			keys = append(keys, key)
		}
	}
	switch p.Order {
	case ByMean:
		sort.SliceStable(keys, func(i, j int) bool {
			a, b := p.table[keys[i]].stat.Mean(), p.table[keys[j]].stat.Mean()
			if a != b {
				return a < b
			}
			return keys[i] < keys[j]
		})
	default:
		sort.Strings(keys)
	}
	return keys
}

// WriteDataFile writes the tabular data consumed by the gnuplot
// script: first row is the bucket size followed by the column
// headers, then one row per bucket with the cumulative frequency and
// each key's frequency. An empty plot warns and writes nothing.
func (p *Plot) WriteDataFile(w io.Writer) error {
	p.buildHistograms()
	if len(p.table) == 0 || p.cumulativeHist == nil {
		log.Printf("ridge: plot %q has no data, nothing to write", p.Title)
		return nil
	}

	var err error
	check := func(er error) {
		if er != nil && err == nil {
			err = er
		}
	}

	keys := p.renderKeys()

	// Header: bucket size, then the cumulative column, then a column
	// per key.
	_, er := fmt.Fprintf(w, "%g%s(all)", p.bucketSize, fieldSep)
	check(er)
	for _, key := range keys {
		_, er = fmt.Fprintf(w, "%s%s", fieldSep, key)
		check(er)
	}
	_, er = fmt.Fprint(w, recordSep)
	check(er)

	switch p.Style {
	case Clean:
		check(p.writeCleanRows(w, keys))
	default:
		check(p.writeClassicRows(w, keys))
	}
	return err
}

// writeClassicRows writes one row per occupied cumulative bucket,
// zero for absent per-key buckets, padded with a zero row one bucket
// beyond each end. Histograms are built with outliers kept, so the
// cumulative histogram has a bucket wherever any mountain does.
func (p *Plot) writeClassicRows(w io.Writer, keys []string) error {
	var err error
	check := func(er error) {
		if er != nil && err == nil {
			err = er
		}
	}

	zeroRow := func(pos float64) {
		_, er := fmt.Fprintf(w, "%g%s0", pos, fieldSep)
		check(er)
		for range keys {
			_, er = fmt.Fprintf(w, "%s0", fieldSep)
			check(er)
		}
		_, er = fmt.Fprint(w, recordSep)
		check(er)
	}

	buckets := p.cumulativeHist.Buckets()
	zeroRow(buckets[0] - p.bucketSize)
	for _, start := range buckets {
		_, er := fmt.Fprintf(w, "%g%s%d", start, fieldSep, p.cumulativeHist.Count(start))
		check(er)
		for _, key := range keys {
			_, er = fmt.Fprintf(w, "%s%d", fieldSep, p.table[key].hist.Count(start))
			check(er)
		}
		_, er = fmt.Fprint(w, recordSep)
		check(er)
	}
	zeroRow(buckets[len(buckets)-1] + p.bucketSize)
	return err
}

// Per-series sweep state for the clean style.
type seriesState int

const (
	seriesNotStarted seriesState = iota
	seriesStarted
	seriesFinished
)

type sweepSeries struct {
	hist        *stats.Histogram
	first, last float64 // observed bucket range
	state       seriesState
}

// advance moves the series state machine to the given sweep position.
// A series starts when the position enters its observed range (with
// half a bucket of tolerance) and finishes when it leaves it.
func (ss *sweepSeries) advance(pos, halfBucket float64) {
	if ss.state == seriesNotStarted && pos >= ss.first-halfBucket {
		ss.state = seriesStarted
	}
	if ss.state == seriesStarted && pos > ss.last+halfBucket {
		ss.state = seriesFinished
	}
}

// writeCleanRows sweeps the shared grid from one bucket before the
// data to one bucket after. Rows are emitted for every occupied
// cumulative bucket, plus intermediate rows at bucket-size steps
// whenever two occupied buckets are more than 1.5 bucket widths
// apart. A series contributes a count only while it is started;
// before and after, its column holds the missing token so the
// mountain tapers instead of dropping to the baseline.
func (p *Plot) writeCleanRows(w io.Writer, keys []string) error {
	var err error
	check := func(er error) {
		if er != nil && err == nil {
			err = er
		}
	}

	series := make([]*sweepSeries, len(keys))
	for i, key := range keys {
		hist := p.table[key].hist
		buckets := hist.Buckets()
		series[i] = &sweepSeries{
			hist:  hist,
			first: buckets[0],
			last:  buckets[len(buckets)-1],
		}
	}

	buckets := p.cumulativeHist.Buckets()

	// Sweep positions: the occupied buckets, padded one bucket on
	// each side, with gap-filling rows in between.
	positions := make([]float64, 0, len(buckets)+2)
	positions = append(positions, buckets[0]-p.bucketSize)
	prev := positions[0]
	for _, start := range buckets {
		for start-prev > 1.5*p.bucketSize {
			prev += p.bucketSize
			positions = append(positions, prev)
		}
		positions = append(positions, start)
		prev = start
	}
	positions = append(positions, prev+p.bucketSize)

	halfBucket := p.bucketSize / 2
	for _, pos := range positions {
		_, er := fmt.Fprintf(w, "%g%s%d", pos, fieldSep, p.cumulativeHist.Count(pos))
		check(er)
		for _, ss := range series {
			ss.advance(pos, halfBucket)
			if ss.state == seriesStarted {
				_, er = fmt.Fprintf(w, "%s%d", fieldSep, ss.hist.Count(pos))
			} else {
				_, er = fmt.Fprintf(w, "%s%s", fieldSep, missingToken)
			}
			check(er)
		}
		_, er = fmt.Fprint(w, recordSep)
		check(er)
	}
	return err
}

// WriteGnuplot writes a gnuplot script with two stacked panels: the
// cumulative histogram on top and the per-key mountains below, each
// mountain offset vertically by its rank times Spacing. dataName is
// the path of the data file written by WriteDataFile, relative to
// where gnuplot will run.
func (p *Plot) WriteGnuplot(w io.Writer, dataName string) error {
	p.buildHistograms()
	if len(p.table) == 0 || p.cumulativeHist == nil {
		log.Printf("ridge: plot %q has no data, no script to write", p.Title)
		return nil
	}

	var err error
	check := func(er error) {
		if er != nil && err == nil {
			err = er
		}
	}
	out := func(format string, args ...interface{}) {
		_, er := fmt.Fprintf(w, format, args...)
		check(er)
	}

	keys := p.renderKeys()

	out("set terminal pngcairo enhanced size 900,1200\n")
	out("set datafile missing %q\n", missingToken)
	out("set key off\n")
	out("set multiplot layout 2,1 title %q\n", p.Title)
	out("\n")
	out("set ylabel \"frequency\"\n")
	out("plot %q using 1:2 with boxes fill solid 0.5\n", dataName)
	out("\n")
	out("set ylabel \"\"\n")
	out("unset ytics\n")
	out("plot ")
	for i, key := range keys {
		if i > 0 {
			out(", \\\n     ")
		}
		// Column 1 is the bucket start, column 2 the cumulative
		// frequency; key columns start at 3.
		out("%q using 1:($%d + %g) with lines title %q", dataName, i+3, float64(i)*p.Spacing, key)
	}
	out("\nunset multiplot\n")
	return err
}
