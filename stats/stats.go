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

// Package stats provides incremental descriptive statistics over
// streams of float64 samples: single-variable accumulators with
// order statistics (median, quartiles, boxplot whiskers), paired
// two-variable accumulators for covariance and linear regression,
// and sparse fixed-width histograms derived from an accumulator.
package stats

import (
	"math"
	"sort"
)

// Initial capacity of the values buffer.
const valuesInitSize = 4096 / 8

// OutlierPolicy selects what to do with values beyond the boxplot
// whiskers when building a histogram.
type OutlierPolicy int

const (
	KeepOutliers OutlierPolicy = iota
	DiscardOutliers
)

// Stats accumulates samples one at a time. Moments (sum, sum of
// squares, count) are maintained on insert; order statistics sort the
// stored values lazily, only when one is requested. The zero value is
// not usable, use NewStats.
type Stats struct {
	sum        float64
	sumSquares float64
	values     []float64
	dirty      bool // values need sorting
}

func NewStats() *Stats {
	return &Stats{values: make([]float64, 0, valuesInitSize)}
}

// Reset returns the accumulator to its empty state. The backing
// storage is kept so the accumulator can be reused across iterations
// without reallocating.
func (s *Stats) Reset() {
	s.sum = 0
	s.sumSquares = 0
	s.values = s.values[:0]
	s.dirty = false
}

// Insert adds a sample. NaN and infinite values are dropped, they
// count toward nothing.
func (s *Stats) Insert(value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	s.sum += value
	s.sumSquares += value * value
	s.values = append(s.values, value)
	s.dirty = true
}

// Merge re-inserts every value of other into s.
func (s *Stats) Merge(other *Stats) {
	for _, v := range other.values {
		s.Insert(v)
	}
}

func (s *Stats) Count() int { return len(s.values) }

func (s *Stats) Sum() float64 { return s.sum }

// Mean of the inserted values. NaN when empty (0/0), per IEEE 754.
func (s *Stats) Mean() float64 {
	return s.sum / float64(len(s.values))
}

func (s *Stats) Variance() float64 {
	mean := s.Mean()
	return s.sumSquares/float64(len(s.values)) - mean*mean
}

func (s *Stats) Stddev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Stats) sortIfDirty() {
	if s.dirty {
		sort.Float64s(s.values)
		s.dirty = false
	}
}

func (s *Stats) Minimum() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	s.sortIfDirty()
	return s.values[0]
}

func (s *Stats) Maximum() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	s.sortIfDirty()
	return s.values[len(s.values)-1]
}

// medianOf returns the median of a sorted, non-empty slice.
func medianOf(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func (s *Stats) Median() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	s.sortIfDirty()
	return medianOf(s.values)
}

// Q1 is the median of the lower half of the values. With a single
// value, Q1 == median == Q3 == the value.
func (s *Stats) Q1() float64 {
	n := len(s.values)
	if n == 0 {
		return math.NaN()
	}
	s.sortIfDirty()
	if n == 1 {
		return s.values[0]
	}
	return medianOf(s.values[:n/2])
}

// Q3 is the median of the upper half of the values. For an odd count
// the upper half excludes the middle element. This split-half
// convention differs from Tukey's hinges and is deliberate: the
// boxplot rendering downstream is calibrated to it.
func (s *Stats) Q3() float64 {
	n := len(s.values)
	if n == 0 {
		return math.NaN()
	}
	s.sortIfDirty()
	if n == 1 {
		return s.values[0]
	}
	if n%2 == 0 {
		return medianOf(s.values[n/2:])
	}
	return medianOf(s.values[n/2+1:])
}

// WhiskerLow is the lowest value within 1.5 IQR of Q1.
func (s *Stats) WhiskerLow() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	q1, q3 := s.Q1(), s.Q3()
	limit := q1 - 1.5*(q3-q1)
	for _, v := range s.values {
		if v >= limit {
			return v
		}
	}
	return math.NaN() // unreachable, Q1 itself is within the limit
}

// WhiskerHigh is the highest value within 1.5 IQR of Q3.
func (s *Stats) WhiskerHigh() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	q1, q3 := s.Q1(), s.Q3()
	limit := q3 + 1.5*(q3-q1)
	for i := len(s.values) - 1; i >= 0; i-- {
		if s.values[i] <= limit {
			return s.values[i]
		}
	}
	return math.NaN()
}

// IdealBucketSize derives a histogram bucket width giving roughly
// sqrt(n) buckets over the range of the inserted values. A degenerate
// single-valued range is widened by a negligible relative epsilon so
// the width is never zero.
func (s *Stats) IdealBucketSize() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	min, max := s.Minimum(), s.Maximum()
	if max == min {
		max += max / 1e6
	}
	return (math.Abs(max) - math.Abs(min)) / math.Floor(math.Sqrt(float64(len(s.values))))
}

// BuildHistogram bins the accumulated values into buckets of the
// given width. Under DiscardOutliers only values within the whisker
// range are binned. Returns nil when the accumulator is empty.
func (s *Stats) BuildHistogram(bucketSize float64, policy OutlierPolicy) *Histogram {
	if len(s.values) == 0 {
		return nil
	}
	var low, high float64
	switch policy {
	case DiscardOutliers:
		low, high = s.WhiskerLow(), s.WhiskerHigh()
	default:
		low, high = s.Minimum(), s.Maximum()
	}
	h := newHistogram(bucketSize)
	for _, v := range s.values {
		if v < low || v > high {
			continue
		}
		h.add(v)
	}
	return h
}
