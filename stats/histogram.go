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

package stats

import (
	"math"
	"sort"
)

// Histogram is a sparse fixed-width histogram: only buckets with at
// least one sample are present, and consecutive present buckets are
// not necessarily adjacent. Bucket starts are zero-anchored multiples
// of the bucket width, so two histograms built with the same width
// have directly comparable bucket starts.
type Histogram struct {
	bucketSize float64
	counts     map[float64]int
}

func newHistogram(bucketSize float64) *Histogram {
	return &Histogram{
		bucketSize: bucketSize,
		counts:     make(map[float64]int),
	}
}

// BucketStart returns the start of the bucket containing v: the
// largest multiple of width not greater than v.
func BucketStart(v, width float64) float64 {
	return math.Floor(v/width) * width
}

func (h *Histogram) add(v float64) {
	h.counts[BucketStart(v, h.bucketSize)]++
}

func (h *Histogram) BucketSize() float64 { return h.bucketSize }

// Size is the number of occupied buckets.
func (h *Histogram) Size() int { return len(h.counts) }

// Count returns the frequency of the bucket with the given start, 0
// for absent buckets.
func (h *Histogram) Count(bucketStart float64) int {
	return h.counts[bucketStart]
}

// Total is the sum of all bucket frequencies.
func (h *Histogram) Total() int {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Buckets returns the occupied bucket starts in ascending order.
func (h *Histogram) Buckets() []float64 {
	starts := make([]float64, 0, len(h.counts))
	for start := range h.counts {
		starts = append(starts, start)
	}
	sort.Float64s(starts)
	return starts
}
