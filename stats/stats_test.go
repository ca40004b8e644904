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
	"testing"
)

func feed(vals ...float64) *Stats {
	s := NewStats()
	for _, v := range vals {
		s.Insert(v)
	}
	return s
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func Test_Stats_Mean(t *testing.T) {
	s := feed(1, 2, 2, 3, 4, 5, 6, 7, 8, 9)
	if !approx(s.Mean(), 4.7) {
		t.Errorf("Mean() = %v, want 4.7", s.Mean())
	}
	if s.Count() != 10 {
		t.Errorf("Count() = %d, want 10", s.Count())
	}
}

func Test_Stats_InsertNonFinite(t *testing.T) {
	s := feed(1, 2, 3)
	sum, count := s.Sum(), s.Count()
	s.Insert(math.NaN())
	s.Insert(math.Inf(1))
	s.Insert(math.Inf(-1))
	if s.Count() != count || s.Sum() != sum {
		t.Errorf("non-finite insert changed state: count %d sum %v", s.Count(), s.Sum())
	}
}

func Test_Stats_EmptyIsNaN(t *testing.T) {
	s := NewStats()
	for name, v := range map[string]float64{
		"Mean":        s.Mean(),
		"Stddev":      s.Stddev(),
		"Minimum":     s.Minimum(),
		"Maximum":     s.Maximum(),
		"Median":      s.Median(),
		"Q1":          s.Q1(),
		"Q3":          s.Q3(),
		"WhiskerLow":  s.WhiskerLow(),
		"WhiskerHigh": s.WhiskerHigh(),
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s() on empty = %v, want NaN", name, v)
		}
	}
	if h := s.BuildHistogram(1.0, KeepOutliers); h != nil {
		t.Errorf("BuildHistogram on empty != nil")
	}
}

func Test_Stats_Quartiles(t *testing.T) {
	s := feed(1, 2, 2, 3, 4, 5, 6, 7, 8, 9)
	if m := s.Median(); !approx(m, 4.5) {
		t.Errorf("Median() = %v, want 4.5", m)
	}
	if q := s.Q1(); !approx(q, 2) {
		t.Errorf("Q1() = %v, want 2", q)
	}
	if q := s.Q3(); !approx(q, 7) {
		t.Errorf("Q3() = %v, want 7", q)
	}
}

func Test_Stats_QuartilesOddCount(t *testing.T) {
	// Upper half excludes the middle element for odd counts.
	s := feed(1, 2, 3, 4, 5)
	if m := s.Median(); !approx(m, 3) {
		t.Errorf("Median() = %v, want 3", m)
	}
	if q := s.Q1(); !approx(q, 1.5) {
		t.Errorf("Q1() = %v, want 1.5", q)
	}
	if q := s.Q3(); !approx(q, 4.5) {
		t.Errorf("Q3() = %v, want 4.5", q)
	}
}

func Test_Stats_QuartilesSingle(t *testing.T) {
	s := feed(42)
	if s.Q1() != 42 || s.Median() != 42 || s.Q3() != 42 {
		t.Errorf("single value: Q1 %v median %v Q3 %v, all want 42", s.Q1(), s.Median(), s.Q3())
	}
}

func Test_Stats_QuartileOrdering(t *testing.T) {
	s := feed(9, 1, 4, 4, 2, 8, 3, 7, 0, 5, 6)
	if !(s.Q1() <= s.Median() && s.Median() <= s.Q3()) {
		t.Errorf("ordering violated: Q1 %v median %v Q3 %v", s.Q1(), s.Median(), s.Q3())
	}
	if s.WhiskerLow() > s.Q1() {
		t.Errorf("WhiskerLow %v > Q1 %v", s.WhiskerLow(), s.Q1())
	}
	if s.WhiskerHigh() < s.Q3() {
		t.Errorf("WhiskerHigh %v < Q3 %v", s.WhiskerHigh(), s.Q3())
	}
}

func Test_Stats_Whiskers(t *testing.T) {
	// 100 is far beyond 1.5 IQR of Q3 and must be excluded.
	s := feed(1, 2, 3, 4, 5, 6, 7, 8, 100)
	if w := s.WhiskerHigh(); !approx(w, 8) {
		t.Errorf("WhiskerHigh() = %v, want 8", w)
	}
	if w := s.WhiskerLow(); !approx(w, 1) {
		t.Errorf("WhiskerLow() = %v, want 1", w)
	}
}

func Test_Stats_Stddev(t *testing.T) {
	s := feed(2, 4, 4, 4, 5, 5, 7, 9)
	if sd := s.Stddev(); !approx(sd, 2) {
		t.Errorf("Stddev() = %v, want 2", sd)
	}
	if v := s.Variance(); !approx(v, 4) {
		t.Errorf("Variance() = %v, want 4", v)
	}
}

func Test_Stats_Reset(t *testing.T) {
	s := feed(1, 2, 3)
	s.Reset()
	if s.Count() != 0 || s.Sum() != 0 {
		t.Errorf("Reset left count %d sum %v", s.Count(), s.Sum())
	}
	if !math.IsNaN(s.Mean()) {
		t.Errorf("Mean after Reset = %v, want NaN", s.Mean())
	}
	s.Insert(5)
	if !approx(s.Mean(), 5) {
		t.Errorf("reuse after Reset: Mean = %v, want 5", s.Mean())
	}
}

func Test_Stats_Merge(t *testing.T) {
	a := feed(1, 2, 3)
	b := feed(4, 5, 6)
	a.Merge(b)
	if a.Count() != 6 {
		t.Errorf("Count after Merge = %d, want 6", a.Count())
	}
	if !approx(a.Mean(), 3.5) {
		t.Errorf("Mean after Merge = %v, want 3.5", a.Mean())
	}
}

func Test_Stats_SortLazy(t *testing.T) {
	s := feed(3, 1, 2)
	if min := s.Minimum(); !approx(min, 1) {
		t.Errorf("Minimum() = %v, want 1", min)
	}
	s.Insert(0) // marks dirty again
	if min := s.Minimum(); !approx(min, 0) {
		t.Errorf("Minimum() after insert = %v, want 0", min)
	}
	if max := s.Maximum(); !approx(max, 3) {
		t.Errorf("Maximum() = %v, want 3", max)
	}
}

func Test_Stats_IdealBucketSize(t *testing.T) {
	s := NewStats()
	for i := 1; i <= 100; i++ {
		s.Insert(float64(i))
	}
	// range 99 over floor(sqrt(100)) = 10 buckets
	if b := s.IdealBucketSize(); !approx(b, 9.9) {
		t.Errorf("IdealBucketSize() = %v, want 9.9", b)
	}
}

func Test_Stats_IdealBucketSizeDegenerate(t *testing.T) {
	s := feed(5, 5, 5)
	b := s.IdealBucketSize()
	if b <= 0 {
		t.Errorf("IdealBucketSize() on single-valued sample = %v, want > 0", b)
	}
}

func Test_Stats_BuildHistogram(t *testing.T) {
	s := feed(1, 2, 2, 3, 4, 5, 6, 7, 8, 100)

	keep := s.BuildHistogram(2.0, KeepOutliers)
	if keep.Total() != s.Count() {
		t.Errorf("keep-outliers Total() = %d, want %d", keep.Total(), s.Count())
	}

	discard := s.BuildHistogram(2.0, DiscardOutliers)
	if discard.Total() != s.Count()-1 { // 100 is an outlier
		t.Errorf("discard-outliers Total() = %d, want %d", discard.Total(), s.Count()-1)
	}
}

func Test_Stats2_Regression(t *testing.T) {
	s := NewStats2()
	for x := 1.0; x <= 10; x++ {
		s.Insert(x, 2*x+3)
	}
	slope, intercept, ok := s.LinearRegression()
	if !ok {
		t.Fatalf("LinearRegression failed on clean line")
	}
	if !approx(slope, 2) {
		t.Errorf("slope = %v, want 2", slope)
	}
	if !approx(intercept, 3) {
		t.Errorf("intercept = %v, want 3", intercept)
	}
	if c := s.Correlation(); !approx(c, 1) {
		t.Errorf("Correlation() = %v, want 1", c)
	}
}

func Test_Stats2_RegressionDegenerate(t *testing.T) {
	s := NewStats2()
	if _, _, ok := s.LinearRegression(); ok {
		t.Errorf("LinearRegression on empty reported a fit")
	}
	s.Insert(1, 1)
	if _, _, ok := s.LinearRegression(); ok {
		t.Errorf("LinearRegression on one point reported a fit")
	}
	// Zero x-variance makes the slope NaN.
	s.Insert(1, 2)
	s.Insert(1, 3)
	if _, _, ok := s.LinearRegression(); ok {
		t.Errorf("LinearRegression with zero x-variance reported a fit")
	}
}

func Test_Stats2_InsertNonFinite(t *testing.T) {
	s := NewStats2()
	s.Insert(1, 2)
	s.Insert(math.NaN(), 3)
	s.Insert(3, math.Inf(1))
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func Test_Stats2_Moments(t *testing.T) {
	s := NewStats2()
	s.Insert(1, 10)
	s.Insert(2, 20)
	s.Insert(3, 30)
	if !approx(s.MeanX(), 2) || !approx(s.MeanY(), 20) {
		t.Errorf("means = %v, %v, want 2, 20", s.MeanX(), s.MeanY())
	}
	if !approx(s.MinX(), 1) || !approx(s.MaxX(), 3) || !approx(s.MinY(), 10) || !approx(s.MaxY(), 30) {
		t.Errorf("min/max wrong: %v %v %v %v", s.MinX(), s.MaxX(), s.MinY(), s.MaxY())
	}
}
