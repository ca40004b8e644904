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

import "math"

// Stats2 accumulates (x, y) sample pairs for covariance, correlation
// and linear regression. Unlike Stats it keeps no sample buffer, only
// running moments, so no order statistics are available.
type Stats2 struct {
	sumX, sumY   float64
	sumXY        float64
	sumXX, sumYY float64
	minX, minY   float64
	maxX, maxY   float64
	count        int64
}

func NewStats2() *Stats2 {
	return &Stats2{}
}

func (s *Stats2) Reset() {
	*s = Stats2{}
}

// Insert adds a sample pair. Pairs with a NaN or infinite component
// are dropped whole.
func (s *Stats2) Insert(x, y float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return
	}
	if s.count == 0 {
		s.minX, s.maxX = x, x
		s.minY, s.maxY = y, y
	} else {
		if x < s.minX {
			s.minX = x
		}
		if x > s.maxX {
			s.maxX = x
		}
		if y < s.minY {
			s.minY = y
		}
		if y > s.maxY {
			s.maxY = y
		}
	}
	s.sumX += x
	s.sumY += y
	s.sumXY += x * y
	s.sumXX += x * x
	s.sumYY += y * y
	s.count++
}

func (s *Stats2) Count() int64 { return s.count }

func (s *Stats2) MeanX() float64 { return s.sumX / float64(s.count) }
func (s *Stats2) MeanY() float64 { return s.sumY / float64(s.count) }

func (s *Stats2) StddevX() float64 {
	mean := s.MeanX()
	return math.Sqrt(s.sumXX/float64(s.count) - mean*mean)
}

func (s *Stats2) StddevY() float64 {
	mean := s.MeanY()
	return math.Sqrt(s.sumYY/float64(s.count) - mean*mean)
}

func (s *Stats2) MinX() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.minX
}

func (s *Stats2) MaxX() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.maxX
}

func (s *Stats2) MinY() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.minY
}

func (s *Stats2) MaxY() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.maxY
}

func (s *Stats2) Covariance() float64 {
	return s.sumXY/float64(s.count) - s.MeanX()*s.MeanY()
}

func (s *Stats2) Correlation() float64 {
	return s.Covariance() / (s.StddevX() * s.StddevY())
}

// LinearRegression fits the line y = slope*x + intercept. The second
// return is false when there is no fit: fewer than 2 points, or a
// degenerate slope (zero x-variance makes it NaN or infinite). A
// failed fit is an expected outcome, callers fall back to scaling by
// the y mean alone.
func (s *Stats2) LinearRegression() (slope, intercept float64, ok bool) {
	if s.count < 2 {
		return 0, 0, false
	}
	slope = s.Correlation() * (s.StddevY() / s.StddevX())
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, 0, false
	}
	intercept = s.MeanY() - slope*s.MeanX()
	return slope, intercept, true
}
