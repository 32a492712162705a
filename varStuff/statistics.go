// statistics.go
/*
Copyright 2021 Bruce Golden and Matt Spangler

Permission is hereby granted, free of charge, to any person obtaining a copy of
this software and associated documentation files (the "Software"), to deal in
the Software without restriction, including without limitation the rights to
use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
of the Software, and to permit persons to whom the Software is furnished to do
so, subject to the following conditions:
The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package varStuff

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
)

// Summary is the descriptive statistics of one trait over a population
type Summary struct {
	N      int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	SD     float64 // Sample standard deviation, 0 when N < 2
	Q1     float64
	Q3     float64
}

// Describe summarizes values.  An empty slice gives a zero Summary.
func Describe(values []float64) Summary {
	var s Summary
	s.N = len(values)
	if s.N == 0 {
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q1 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	s.Q3 = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	mid := s.N / 2
	if s.N%2 == 1 {
		s.Median = sorted[mid]
	} else {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	}

	if s.N > 1 {
		s.SD = stat.StdDev(sorted, nil)
	}
	return s
}

// TraitStatistics maps each requested trait to its summary
type TraitStatistics map[traits.Key]Summary

// Values collects the evaluations of one trait.  Females without an
// evaluation are skipped, not counted as 0.
func Values(females []animal.FemaleRecord, key traits.Key) []float64 {
	var out []float64
	for _, f := range females {
		if v, ok := f.PTA[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Statistics describes each trait in keys over the females
func Statistics(c *traits.Catalog, females []animal.FemaleRecord, keys []traits.Key) (TraitStatistics, error) {
	if err := c.Validate(keys...); err != nil {
		return nil, err
	}
	ts := make(TraitStatistics, len(keys))
	for _, k := range keys {
		ts[k] = Describe(Values(females, k))
	}
	return ts, nil
}

// YearMean is one point of a trend series
type YearMean struct {
	Year int
	Mean float64
	N    int
}

// YearlyMeans groups the females by birth year and averages the trait.
// Years with no evaluated female are left out.  The result is ordered by
// year.
func YearlyMeans(females []animal.FemaleRecord, key traits.Key) []YearMean {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, f := range females {
		if f.BirthDate.IsZero() {
			continue
		}
		v, ok := f.PTA[key]
		if !ok {
			continue
		}
		y := f.BirthDate.Year()
		sums[y] += v
		counts[y]++
	}

	out := make([]YearMean, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearMean{Year: y, Mean: sums[y] / float64(n), N: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// MotherAverages is the mean PTA of each breeding cohort.  A trait with no
// evaluated female in a cohort is absent from that cohort's PTA.
type MotherAverages [animal.NCohorts]animal.PTA

// CohortMeans classifies the females as of asOf and averages each trait
// within each breeding cohort
func CohortMeans(c *traits.Catalog, females []animal.FemaleRecord, asOf time.Time, keys []traits.Key) (MotherAverages, error) {
	var m MotherAverages
	if err := c.Validate(keys...); err != nil {
		return m, err
	}

	var groups [animal.NCohorts][]animal.FemaleRecord
	for _, f := range females {
		if cohort := animal.Classify(f, asOf); cohort.IsBreeding() {
			groups[cohort] = append(groups[cohort], f)
		}
	}

	for i := range m {
		m[i] = make(animal.PTA, len(keys))
		for _, k := range keys {
			v := Values(groups[i], k)
			if len(v) > 0 {
				m[i][k] = stat.Mean(v, nil)
			}
		}
	}
	return m, nil
}
