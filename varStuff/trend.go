// trend.go
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
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
)

var (
	ErrInsufficientTrendData = errors.New("insufficient trend data")
	ErrZeroSpread            = errors.New("trait has no spread to standardize")
)

// Trend is a least squares line through yearly means
type Trend struct {
	Intercept float64
	Slope     float64 // Units per year
	Years     int     // Distinct years fitted
}

func (t Trend) Predict(year int) float64 {
	return t.Intercept + t.Slope*float64(year)
}

// YearDelta is the change of the fitted line from the year before
type YearDelta struct {
	Year  int
	Delta float64
}

// Deltas gives predicted(y) - predicted(y-1) for each year
func (t Trend) Deltas(years []int) []YearDelta {
	out := make([]YearDelta, len(years))
	for i, y := range years {
		out[i] = YearDelta{Year: y, Delta: t.Predict(y) - t.Predict(y-1)}
	}
	return out
}

// FitTrend fits mean on year by ordinary least squares.  At least two
// distinct years are needed.
func FitTrend(points []YearMean) (Trend, error) {
	distinct := make(map[int]bool)
	for _, p := range points {
		distinct[p.Year] = true
	}
	if len(distinct) < 2 {
		return Trend{}, fmt.Errorf("%w: %d distinct year(s), need 2", ErrInsufficientTrendData, len(distinct))
	}

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = float64(p.Year)
		y[i] = p.Mean
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return Trend{Intercept: alpha, Slope: beta, Years: len(distinct)}, nil
}

// FitTrendZ fits the same line on means standardized by the trait's global
// mean and standard deviation
func FitTrendZ(points []YearMean, mean, sd float64) (Trend, error) {
	if sd == 0 || math.IsNaN(sd) {
		return Trend{}, ErrZeroSpread
	}
	z := make([]YearMean, len(points))
	for i, p := range points {
		z[i] = YearMean{Year: p.Year, Mean: (p.Mean - mean) / sd, N: p.N}
	}
	return FitTrend(z)
}

// TraitTrend is the full trend analysis of one trait
type TraitTrend struct {
	Key      traits.Key
	Points   []YearMean
	Overall  Summary
	Raw      Trend
	Z        Trend
	ZDefined bool // False when the trait has no spread
	Deltas   []YearDelta
}

// AnalyzeTrend builds the yearly series of a trait and fits both lines
func AnalyzeTrend(c *traits.Catalog, females []animal.FemaleRecord, key traits.Key) (TraitTrend, error) {
	if err := c.Validate(key); err != nil {
		return TraitTrend{}, err
	}
	tt := TraitTrend{Key: key, Points: YearlyMeans(females, key)}

	var err error
	if tt.Raw, err = FitTrend(tt.Points); err != nil {
		return tt, fmt.Errorf("%s: %w", key, err)
	}

	// Only females that fed the series go into the global mean and sd
	var values []float64
	for _, f := range females {
		if v, ok := f.PTA[key]; ok && !f.BirthDate.IsZero() {
			values = append(values, v)
		}
	}
	tt.Overall = Describe(values)
	if tt.Z, err = FitTrendZ(tt.Points, tt.Overall.Mean, tt.Overall.SD); err == nil {
		tt.ZDefined = true
	}

	years := make([]int, 0, len(tt.Points))
	for _, p := range tt.Points[1:] {
		years = append(years, p.Year)
	}
	tt.Deltas = tt.Raw.Deltas(years)
	return tt, nil
}
