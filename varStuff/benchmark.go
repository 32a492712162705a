// benchmark.go
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
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
)

var ErrInvalidPercentile = errors.New("percentile cut must be in (0,100]")

// NotAvailable is shown for a trait the reference does not publish
const NotAvailable = "N/A"

// Reference is an external population, e.g. a breed or region, as a
// distribution of PTA values per trait
type Reference struct {
	Name   string
	Values map[traits.Key][]float64
}

// TopMean is the mean of the best pct percent of values, at least one.  The
// best values are the smallest when lowerIsBetter is set.
func TopMean(values []float64, pct float64, lowerIsBetter bool) (float64, error) {
	if !(pct > 0 && pct <= 100) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPercentile, pct)
	}
	if len(values) == 0 {
		return 0, nil
	}
	sorted := append([]float64(nil), values...)
	if lowerIsBetter {
		sort.Float64s(sorted)
	} else {
		sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	}
	n := int(math.Ceil(float64(len(sorted)) * pct / 100))
	if n < 1 {
		n = 1
	}
	return stat.Mean(sorted[:n], nil), nil
}

// Benchmark compares the herd with a reference for one trait
type Benchmark struct {
	Key         traits.Key
	TopPercent  float64
	HerdMean    float64
	HerdN       int
	TopMean     float64
	OverallMean float64
	ReferenceN  int
	Available   bool // False when the reference has no values for the trait

	LowerIsBetter bool
}

// Gap is how far the herd trails the reference top cut, positive when the
// herd is behind.  Not available without herd or reference values.
func (b Benchmark) Gap() (float64, bool) {
	if !b.Available || b.HerdN == 0 {
		return 0, false
	}
	if b.LowerIsBetter {
		return b.HerdMean - b.TopMean, true
	}
	return b.TopMean - b.HerdMean, true
}

// FormatHerd renders the herd mean, or NotAvailable when no female has a value
func (b Benchmark) FormatHerd(c *traits.Catalog) (string, error) {
	if b.HerdN == 0 {
		return NotAvailable, nil
	}
	return c.Format(b.Key, b.HerdMean)
}

// FormatReference renders the reference means or NotAvailable
func (b Benchmark) FormatReference(c *traits.Catalog) (top, overall string, err error) {
	if !b.Available {
		return NotAvailable, NotAvailable, nil
	}
	if top, err = c.Format(b.Key, b.TopMean); err != nil {
		return "", "", err
	}
	overall, err = c.Format(b.Key, b.OverallMean)
	return top, overall, err
}

// Compare benchmarks each trait of the herd against the reference at the
// top pct percent.  A trait the reference lacks is reported unavailable,
// never as 0.
func Compare(c *traits.Catalog, herd TraitStatistics, ref Reference, keys []traits.Key, pct float64) ([]Benchmark, error) {
	if err := c.Validate(keys...); err != nil {
		return nil, err
	}
	if !(pct > 0 && pct <= 100) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPercentile, pct)
	}

	out := make([]Benchmark, 0, len(keys))
	for _, k := range keys {
		t, _ := c.Lookup(k)
		h := herd[k]
		b := Benchmark{Key: k, TopPercent: pct, HerdMean: h.Mean, HerdN: h.N, LowerIsBetter: t.LowerIsBetter}
		if values := ref.Values[k]; len(values) > 0 {
			b.Available = true
			b.ReferenceN = len(values)
			b.OverallMean = stat.Mean(values, nil)
			b.TopMean, _ = TopMean(values, pct, t.LowerIsBetter)
		}
		out = append(out, b)
	}
	return out, nil
}
