// animal project herd.go
// Counts the herd's females by cohort and keeps the counts the plan uses,
// either derived from the records or set by hand.
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
package animal

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PopulationCounts holds the number of females per breeding cohort.
// Calves and Undetermined are reported but are never part of Total.
type PopulationCounts struct {
	Heifers       int
	Primiparous   int
	Secundiparous int
	Multiparous   int
	Total         int // Sum of the four breeding cohorts
	Calves        int
	Undetermined  int
}

// Of returns the count for a breeding cohort, 0 for any other
func (p PopulationCounts) Of(c Cohort) int {
	switch c {
	case Heifer:
		return p.Heifers
	case Primiparous:
		return p.Primiparous
	case Secundiparous:
		return p.Secundiparous
	case Multiparous:
		return p.Multiparous
	}
	return 0
}

// With returns a copy with cohort c set to n and the total recomputed
func (p PopulationCounts) With(c Cohort, n int) PopulationCounts {
	switch c {
	case Heifer:
		p.Heifers = n
	case Primiparous:
		p.Primiparous = n
	case Secundiparous:
		p.Secundiparous = n
	case Multiparous:
		p.Multiparous = n
	}
	return p.normalize()
}

// Cows is every female that has calved at least once
func (p PopulationCounts) Cows() int {
	return p.Primiparous + p.Secundiparous + p.Multiparous
}

func (p PopulationCounts) normalize() PopulationCounts {
	p.Total = p.Heifers + p.Primiparous + p.Secundiparous + p.Multiparous
	return p
}

func (p PopulationCounts) validate() error {
	for _, c := range BreedingCohorts {
		if p.Of(c) < 0 {
			return fmt.Errorf("%s count cannot be negative, got %d", c, p.Of(c))
		}
	}
	return nil
}

// CountByCohort classifies every record as of asOf and counts the cohorts
func CountByCohort(females []FemaleRecord, asOf time.Time) PopulationCounts {
	var p PopulationCounts
	for i := range females {
		switch Classify(females[i], asOf) {
		case Heifer:
			p.Heifers++
		case Primiparous:
			p.Primiparous++
		case Secundiparous:
			p.Secundiparous++
		case Multiparous:
			p.Multiparous++
		case Calf:
			p.Calves++
		default:
			p.Undetermined++
		}
	}
	return p.normalize()
}

// CountMode is how the Population gets its counts
type CountMode int

const (
	Automatic CountMode = iota // Derived from the female records
	Manual                     // Typed in by the operator
)

func (m CountMode) String() string {
	if m == Manual {
		return "manual"
	}
	return "automatic"
}

// Population keeps the counts a plan works from.  Listeners registered with
// OnChange are called only when the stored counts actually change, which
// keeps recomputation of mother averages from feeding back on itself.
type Population struct {
	mode      CountMode
	counts    PopulationCounts
	listeners []func(PopulationCounts)
	logger    *zap.Logger
}

func NewPopulation(logger *zap.Logger) *Population {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Population{logger: logger}
}

func (p *Population) Mode() CountMode          { return p.mode }
func (p *Population) Counts() PopulationCounts { return p.counts }

// OnChange registers fn to receive every new value of the counts
func (p *Population) OnChange(fn func(PopulationCounts)) {
	p.listeners = append(p.listeners, fn)
}

// Refresh recounts from the records when in automatic mode.  It returns
// false, and notifies no one, when in manual mode or when the fresh counts
// equal the stored ones.
func (p *Population) Refresh(females []FemaleRecord, asOf time.Time) bool {
	if p.mode == Manual {
		return false
	}
	return p.store(CountByCohort(females, asOf))
}

// UseAutomatic leaves manual mode and recounts from the records
func (p *Population) UseAutomatic(females []FemaleRecord, asOf time.Time) bool {
	p.mode = Automatic
	return p.store(CountByCohort(females, asOf))
}

// SetManual switches to manual mode and stores counts as given, except
// that Total is always the sum of the four cohorts.
func (p *Population) SetManual(counts PopulationCounts) (bool, error) {
	if err := counts.validate(); err != nil {
		return false, err
	}
	p.mode = Manual
	return p.store(counts.normalize()), nil
}

// Edit changes one cohort count.  Editing a field puts the population in
// manual mode.
func (p *Population) Edit(c Cohort, n int) (bool, error) {
	if !c.IsBreeding() {
		return false, fmt.Errorf("%s is not a breeding cohort", c)
	}
	if n < 0 {
		return false, fmt.Errorf("%s count cannot be negative, got %d", c, n)
	}
	p.mode = Manual
	return p.store(p.counts.With(c, n)), nil
}

func (p *Population) store(next PopulationCounts) bool {
	if next == p.counts {
		p.logger.Debug("population unchanged", zap.Stringer("mode", p.mode))
		return false
	}
	p.counts = next
	p.logger.Debug("population updated",
		zap.Stringer("mode", p.mode),
		zap.Int("heifers", next.Heifers),
		zap.Int("primiparous", next.Primiparous),
		zap.Int("secundiparous", next.Secundiparous),
		zap.Int("multiparous", next.Multiparous),
		zap.Int("total", next.Total))
	for _, fn := range p.listeners {
		fn(next)
	}
	return true
}
