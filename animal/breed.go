// breed
// Insemination funnel shared by the mating simulator and the replacement planner
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
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate is returned for a rate that is negative, above 1 or not finite
var ErrInvalidRate = errors.New("invalid rate")

// Expected share of heifer calves per confirmed pregnancy
const (
	SexedFemaleBirthRate        = 0.90
	ConventionalFemaleBirthRate = 0.47
)

// FemaleBirthRates can replace the published constants for one projection
type FemaleBirthRates struct {
	Sexed        float64
	Conventional float64
}

// DefaultFemaleBirthRates are the constants above
func DefaultFemaleBirthRates() FemaleBirthRates {
	return FemaleBirthRates{Sexed: SexedFemaleBirthRate, Conventional: ConventionalFemaleBirthRate}
}

func (f FemaleBirthRates) For(s SemenType) float64 {
	if s == Sexed {
		return f.Sexed
	}
	return f.Conventional
}

func (f FemaleBirthRates) Validate() error {
	if err := ValidateRate("sexed female birth rate", f.Sexed); err != nil {
		return err
	}
	return ValidateRate("conventional female birth rate", f.Conventional)
}

// FemaleBirthRate of the semen type using the published constants
func (s SemenType) FemaleBirthRate() float64 {
	return DefaultFemaleBirthRates().For(s)
}

// ValidateRate checks that v is a finite fraction in [0,1]
func ValidateRate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s = %v, must be within [0,1]", ErrInvalidRate, name, v)
	}
	return nil
}

// ReproRates of one cohort
type ReproRates struct {
	Conception          float64 // Inseminations that result in pregnancy
	PreExamConfirmation float64 // Pregnancies still confirmed at the pregnancy exam
}

func (r ReproRates) Validate() error {
	if err := ValidateRate("conception rate", r.Conception); err != nil {
		return err
	}
	return ValidateRate("pre-exam confirmation rate", r.PreExamConfirmation)
}

// CohortRates are the reproductive rates per breeding cohort
type CohortRates [NCohorts]ReproRates

func (c CohortRates) Validate() error {
	for i, r := range c {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", BreedingCohorts[i], err)
		}
	}
	return nil
}

// Funnel is what a number of doses becomes
type Funnel struct {
	Doses              float64
	Pregnancies        float64
	ConfirmedPregnancy float64
	FemaleCalves       float64
}

// Inseminate runs doses through conception, confirmation and sex ratio
func Inseminate(doses float64, r ReproRates, femaleBirthRate float64) Funnel {
	var f Funnel
	f.Doses = doses
	f.Pregnancies = doses * r.Conception
	f.ConfirmedPregnancy = f.Pregnancies * r.PreExamConfirmation
	f.FemaleCalves = f.ConfirmedPregnancy * femaleBirthRate
	return f
}

// Add accumulates another funnel
func (f Funnel) Add(g Funnel) Funnel {
	f.Doses += g.Doses
	f.Pregnancies += g.Pregnancies
	f.ConfirmedPregnancy += g.ConfirmedPregnancy
	f.FemaleCalves += g.FemaleCalves
	return f
}

// ServiceOutcome is the fate of one female bred up to len(rates) times,
// stopping at the first conception
type ServiceOutcome struct {
	Services      []float64 // Expected inseminations at each service
	Pregnancies   []float64 // Expected pregnancies at each service
	TotalServices float64
	Pregnant      float64 // Cumulative probability of pregnancy
}

// BreedServices calculates, for a female bred at successive services with
// the given per-service conception rates, the expected number of
// inseminations and pregnancies at each service
func BreedServices(rates ...float64) ServiceOutcome {
	var o ServiceOutcome
	open := 1.0
	for _, c := range rates {
		o.Services = append(o.Services, open)
		o.Pregnancies = append(o.Pregnancies, open*c)
		o.TotalServices += open
		o.Pregnant += open * c
		open *= 1 - c
	}
	return o
}
