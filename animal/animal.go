// animal project animal.go
//
// Defines the females, sires and their cohorts
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
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
)

// Cohort is the parity/age bucket of a female
type Cohort int

const (
	Heifer        Cohort = iota // Parity 0, at least 12 months old
	Primiparous                 // 1st lactation
	Secundiparous               // 2nd lactation
	Multiparous                 // 3rd lactation and later
	Calf                        // Under 12 months, not a breeding cohort
	Undetermined                // No parity and no birth date
)

// NCohorts is the number of breeding cohorts
const NCohorts = 4

// BreedingCohorts in index order.  PopulationCounts, CohortDoses and
// CohortRates are all indexed by these values.
var BreedingCohorts = [NCohorts]Cohort{Heifer, Primiparous, Secundiparous, Multiparous}

func (c Cohort) String() string {
	switch c {
	case Heifer:
		return "Heifer"
	case Primiparous:
		return "Primiparous"
	case Secundiparous:
		return "Secundiparous"
	case Multiparous:
		return "Multiparous"
	case Calf:
		return "Calf"
	case Undetermined:
		return "Undetermined"
	default:
		return "Unknown"
	}
}

// IsBreeding is true for the four cohorts that count toward the population
func (c Cohort) IsBreeding() bool {
	return c >= Heifer && c <= Multiparous
}

// ParseCohort accepts the cohort names, case insensitive
func ParseCohort(s string) (Cohort, error) {
	for _, c := range []Cohort{Heifer, Primiparous, Secundiparous, Multiparous, Calf, Undetermined} {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return Undetermined, fmt.Errorf("unknown cohort %q", s)
}

// PTA maps trait key to predicted transmitting ability.  Absent keys mean
// the animal has no evaluation for that trait.
type PTA map[traits.Key]float64

// FemaleRecord is an immutable input row.  Cohort and statistics are
// derived from it, never stored on it.
type FemaleRecord struct {
	Id        string
	BirthDate time.Time // Zero when unknown
	Parity    int       // Lactation number, 0 or negative when unknown
	PTA       PTA
}

// SemenType of a sire's doses
type SemenType int

const (
	Conventional SemenType = iota
	Sexed
)

func (s SemenType) String() string {
	switch s {
	case Conventional:
		return "Conventional"
	case Sexed:
		return "Sexed"
	default:
		return "Unknown"
	}
}

func ParseSemenType(s string) (SemenType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conventional", "conv", "c":
		return Conventional, nil
	case "sexed", "s":
		return Sexed, nil
	}
	return Conventional, fmt.Errorf("unknown semen type %q", s)
}

// SireRecord is a candidate bull with its published evaluations
type SireRecord struct {
	Id           string   // NAAB code or registration number
	Aliases      []string // Other codes the sire is known by
	Name         string
	Company      string
	PTA          PTA
	SemenType    SemenType
	PricePerDose decimal.Decimal
}

// CohortDoses is a dose allocation per breeding cohort
type CohortDoses [NCohorts]int

func (d CohortDoses) Total() int {
	var n int
	for _, v := range d {
		n += v
	}
	return n
}
