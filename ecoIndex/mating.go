// mating
// Projects the calves, genetic merit, cost and return of a sire allocation
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
package ecoIndex

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/metrics"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
)

// MaxPlanSires is the most sires one mating plan may use
const MaxPlanSires = 5

var ErrNegativeDoses = errors.New("negative dose allocation")

// SireAllocation is a candidate sire and his doses per cohort
type SireAllocation struct {
	Sire  animal.SireRecord
	Doses animal.CohortDoses
}

// MatingPlan is everything one simulation needs.  It is not modified.
type MatingPlan struct {
	Population     animal.PopulationCounts
	MotherAverages [animal.NCohorts]animal.PTA // Mean PTA of the dams per cohort
	Rates          animal.CohortRates
	BirthRates     *animal.FemaleBirthRates // nil for the published rates
	Sires          []SireAllocation
	Traits         []traits.Key
	ProfitTrait    traits.Key // Defaults to net merit
}

// CohortProjection is one sire bred to one cohort
type CohortProjection struct {
	Cohort    animal.Cohort
	Funnel    animal.Funnel
	Predicted animal.PTA // Direct average of the cohort's dams and the sire
}

// SireProjection sums a sire over the cohorts.  Pooled is weighted by the
// female calves of each cohort.
type SireProjection struct {
	SireId      string
	Name        string
	SemenType   animal.SemenType
	Cohorts     [animal.NCohorts]CohortProjection
	Totals      animal.Funnel
	Pooled      animal.PTA
	Cost        decimal.Decimal
	CostPerCalf decimal.NullDecimal // Invalid without calves
	ROI         decimal.NullDecimal // Invalid when the profit trait is not selected
}

// PlanProjection is the result of a simulation
type PlanProjection struct {
	Id          uuid.UUID
	ProfitTrait traits.Key
	Sires       []SireProjection
	Totals      animal.Funnel
	Pooled      animal.PTA // Weighted by each sire's female calves
	Cost        decimal.Decimal
	CostPerCalf decimal.NullDecimal
	ROI         decimal.NullDecimal
	Warnings    []string
}

// ROIAvailable reports whether the profit trait was among the selected traits
func (p PlanProjection) ROIAvailable() bool { return p.ROI.Valid }

// Simulator runs mating plans
type Simulator struct {
	predictor *animal.Predictor
	logger    *zap.Logger
	metrics   *metrics.Collector
}

// NewSimulator uses the predictor's catalog and missing trait policy for the
// per-cohort predictions
func NewSimulator(p *animal.Predictor, logger *zap.Logger, m *metrics.Collector) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{predictor: p, logger: logger, metrics: m}
}

func (s *Simulator) validate(plan *MatingPlan) error {
	if len(plan.Sires) == 0 {
		return animal.ErrNoSireSelected
	}
	if len(plan.Sires) > MaxPlanSires {
		return fmt.Errorf("%w: %d, at most %d", animal.ErrTooManySires, len(plan.Sires), MaxPlanSires)
	}
	if err := s.predictor.ValidateTraits(plan.Traits); err != nil {
		return err
	}
	if plan.ProfitTrait == "" {
		plan.ProfitTrait = traits.NetMerit
	}
	if err := s.predictor.Catalog().Validate(plan.ProfitTrait); err != nil {
		return fmt.Errorf("profit trait: %w", err)
	}
	if err := plan.Rates.Validate(); err != nil {
		return err
	}
	if plan.BirthRates != nil {
		if err := plan.BirthRates.Validate(); err != nil {
			return err
		}
	}
	for _, a := range plan.Sires {
		for i, d := range a.Doses {
			if d < 0 {
				return fmt.Errorf("%w: sire %s, %s = %d", ErrNegativeDoses, a.Sire.Id, animal.BreedingCohorts[i], d)
			}
		}
	}
	return nil
}

// Run simulates the plan.  Configuration errors fail the whole call.
func (s *Simulator) Run(plan MatingPlan) (proj PlanProjection, err error) {
	start := time.Now()
	defer func() { s.metrics.Projection("mating", start, err) }()

	if err = s.validate(&plan); err != nil {
		return PlanProjection{}, err
	}
	birth := animal.DefaultFemaleBirthRates()
	if plan.BirthRates != nil {
		birth = *plan.BirthRates
	}
	profitSelected := false
	for _, k := range plan.Traits {
		if k == plan.ProfitTrait {
			profitSelected = true
		}
	}

	proj = PlanProjection{Id: uuid.New(), ProfitTrait: plan.ProfitTrait}
	for _, a := range plan.Sires {
		sp := s.projectSire(plan, a, birth.For(a.Sire.SemenType), profitSelected)
		proj.Sires = append(proj.Sires, sp)
		proj.Totals = proj.Totals.Add(sp.Totals)
		proj.Cost = proj.Cost.Add(sp.Cost)
	}

	weights := make([]float64, len(proj.Sires))
	values := make([]animal.PTA, len(proj.Sires))
	for i, sp := range proj.Sires {
		weights[i] = sp.Totals.FemaleCalves
		values[i] = sp.Pooled
	}
	proj.Pooled = pool(plan.Traits, weights, values)
	proj.CostPerCalf = DivMoney(proj.Cost, proj.Totals.FemaleCalves)
	if profitSelected {
		proj.ROI = roi(proj.Pooled, plan.ProfitTrait, proj.Totals.FemaleCalves, proj.Cost)
	}

	proj.Warnings = s.overAllocation(plan)
	s.logger.Debug("mating plan simulated",
		zap.String("id", proj.Id.String()),
		zap.Int("sires", len(proj.Sires)),
		zap.Float64("femaleCalves", proj.Totals.FemaleCalves),
		zap.String("cost", proj.Cost.StringFixed(2)))
	return proj, nil
}

func (s *Simulator) projectSire(plan MatingPlan, a SireAllocation, femaleRate float64, profitSelected bool) SireProjection {
	sp := SireProjection{
		SireId:    a.Sire.Id,
		Name:      a.Sire.Name,
		SemenType: a.Sire.SemenType,
	}
	weights := make([]float64, animal.NCohorts)
	values := make([]animal.PTA, animal.NCohorts)
	for i, c := range animal.BreedingCohorts {
		cp := CohortProjection{
			Cohort:    c,
			Funnel:    animal.Inseminate(float64(a.Doses[i]), plan.Rates[i], femaleRate),
			Predicted: s.predictor.Direct(plan.MotherAverages[i], a.Sire.PTA, plan.Traits),
		}
		sp.Cohorts[i] = cp
		sp.Totals = sp.Totals.Add(cp.Funnel)
		weights[i] = cp.Funnel.FemaleCalves
		values[i] = cp.Predicted
	}

	sp.Pooled = pool(plan.Traits, weights, values)
	sp.Cost = a.Sire.PricePerDose.Mul(decimal.NewFromInt(int64(a.Doses.Total())))
	sp.CostPerCalf = DivMoney(sp.Cost, sp.Totals.FemaleCalves)
	if profitSelected {
		sp.ROI = roi(sp.Pooled, plan.ProfitTrait, sp.Totals.FemaleCalves, sp.Cost)
	}
	return sp
}

// pool is the weighted mean of values trait by trait.  Members without the
// trait do not count.  A trait with no weight behind it is left out.
func pool(keys []traits.Key, weights []float64, values []animal.PTA) animal.PTA {
	out := make(animal.PTA, len(keys))
	for _, k := range keys {
		var sum, w float64
		for i, v := range values {
			x, ok := v[k]
			if !ok || weights[i] == 0 {
				continue
			}
			sum += weights[i] * x
			w += weights[i]
		}
		if w > 0 {
			out[k] = sum / w
		}
	}
	return out
}

// roi is pooled profit per calf times calves less the cost.  Without
// calves it is simply the loss of the cost.  Calves without a pooled profit
// value give no ROI.
func roi(pooled animal.PTA, profit traits.Key, calves float64, cost decimal.Decimal) decimal.NullDecimal {
	if calves == 0 {
		return decimal.NewNullDecimal(cost.Neg())
	}
	v, ok := pooled[profit]
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v * calves).Sub(cost))
}

// overAllocation warns about cohorts given more doses than females
func (s *Simulator) overAllocation(plan MatingPlan) []string {
	var total animal.CohortDoses
	for _, a := range plan.Sires {
		for i, d := range a.Doses {
			total[i] += d
		}
	}
	var warnings []string
	for i, c := range animal.BreedingCohorts {
		if n := plan.Population.Of(c); total[i] > n {
			w := fmt.Sprintf("%s: %d doses allocated to %d females", c, total[i], n)
			warnings = append(warnings, w)
			s.logger.Warn("cohort over-allocated", zap.String("cohort", c.String()), zap.Int("doses", total[i]), zap.Int("females", n))
		}
	}
	return warnings
}
