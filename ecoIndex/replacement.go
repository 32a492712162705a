// replacement
// Sizes the replacement heifer program in seven forward phases
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
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/metrics"
)

var ErrInvalidSplit = errors.New("tier percentages must sum to 100")

// SemenCategory is the kind of service used for an insemination
type SemenCategory int

const (
	SexedSemen SemenCategory = iota
	ConventionalSemen
	BeefSemen
	Embryo
	SexedEmbryo
)

const NCategories = 5

var Categories = [NCategories]SemenCategory{SexedSemen, ConventionalSemen, BeefSemen, Embryo, SexedEmbryo}

func (c SemenCategory) String() string {
	switch c {
	case SexedSemen:
		return "Sexed"
	case ConventionalSemen:
		return "Conventional"
	case BeefSemen:
		return "Beef"
	case Embryo:
		return "Embryo"
	case SexedEmbryo:
		return "SexedEmbryo"
	default:
		return "Unknown"
	}
}

func ParseSemenCategory(s string) (SemenCategory, error) {
	t := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s))
	for _, c := range Categories {
		if t == strings.ToLower(c.String()) {
			return c, nil
		}
	}
	return SexedSemen, fmt.Errorf("unknown semen category %q", s)
}

// FemaleRate is the share of dairy heifer calves the category gives.  Beef
// crosses are never kept as replacements.
func (c SemenCategory) FemaleRate(r animal.FemaleBirthRates) float64 {
	switch c {
	case SexedSemen, SexedEmbryo:
		return r.Sexed
	case BeefSemen:
		return 0
	default:
		return r.Conventional
	}
}

// Group of females bred
type Group int

const (
	Cows Group = iota
	Heifers
)

const NGroups = 2

func (g Group) String() string {
	if g == Cows {
		return "Cows"
	}
	return "Heifers"
}

//
// Phase 1: growth
//

type GrowthInputs struct {
	HerdSize              int     // Adult cows now
	Heifers               int     // Heifers now
	DesiredHerdSize       int     // Adult cows wanted
	DiscardRate           float64 // Cows leaving the herd per year
	EligibleHeiferRatio   float64 // Heifers old and big enough to breed
	AbortionRate          float64 // Pregnancy loss in mature cows
	CalvingIntervalMonths float64
	Mortality             float64 // Heifer calves lost before calving
}

func (g GrowthInputs) Validate() error {
	if g.HerdSize < 0 || g.Heifers < 0 || g.DesiredHerdSize < 0 {
		return errors.New("herd sizes must not be negative")
	}
	if !(g.CalvingIntervalMonths > 0) {
		return fmt.Errorf("calving interval must be positive, got %v", g.CalvingIntervalMonths)
	}
	for _, r := range []struct {
		name string
		v    float64
	}{
		{"discard rate", g.DiscardRate},
		{"eligible heifer ratio", g.EligibleHeiferRatio},
		{"abortion rate", g.AbortionRate},
		{"mortality", g.Mortality},
	} {
		if err := animal.ValidateRate(r.name, r.v); err != nil {
			return err
		}
	}
	if g.AbortionRate == 1 || g.Mortality == 1 {
		return fmt.Errorf("%w: abortion rate and mortality must be below 1", animal.ErrInvalidRate)
	}
	return nil
}

// GrowthPhase is the annual replacement need
type GrowthPhase struct {
	Discards           float64 // Cows culled per year
	Growth             float64 // Cows added to reach the desired size
	RequiredHeifers    float64 // Heifers that must calve in per year, mortality included
	EligibleHeifers    float64
	CowsCalvingPerYear float64
}

func Growth(in GrowthInputs) GrowthPhase {
	var g GrowthPhase
	g.Discards = float64(in.HerdSize) * in.DiscardRate
	g.Growth = math.Max(float64(in.DesiredHerdSize-in.HerdSize), 0)
	g.RequiredHeifers = (g.Discards + g.Growth) / (1 - in.Mortality)
	g.EligibleHeifers = float64(in.Heifers) * in.EligibleHeiferRatio
	g.CowsCalvingPerYear = float64(in.HerdSize) * 12 / in.CalvingIntervalMonths * (1 - in.AbortionRate)
	return g
}

//
// Phase 2: conception
//

// ConceptionTable is a conception rate per semen category
type ConceptionTable [NCategories]float64

// ConceptionInputs holds the rates for each group
type ConceptionInputs [NGroups]ConceptionTable

func (c ConceptionInputs) Validate() error {
	for g, t := range c {
		for i, r := range t {
			if err := animal.ValidateRate(Categories[i].String()+" conception", r); err != nil {
				return fmt.Errorf("%s: %w", Group(g), err)
			}
		}
	}
	return nil
}

//
// Phase 3: genetic strategy
//

// Split divides females by genetic merit.  The three percentages sum to 100.
type Split struct {
	Top    float64
	Middle float64
	Bottom float64
}

func NewSplit(top, middle, bottom float64) (Split, error) {
	s := Split{top, middle, bottom}
	return s, s.Validate()
}

func (s Split) Validate() error {
	for _, v := range []float64{s.Top, s.Middle, s.Bottom} {
		if v < 0 || v > 100 || math.IsNaN(v) {
			return fmt.Errorf("%w: %v", ErrInvalidSplit, s)
		}
	}
	if math.Abs(s.Top+s.Middle+s.Bottom-100) > 1e-9 {
		return fmt.Errorf("%w: %v", ErrInvalidSplit, s)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// SetTop moves the top tier.  Middle gives way first and bottom takes what
// is left.
func (s Split) SetTop(v float64) Split {
	s.Top = clamp(v, 0, 100)
	remaining := 100 - s.Top
	s.Middle = math.Min(s.Middle, remaining)
	s.Bottom = remaining - s.Middle
	return s
}

// SetMiddle moves the middle tier within what top leaves; bottom takes the rest
func (s Split) SetMiddle(v float64) Split {
	s.Middle = clamp(v, 0, 100-s.Top)
	s.Bottom = 100 - s.Top - s.Middle
	return s
}

// SetBottom moves the bottom tier within what top leaves; middle takes the rest
func (s Split) SetBottom(v float64) Split {
	s.Bottom = clamp(v, 0, 100-s.Top)
	s.Middle = 100 - s.Top - s.Bottom
	return s
}

// Share is the percentage of females in tier t
func (s Split) Share(t MeritTier) float64 {
	return [NTiers]float64{s.Top, s.Middle, s.Bottom}[t]
}

func (s Split) shares() [NTiers]float64 {
	return [NTiers]float64{s.Top / 100, s.Middle / 100, s.Bottom / 100}
}

// MeritTier of the split
type MeritTier int

const (
	TopTier MeritTier = iota
	MiddleTier
	BottomTier
)

const NTiers = 3

func (t MeritTier) String() string {
	return [...]string{"Top", "Middle", "Bottom"}[t]
}

// ServicePlan is the category used at the 1st, 2nd and 3rd service
type ServicePlan [3]SemenCategory

// GroupStrategy is the split of one group and the services of each tier
type GroupStrategy struct {
	Split    Split
	Services [NTiers]ServicePlan
}

type Strategy [NGroups]GroupStrategy

//
// Phase 4: inseminations and pregnancies
//

// Volume is the number of inseminations done now per month
type Volume [NGroups]float64

// Period counts
type Period struct {
	Monthly   float64
	Quarterly float64
	Annual    float64
}

func monthly(m float64) Period {
	return Period{Monthly: m, Quarterly: 3 * m, Annual: 12 * m}
}

func (p Period) Sub(q Period) Period {
	return Period{p.Monthly - q.Monthly, p.Quarterly - q.Quarterly, p.Annual - q.Annual}
}

// FemalePlan is the expected fate of one female entering the program
type FemalePlan struct {
	Services      [NCategories]float64 // Inseminations by category
	Pregnancies   [NCategories]float64 // Pregnancies by category
	TotalServices float64
	Pregnant      float64
}

// PlanFemale blends the tiers of a group by their share of females
func PlanFemale(gs GroupStrategy, rates ConceptionTable) FemalePlan {
	var fp FemalePlan
	shares := gs.Split.shares()
	for t, plan := range gs.Services {
		if shares[t] == 0 {
			continue
		}
		o := animal.BreedServices(rates[plan[0]], rates[plan[1]], rates[plan[2]])
		for i, c := range plan {
			fp.Services[c] += shares[t] * o.Services[i]
			fp.Pregnancies[c] += shares[t] * o.Pregnancies[i]
		}
		fp.TotalServices += shares[t] * o.TotalServices
		fp.Pregnant += shares[t] * o.Pregnant
	}
	return fp
}

// GroupInseminations is the current and needed activity of one group
type GroupInseminations struct {
	Plan                       FemalePlan
	FemalesBred                Period
	Inseminations              Period
	Pregnancies                Period
	PregnanciesByCategory      [NCategories]float64 // Annual
	PregnanciesPerInsemination Ratio
	NeededPregnancies          Period
	Delta                      Period // Current less needed
}

type InseminationPhase [NGroups]GroupInseminations

func Inseminations(g GrowthInputs, growth GrowthPhase, c ConceptionInputs, s Strategy, v Volume) InseminationPhase {
	needed := [NGroups]float64{
		float64(g.DesiredHerdSize) * 12 / g.CalvingIntervalMonths / (1 - g.AbortionRate),
		growth.RequiredHeifers / (1 - g.AbortionRate),
	}

	var ph InseminationPhase
	for grp := range ph {
		gi := &ph[grp]
		gi.Plan = PlanFemale(s[grp], c[grp])
		females := Div(v[grp], gi.Plan.TotalServices).Or(0)
		gi.FemalesBred = monthly(females)
		gi.Inseminations = monthly(v[grp])
		gi.Pregnancies = monthly(females * gi.Plan.Pregnant)
		for i := range gi.PregnanciesByCategory {
			gi.PregnanciesByCategory[i] = 12 * females * gi.Plan.Pregnancies[i]
		}
		gi.PregnanciesPerInsemination = Div(gi.Plan.Pregnant, gi.Plan.TotalServices)
		gi.NeededPregnancies = monthly(needed[grp] / 12)
		gi.Delta = gi.Pregnancies.Sub(gi.NeededPregnancies)
	}
	return ph
}

//
// Phase 5: doses
//

type DoseCount struct {
	Annual  float64
	Monthly float64
	Weekly  float64
}

func annual(a float64) DoseCount {
	return DoseCount{Annual: a, Monthly: a / 12, Weekly: a / 52}
}

type DosePhase struct {
	FemalesToBreed [NGroups]Ratio // Undefined when the plan cannot get a female pregnant
	ByGroup        [NGroups][NCategories]DoseCount
	Total          [NCategories]DoseCount
}

// Doses needed to reach the pregnancy targets.  For each category this is
// its share of the target pregnancies over its conception rate, which is
// the expected number of services.
func Doses(ins InseminationPhase) DosePhase {
	var d DosePhase
	var total [NCategories]float64
	for grp, gi := range ins {
		d.FemalesToBreed[grp] = Div(gi.NeededPregnancies.Annual, gi.Plan.Pregnant)
		females := d.FemalesToBreed[grp].Or(0)
		for i := range gi.Plan.Services {
			n := females * gi.Plan.Services[i]
			d.ByGroup[grp][i] = annual(n)
			total[i] += n
		}
	}
	for i, n := range total {
		d.Total[i] = annual(n)
	}
	return d
}

//
// Phase 6: investment and sales
//

type Prices struct {
	Dose              [NCategories]decimal.Decimal
	DairyBullCalf     decimal.Decimal
	BeefCrossCalf     decimal.Decimal
	SurplusHeifer     decimal.Decimal
	CullCow           decimal.Decimal
	ReplacementHeifer decimal.Decimal // Value of a heifer kept
}

func (p Prices) Validate() error {
	all := append(p.Dose[:], p.DairyBullCalf, p.BeefCrossCalf, p.SurplusHeifer, p.CullCow, p.ReplacementHeifer)
	for _, d := range all {
		if d.IsNegative() {
			return fmt.Errorf("negative price %s", d)
		}
	}
	return nil
}

// Calves born from the current pregnancies
type Calves struct {
	DairyHeifers    float64 // Dairy heifer calves born
	Replacements    float64 // Heifer calves surviving to calving
	DairyBulls      float64
	BeefCross       float64
	SurplusHeifers  float64
	RetainedHeifers float64
}

func CalfCrop(g GrowthInputs, growth GrowthPhase, ins InseminationPhase, birth animal.FemaleBirthRates) Calves {
	var c Calves
	for _, gi := range ins {
		for i, preg := range gi.PregnanciesByCategory {
			born := preg * (1 - g.AbortionRate)
			cat := Categories[i]
			if cat == BeefSemen {
				c.BeefCross += born
				continue
			}
			f := born * cat.FemaleRate(birth)
			c.DairyHeifers += f
			c.DairyBulls += born - f
		}
	}
	c.Replacements = c.DairyHeifers * (1 - g.Mortality)
	c.RetainedHeifers = math.Min(c.Replacements, growth.RequiredHeifers)
	c.SurplusHeifers = c.Replacements - c.RetainedHeifers
	return c
}

type InvestmentPhase struct {
	DoseCost   [NCategories]decimal.Decimal
	Investment decimal.Decimal
	Calves     Calves
	CullCows   float64

	DairyBullRevenue     decimal.Decimal
	BeefCrossRevenue     decimal.Decimal
	SurplusHeiferRevenue decimal.Decimal
	CullCowRevenue       decimal.Decimal
	Revenue              decimal.Decimal
}

func times(n float64, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromFloat(n))
}

func Investment(growth GrowthPhase, doses DosePhase, calves Calves, p Prices) InvestmentPhase {
	var inv InvestmentPhase
	for i, d := range doses.Total {
		inv.DoseCost[i] = times(d.Annual, p.Dose[i])
		inv.Investment = inv.Investment.Add(inv.DoseCost[i])
	}

	inv.Calves = calves
	inv.CullCows = growth.Discards
	inv.DairyBullRevenue = times(calves.DairyBulls, p.DairyBullCalf)
	inv.BeefCrossRevenue = times(calves.BeefCross, p.BeefCrossCalf)
	inv.SurplusHeiferRevenue = times(calves.SurplusHeifers, p.SurplusHeifer)
	inv.CullCowRevenue = times(growth.Discards, p.CullCow)
	inv.Revenue = decimal.Sum(inv.DairyBullRevenue, inv.BeefCrossRevenue, inv.SurplusHeiferRevenue, inv.CullCowRevenue)
	return inv
}

//
// Phase 7: return
//

type ROIPhase struct {
	Investment      decimal.Decimal
	Revenue         decimal.Decimal
	RetainedValue   decimal.Decimal
	ROI             decimal.Decimal
	HeifersProduced float64
	HeifersRequired float64
	ProducedRatio   Ratio // Produced over required
}

func Return(growth GrowthPhase, inv InvestmentPhase, p Prices) ROIPhase {
	r := ROIPhase{
		Investment:      inv.Investment,
		Revenue:         inv.Revenue,
		RetainedValue:   times(inv.Calves.RetainedHeifers, p.ReplacementHeifer),
		HeifersProduced: inv.Calves.Replacements,
		HeifersRequired: growth.RequiredHeifers,
	}
	r.ROI = r.Revenue.Add(r.RetainedValue).Sub(r.Investment)
	r.ProducedRatio = Div(r.HeifersProduced, r.HeifersRequired)
	return r
}

//
// Pipeline
//

// ReplacementInputs are the operator's answers for all phases
type ReplacementInputs struct {
	Growth     GrowthInputs
	Conception ConceptionInputs
	Strategy   Strategy
	Volume     Volume
	Prices     Prices
	BirthRates *animal.FemaleBirthRates // nil for the published rates
}

func (in ReplacementInputs) Validate() error {
	if err := in.Growth.Validate(); err != nil {
		return fmt.Errorf("growth: %w", err)
	}
	if err := in.Conception.Validate(); err != nil {
		return fmt.Errorf("conception: %w", err)
	}
	for g, s := range in.Strategy {
		if err := s.Split.Validate(); err != nil {
			return fmt.Errorf("%s strategy: %w", Group(g), err)
		}
		for _, plan := range s.Services {
			for _, c := range plan {
				if c < SexedSemen || c > SexedEmbryo {
					return fmt.Errorf("%s strategy: unknown semen category %d", Group(g), c)
				}
			}
		}
	}
	for g, v := range in.Volume {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s monthly inseminations must be a non-negative number, got %v", Group(g), v)
		}
	}
	if in.BirthRates != nil {
		if err := in.BirthRates.Validate(); err != nil {
			return err
		}
	}
	return in.Prices.Validate()
}

// ReplacementPlan keeps the output of every phase
type ReplacementPlan struct {
	Id            uuid.UUID
	Growth        GrowthPhase
	Conception    ConceptionInputs
	Strategy      Strategy
	Inseminations InseminationPhase
	Doses         DosePhase
	Investment    InvestmentPhase
	Return        ROIPhase
}

type Planner struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewPlanner(logger *zap.Logger, m *metrics.Collector) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{logger: logger, metrics: m}
}

// Plan runs the seven phases in order
func (p *Planner) Plan(in ReplacementInputs) (plan ReplacementPlan, err error) {
	start := time.Now()
	defer func() { p.metrics.Projection("replacement", start, err) }()

	if err = in.Validate(); err != nil {
		return ReplacementPlan{}, err
	}
	birth := animal.DefaultFemaleBirthRates()
	if in.BirthRates != nil {
		birth = *in.BirthRates
	}

	plan.Id = uuid.New()
	plan.Growth = Growth(in.Growth)
	plan.Conception = in.Conception
	plan.Strategy = in.Strategy
	plan.Inseminations = Inseminations(in.Growth, plan.Growth, in.Conception, in.Strategy, in.Volume)
	plan.Doses = Doses(plan.Inseminations)
	calves := CalfCrop(in.Growth, plan.Growth, plan.Inseminations, birth)
	plan.Investment = Investment(plan.Growth, plan.Doses, calves, in.Prices)
	plan.Return = Return(plan.Growth, plan.Investment, in.Prices)

	for g, fb := range plan.Doses.FemalesToBreed {
		if !fb.Defined {
			p.logger.Warn("no pregnancies possible with this strategy", zap.Stringer("group", Group(g)))
		}
	}
	p.logger.Debug("replacement plan",
		zap.String("id", plan.Id.String()),
		zap.Float64("requiredHeifers", plan.Growth.RequiredHeifers),
		zap.Float64("producedHeifers", plan.Return.HeifersProduced),
		zap.String("roi", plan.Return.ROI.StringFixed(2)))
	return plan, nil
}
