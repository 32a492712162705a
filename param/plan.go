// plan
// Reads the hjson plan file that drives every projection
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
package param

import (
	"fmt"
	"os"
	"strings"
	"time"

	hjson "github.com/hjson/hjson-go/v4"
	"github.com/shopspring/decimal"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/ecoIndex"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
	"github.com/blgolden/iGenDecModel/dairyPlan/varStuff"
)

const DateLayout = "2006-01-02"

// The file_t types mirror the hjson file.  Plan is what the rest of the
// program uses.

type female_t struct {
	Id        string             `json:"id"`
	BirthDate string             `json:"birthDate"`
	Parity    int                `json:"parity"`
	PTA       map[string]float64 `json:"pta"`
}

type sire_t struct {
	Id        string             `json:"id"`
	Aliases   []string           `json:"aliases"`
	Name      string             `json:"name"`
	Company   string             `json:"company"`
	SemenType string             `json:"semenType"`
	Price     string             `json:"pricePerDose"`
	PTA       map[string]float64 `json:"pta"`
}

type pedigree_t struct {
	Female string `json:"female"`
	Sire   string `json:"sire"`
	Mgs    string `json:"mgs"`
	Mmgs   string `json:"mmgs"`
}

type rates_t struct {
	Conception float64 `json:"conception"`
	PreExam    float64 `json:"preExam"`
}

type allocation_t struct {
	Sire  string         `json:"sire"`
	Doses map[string]int `json:"doses"` // Cohort name to doses
}

type predict_t struct {
	Method      string   `json:"method"`
	Sire        string   `json:"sire"`
	CohortSires []string `json:"cohortSires"`
}

type strategy_t struct {
	Top      float64             `json:"top"`
	Middle   float64             `json:"middle"`
	Bottom   float64             `json:"bottom"`
	Services map[string][]string `json:"services"` // Tier to 1st, 2nd, 3rd service category
}

type prices_t struct {
	DairyBullCalf     string `json:"dairyBullCalf"`
	BeefCrossCalf     string `json:"beefCrossCalf"`
	SurplusHeifer     string `json:"surplusHeifer"`
	CullCow           string `json:"cullCow"`
	ReplacementHeifer string `json:"replacementHeifer"`
}

type replacement_t struct {
	HerdSize              int                           `json:"herdSize"`
	Heifers               int                           `json:"heifers"`
	DesiredHerdSize       int                           `json:"desiredHerdSize"`
	DiscardRate           float64                       `json:"discardRate"`
	EligibleHeiferRatio   float64                       `json:"eligibleHeiferRatio"`
	AbortionRate          float64                       `json:"abortionRate"`
	CalvingIntervalMonths float64                       `json:"calvingIntervalMonths"`
	Mortality             float64                       `json:"mortality"`
	Conception            map[string]map[string]float64 `json:"conception"`
	Strategy              map[string]strategy_t         `json:"strategy"`
	MonthlyInseminations  map[string]float64            `json:"monthlyInseminations"`
	DosePrices            map[string]string             `json:"dosePrices"`
	Prices                prices_t                      `json:"prices"`
}

type benchmark_t struct {
	Name       string               `json:"name"`
	TopPercent float64              `json:"topPercent"`
	Values     map[string][]float64 `json:"values"`
}

type birthRates_t struct {
	Sexed        float64 `json:"sexed"`
	Conventional float64 `json:"conventional"`
}

type planFile_t struct {
	AsOf          string             `json:"asOf"`
	CatalogFile   string             `json:"catalog"`
	Traits        []string           `json:"traits"`
	ProfitTrait   string             `json:"profitTrait"`
	MissingTraits string             `json:"missingTraits"` // zero or omit
	Females       []female_t         `json:"females"`
	Sires         []sire_t           `json:"sires"`
	Pedigrees     []pedigree_t       `json:"pedigrees"`
	Rates         map[string]rates_t `json:"rates"` // Cohort name to rates
	BirthRates    *birthRates_t      `json:"femaleBirthRates"`
	Population    map[string]int     `json:"population"` // Manual counts by cohort name
	Predict       predict_t          `json:"predict"`
	Mating        []allocation_t     `json:"mating"`
	Replacement   *replacement_t     `json:"replacement"`
	Benchmark     *benchmark_t       `json:"benchmark"`
}

// Allocation is a mating plan line before the sire is resolved
type Allocation struct {
	SireId string
	Doses  animal.CohortDoses
}

type Predict struct {
	Method      animal.Method
	Sire        string
	CohortSires []string
}

// Plan is a parsed and checked plan file
type Plan struct {
	AsOf        time.Time
	Catalog     *traits.Catalog
	Traits      []traits.Key
	ProfitTrait traits.Key
	Missing     animal.MissingTraitPolicy
	Females     []animal.FemaleRecord
	Sires       []animal.SireRecord
	Pedigrees   []animal.PedigreeRow
	Rates       animal.CohortRates
	BirthRates  *animal.FemaleBirthRates
	Manual      *animal.PopulationCounts // nil for automatic counting
	Predict     Predict
	Allocations []Allocation
	Replacement *ecoIndex.ReplacementInputs
	Benchmark   *varStuff.Reference
	TopPercent  float64
}

// Load reads and parses a plan file
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan file %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse builds a Plan from hjson
func Parse(data []byte) (*Plan, error) {
	var f planFile_t
	if err := hjson.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("hjson: %w", err)
	}
	return f.build()
}

func (f *planFile_t) build() (*Plan, error) {
	p := &Plan{Catalog: traits.Default()}
	var err error

	if f.CatalogFile != "" {
		if p.Catalog, err = traits.Load(f.CatalogFile); err != nil {
			return nil, err
		}
	}

	p.AsOf = time.Now().UTC().Truncate(24 * time.Hour)
	if f.AsOf != "" {
		if p.AsOf, err = time.Parse(DateLayout, f.AsOf); err != nil {
			return nil, fmt.Errorf("asOf: %w", err)
		}
	}

	for _, k := range f.Traits {
		p.Traits = append(p.Traits, traits.Key(k))
	}
	if len(p.Traits) == 0 {
		p.Traits = []traits.Key{traits.NetMerit}
	}
	if err := p.Catalog.Validate(p.Traits...); err != nil {
		return nil, fmt.Errorf("traits: %w", err)
	}
	p.ProfitTrait = traits.Key(f.ProfitTrait)
	if p.ProfitTrait == "" {
		p.ProfitTrait = traits.NetMerit
	}

	switch strings.ToLower(f.MissingTraits) {
	case "", "zero":
		p.Missing = animal.ZeroFill
	case "omit":
		p.Missing = animal.OmitTrait
	default:
		return nil, fmt.Errorf("missingTraits must be zero or omit, got %q", f.MissingTraits)
	}

	if p.Females, err = f.females(p.Catalog); err != nil {
		return nil, err
	}
	if p.Sires, err = f.sires(p.Catalog); err != nil {
		return nil, err
	}
	for _, r := range f.Pedigrees {
		p.Pedigrees = append(p.Pedigrees, animal.PedigreeRow{FemaleId: r.Female, SireCode: r.Sire, MgsCode: r.Mgs, MmgsCode: r.Mmgs})
	}

	var hasRates [animal.NCohorts]bool
	for name, r := range f.Rates {
		c, err := breedingCohort(name)
		if err != nil {
			return nil, fmt.Errorf("rates: %w", err)
		}
		p.Rates[c] = animal.ReproRates{Conception: r.Conception, PreExamConfirmation: r.PreExam}
		hasRates[c] = true
	}
	if err := p.Rates.Validate(); err != nil {
		return nil, fmt.Errorf("rates: %w", err)
	}
	if f.BirthRates != nil {
		p.BirthRates = &animal.FemaleBirthRates{Sexed: f.BirthRates.Sexed, Conventional: f.BirthRates.Conventional}
		if err := p.BirthRates.Validate(); err != nil {
			return nil, err
		}
	}

	if f.Population != nil {
		var counts animal.PopulationCounts
		for name, n := range f.Population {
			c, err := breedingCohort(name)
			if err != nil {
				return nil, fmt.Errorf("population: %w", err)
			}
			counts = counts.With(c, n)
		}
		p.Manual = &counts
	}

	p.Predict = Predict{Sire: f.Predict.Sire, CohortSires: f.Predict.CohortSires}
	if f.Predict.Method != "" {
		if p.Predict.Method, err = animal.ParseMethod(f.Predict.Method); err != nil {
			return nil, err
		}
	}

	for _, a := range f.Mating {
		al := Allocation{SireId: a.Sire}
		for name, n := range a.Doses {
			c, err := breedingCohort(name)
			if err != nil {
				return nil, fmt.Errorf("mating %s: %w", a.Sire, err)
			}
			al.Doses[c] = n
			if n > 0 && !hasRates[c] {
				return nil, fmt.Errorf("mating %s: %w: no rates for %s", a.Sire, animal.ErrInvalidRate, c)
			}
		}
		p.Allocations = append(p.Allocations, al)
	}

	if f.Replacement != nil {
		if p.Replacement, err = f.Replacement.build(); err != nil {
			return nil, fmt.Errorf("replacement: %w", err)
		}
		p.Replacement.BirthRates = p.BirthRates
	}

	if b := f.Benchmark; b != nil {
		p.Benchmark = &varStuff.Reference{Name: b.Name, Values: make(map[traits.Key][]float64, len(b.Values))}
		for k, v := range b.Values {
			key := traits.Key(k)
			if err := p.Catalog.Validate(key); err != nil {
				return nil, fmt.Errorf("benchmark: %w", err)
			}
			p.Benchmark.Values[key] = v
		}
		p.TopPercent = b.TopPercent
		if p.TopPercent == 0 {
			p.TopPercent = 10
		}
	}
	return p, nil
}

func pta(c *traits.Catalog, m map[string]float64) (animal.PTA, error) {
	out := make(animal.PTA, len(m))
	for k, v := range m {
		key := traits.Key(k)
		if err := c.Validate(key); err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func (f *planFile_t) females(c *traits.Catalog) ([]animal.FemaleRecord, error) {
	out := make([]animal.FemaleRecord, 0, len(f.Females))
	for i, r := range f.Females {
		rec := animal.FemaleRecord{Id: r.Id, Parity: r.Parity}
		if r.BirthDate != "" {
			d, err := time.Parse(DateLayout, r.BirthDate)
			if err != nil {
				return nil, fmt.Errorf("female %d (%s): %w", i+1, r.Id, err)
			}
			rec.BirthDate = d
		}
		var err error
		if rec.PTA, err = pta(c, r.PTA); err != nil {
			return nil, fmt.Errorf("female %d (%s): %w", i+1, r.Id, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *planFile_t) sires(c *traits.Catalog) ([]animal.SireRecord, error) {
	out := make([]animal.SireRecord, 0, len(f.Sires))
	for _, r := range f.Sires {
		s := animal.SireRecord{Id: r.Id, Aliases: r.Aliases, Name: r.Name, Company: r.Company}
		var err error
		if s.PTA, err = pta(c, r.PTA); err != nil {
			return nil, fmt.Errorf("sire %s: %w", r.Id, err)
		}
		if r.SemenType != "" {
			if s.SemenType, err = animal.ParseSemenType(r.SemenType); err != nil {
				return nil, fmt.Errorf("sire %s: %w", r.Id, err)
			}
		}
		if s.PricePerDose, err = price(r.Price); err != nil {
			return nil, fmt.Errorf("sire %s: %w", r.Id, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func price(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q: %w", s, err)
	}
	return d, nil
}

func breedingCohort(name string) (animal.Cohort, error) {
	c, err := animal.ParseCohort(name)
	if err != nil {
		return c, err
	}
	if !c.IsBreeding() {
		return c, fmt.Errorf("%s is not a breeding cohort", c)
	}
	return c, nil
}

func group(name string) (ecoIndex.Group, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cows":
		return ecoIndex.Cows, nil
	case "heifers":
		return ecoIndex.Heifers, nil
	}
	return ecoIndex.Cows, fmt.Errorf("unknown group %q, want cows or heifers", name)
}

func tier(name string) (ecoIndex.MeritTier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "top":
		return ecoIndex.TopTier, nil
	case "middle":
		return ecoIndex.MiddleTier, nil
	case "bottom":
		return ecoIndex.BottomTier, nil
	}
	return ecoIndex.TopTier, fmt.Errorf("unknown tier %q", name)
}

func (r *replacement_t) build() (*ecoIndex.ReplacementInputs, error) {
	in := &ecoIndex.ReplacementInputs{
		Growth: ecoIndex.GrowthInputs{
			HerdSize:              r.HerdSize,
			Heifers:               r.Heifers,
			DesiredHerdSize:       r.DesiredHerdSize,
			DiscardRate:           r.DiscardRate,
			EligibleHeiferRatio:   r.EligibleHeiferRatio,
			AbortionRate:          r.AbortionRate,
			CalvingIntervalMonths: r.CalvingIntervalMonths,
			Mortality:             r.Mortality,
		},
	}

	var hasRate [ecoIndex.NGroups][ecoIndex.NCategories]bool
	for g, rates := range r.Conception {
		grp, err := group(g)
		if err != nil {
			return nil, err
		}
		for name, v := range rates {
			c, err := ecoIndex.ParseSemenCategory(name)
			if err != nil {
				return nil, err
			}
			in.Conception[grp][c] = v
			hasRate[grp][c] = true
		}
	}

	for g, s := range r.Strategy {
		grp, err := group(g)
		if err != nil {
			return nil, err
		}
		gs := ecoIndex.GroupStrategy{Split: ecoIndex.Split{Top: s.Top, Middle: s.Middle, Bottom: s.Bottom}}
		for t, services := range s.Services {
			mt, err := tier(t)
			if err != nil {
				return nil, err
			}
			if len(services) != 3 {
				return nil, fmt.Errorf("%s %s: want 3 services, got %d", g, t, len(services))
			}
			for n, name := range services {
				if gs.Services[mt][n], err = ecoIndex.ParseSemenCategory(name); err != nil {
					return nil, err
				}
			}
			if gs.Split.Share(mt) == 0 {
				continue
			}
			for _, c := range gs.Services[mt] {
				if !hasRate[grp][c] {
					return nil, fmt.Errorf("%s %s: %w: no conception rate for %s", g, t, animal.ErrInvalidRate, c)
				}
			}
		}
		in.Strategy[grp] = gs
	}

	for g, v := range r.MonthlyInseminations {
		grp, err := group(g)
		if err != nil {
			return nil, err
		}
		in.Volume[grp] = v
	}

	for name, v := range r.DosePrices {
		c, err := ecoIndex.ParseSemenCategory(name)
		if err != nil {
			return nil, err
		}
		if in.Prices.Dose[c], err = price(v); err != nil {
			return nil, err
		}
	}
	var err error
	for _, x := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&in.Prices.DairyBullCalf, r.Prices.DairyBullCalf},
		{&in.Prices.BeefCrossCalf, r.Prices.BeefCrossCalf},
		{&in.Prices.SurplusHeifer, r.Prices.SurplusHeifer},
		{&in.Prices.CullCow, r.Prices.CullCow},
		{&in.Prices.ReplacementHeifer, r.Prices.ReplacementHeifer},
	} {
		if *x.dst, err = price(x.src); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// Allocate resolves the mating lines against the plan's sires.  Sire codes
// go through the same normalization as pedigree codes.
func (p *Plan) Allocate() ([]ecoIndex.SireAllocation, error) {
	idx := animal.NewSireIndex(p.Sires)
	out := make([]ecoIndex.SireAllocation, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		s, ok := idx.Resolve(a.SireId)
		if !ok {
			return nil, fmt.Errorf("mating: sire %q is not in the plan", a.SireId)
		}
		out = append(out, ecoIndex.SireAllocation{Sire: s, Doses: a.Doses})
	}
	return out, nil
}

// Sire finds a sire of the plan by any of his codes
func (p *Plan) Sire(code string) (animal.SireRecord, bool) {
	return animal.NewSireIndex(p.Sires).Resolve(code)
}
