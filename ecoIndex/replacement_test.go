package ecoIndex

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
)

func uniform(c SemenCategory) [NTiers]ServicePlan {
	p := ServicePlan{c, c, c}
	return [NTiers]ServicePlan{p, p, p}
}

func sampleInputs() ReplacementInputs {
	var in ReplacementInputs
	in.Growth = GrowthInputs{
		HerdSize:              1000,
		Heifers:               400,
		DesiredHerdSize:       1100,
		DiscardRate:           0.30,
		EligibleHeiferRatio:   0.50,
		AbortionRate:          0.10,
		CalvingIntervalMonths: 13,
		Mortality:             0.10,
	}
	in.Conception[Cows] = ConceptionTable{0.30, 0.40, 0.45, 0.35, 0.30}
	in.Conception[Heifers] = ConceptionTable{0.50, 0.60, 0.60, 0.55, 0.45}

	in.Strategy[Cows] = GroupStrategy{Split: Split{100, 0, 0}, Services: uniform(ConventionalSemen)}
	in.Strategy[Heifers] = GroupStrategy{Split: Split{100, 0, 0}, Services: uniform(SexedSemen)}
	in.Strategy[Heifers].Services[TopTier] = ServicePlan{SexedSemen, SexedSemen, ConventionalSemen}

	in.Volume[Cows] = 196
	in.Prices.Dose[SexedSemen] = decimal.NewFromInt(40)
	in.Prices.Dose[ConventionalSemen] = decimal.NewFromInt(20)
	in.Prices.DairyBullCalf = decimal.NewFromInt(50)
	in.Prices.BeefCrossCalf = decimal.NewFromInt(300)
	in.Prices.SurplusHeifer = decimal.NewFromInt(1500)
	in.Prices.CullCow = decimal.NewFromInt(800)
	in.Prices.ReplacementHeifer = decimal.NewFromInt(2000)
	return in
}

func near(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !scalar.EqualWithinRel(got, want, 1e-9) && !scalar.EqualWithinAbs(got, want, 1e-9) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestSplitClamp(t *testing.T) {
	s := Split{30, 50, 20}
	tests := []struct {
		name string
		got  Split
		want Split
	}{
		{"top 70 shrinks middle first", s.SetTop(70), Split{70, 30, 0}},
		{"top 40 takes from bottom", s.SetTop(40), Split{40, 50, 10}},
		{"top above 100", s.SetTop(120), Split{100, 0, 0}},
		{"top lowered gives bottom the rest", s.SetTop(10), Split{10, 50, 40}},
		{"middle clamped to what top leaves", s.SetMiddle(80), Split{30, 70, 0}},
		{"bottom moves middle", s.SetBottom(60), Split{30, 10, 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %+v, want %+v", tt.got, tt.want)
			}
			if err := tt.got.Validate(); err != nil {
				t.Errorf("clamped split invalid: %v", err)
			}
		})
	}

	if _, err := NewSplit(50, 30, 10); !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("err = %v, want ErrInvalidSplit", err)
	}
}

func TestGrowthPhase(t *testing.T) {
	g := Growth(sampleInputs().Growth)
	near(t, "discards", g.Discards, 300)
	near(t, "growth", g.Growth, 100)
	near(t, "required heifers", g.RequiredHeifers, 400/0.9)
	near(t, "eligible heifers", g.EligibleHeifers, 200)
	near(t, "cows calving", g.CowsCalvingPerYear, 1000*12/13.0*0.9)

	shrink := sampleInputs().Growth
	shrink.DesiredHerdSize = 900
	if Growth(shrink).Growth != 0 {
		t.Error("a shrinking herd needs no growth heifers")
	}
}

func TestPlanFemale(t *testing.T) {
	in := sampleInputs()
	fp := PlanFemale(in.Strategy[Heifers], in.Conception[Heifers])
	near(t, "sexed services", fp.Services[SexedSemen], 1.5)
	near(t, "conventional services", fp.Services[ConventionalSemen], 0.25)
	near(t, "sexed pregnancies", fp.Pregnancies[SexedSemen], 0.75)
	near(t, "conventional pregnancies", fp.Pregnancies[ConventionalSemen], 0.15)
	near(t, "pregnant", fp.Pregnant, 0.9)

	mixed := GroupStrategy{Split: Split{50, 50, 0}, Services: uniform(ConventionalSemen)}
	mixed.Services[TopTier] = ServicePlan{SexedSemen, SexedSemen, SexedSemen}
	fp = PlanFemale(mixed, ConceptionTable{0.5, 0.5})
	near(t, "mixed sexed services", fp.Services[SexedSemen], 0.5*1.75)
	near(t, "mixed conventional services", fp.Services[ConventionalSemen], 0.5*1.75)
}

func TestReplacementPlan(t *testing.T) {
	in := sampleInputs()
	plan, err := NewPlanner(nil, nil).Plan(in)
	if err != nil {
		t.Fatal(err)
	}

	required := 400 / 0.9
	neededCows := 1100 * 12 / 13.0 / 0.9
	neededHeifers := required / 0.9

	// Phase 4
	cows := plan.Inseminations[Cows]
	near(t, "cow females bred", cows.FemalesBred.Monthly, 100)
	near(t, "cow pregnancies", cows.Pregnancies.Annual, 940.8)
	near(t, "cow pregnancies quarterly", cows.Pregnancies.Quarterly, 235.2)
	near(t, "cows needed", cows.NeededPregnancies.Annual, neededCows)
	near(t, "cow delta", cows.Delta.Annual, 940.8-neededCows)
	near(t, "pregnancies per insemination", cows.PregnanciesPerInsemination.Value, 0.4)
	heifers := plan.Inseminations[Heifers]
	if heifers.Pregnancies.Annual != 0 {
		t.Errorf("heifer pregnancies = %v with no volume", heifers.Pregnancies.Annual)
	}
	near(t, "heifers needed", heifers.NeededPregnancies.Annual, neededHeifers)

	// Phase 5: target pregnancies over conception rate
	near(t, "cow conventional doses", plan.Doses.ByGroup[Cows][ConventionalSemen].Annual, neededCows/0.4)
	near(t, "heifer sexed doses", plan.Doses.ByGroup[Heifers][SexedSemen].Annual, neededHeifers/0.9*1.5)
	conv := plan.Doses.Total[ConventionalSemen]
	near(t, "conventional doses", conv.Annual, neededCows/0.4+neededHeifers/0.9*0.25)
	near(t, "conventional monthly", conv.Monthly, conv.Annual/12)
	near(t, "conventional weekly", conv.Weekly, conv.Annual/52)

	// Phase 6
	born := 940.8 * 0.9
	calves := plan.Investment.Calves
	near(t, "dairy heifers", calves.DairyHeifers, born*0.47)
	near(t, "dairy bulls", calves.DairyBulls, born*0.53)
	near(t, "replacements", calves.Replacements, born*0.47*0.9)
	if calves.SurplusHeifers != 0 || calves.BeefCross != 0 {
		t.Errorf("calves = %+v", calves)
	}
	investment := plan.Doses.Total[ConventionalSemen].Annual*20 + plan.Doses.Total[SexedSemen].Annual*40
	near(t, "investment", plan.Investment.Investment.InexactFloat64(), investment)
	revenue := born*0.53*50 + 300*800
	near(t, "revenue", plan.Investment.Revenue.InexactFloat64(), revenue)

	// Phase 7
	r := plan.Return
	produced := born * 0.47 * 0.9
	near(t, "produced", r.HeifersProduced, produced)
	near(t, "required", r.HeifersRequired, required)
	near(t, "produced ratio", r.ProducedRatio.Value, produced/required)
	near(t, "ROI", r.ROI.InexactFloat64(), revenue+produced*2000-investment)
}

func TestBeefSemenMakesNoReplacements(t *testing.T) {
	in := sampleInputs()
	in.Strategy[Cows].Services = uniform(BeefSemen)
	plan, err := NewPlanner(nil, nil).Plan(in)
	if err != nil {
		t.Fatal(err)
	}
	c := plan.Investment.Calves
	if c.Replacements != 0 || c.DairyBulls != 0 || c.BeefCross == 0 {
		t.Errorf("calves = %+v", c)
	}
	if r := plan.Return.ProducedRatio; !r.Defined || r.Value != 0 {
		t.Errorf("produced ratio = %v", r)
	}
}

func TestReplacementUndefinedRatios(t *testing.T) {
	in := sampleInputs()
	in.Growth.DiscardRate = 0
	in.Growth.DesiredHerdSize = 1000
	in.Conception[Heifers] = ConceptionTable{}
	plan, err := NewPlanner(nil, nil).Plan(in)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Return.ProducedRatio.Defined {
		t.Error("produced/required should be undefined with no heifers required")
	}
	if _, err := plan.Return.ProducedRatio.Float(); !errors.Is(err, ErrDivisionUndefined) {
		t.Errorf("err = %v", err)
	}
	if plan.Doses.FemalesToBreed[Heifers].Defined {
		t.Error("females to breed should be undefined when no heifer can conceive")
	}
}

func TestReplacementValidation(t *testing.T) {
	tests := []struct {
		name string
		edit func(*ReplacementInputs)
		want error
	}{
		{"discard above 1", func(in *ReplacementInputs) { in.Growth.DiscardRate = 1.2 }, animal.ErrInvalidRate},
		{"abortion of 1", func(in *ReplacementInputs) { in.Growth.AbortionRate = 1 }, animal.ErrInvalidRate},
		{"bad conception", func(in *ReplacementInputs) { in.Conception[Cows][BeefSemen] = -0.2 }, animal.ErrInvalidRate},
		{"split not 100", func(in *ReplacementInputs) { in.Strategy[Cows].Split = Split{50, 20, 20} }, ErrInvalidSplit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInputs()
			tt.edit(&in)
			if _, err := NewPlanner(nil, nil).Plan(in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	in := sampleInputs()
	in.Growth.CalvingIntervalMonths = 0
	if _, err := NewPlanner(nil, nil).Plan(in); err == nil {
		t.Error("expected error for zero calving interval")
	}
}
