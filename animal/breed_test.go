package animal

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestInseminateSexedAndConventional(t *testing.T) {
	rates := ReproRates{Conception: 0.5, PreExamConfirmation: 0.9}

	sexed := Inseminate(100, rates, Sexed.FemaleBirthRate())
	if !scalar.EqualWithinAbs(sexed.FemaleCalves, 40.5, 1e-9) {
		t.Errorf("sexed female calves = %v, want 40.5", sexed.FemaleCalves)
	}
	if sexed.Pregnancies != 50 || !scalar.EqualWithinAbs(sexed.ConfirmedPregnancy, 45, 1e-9) {
		t.Errorf("sexed funnel = %+v", sexed)
	}

	conv := Inseminate(100, rates, Conventional.FemaleBirthRate())
	if !scalar.EqualWithinAbs(conv.FemaleCalves, 21.15, 1e-9) {
		t.Errorf("conventional female calves = %v, want 21.15", conv.FemaleCalves)
	}

	sum := sexed.Add(conv)
	if sum.Doses != 200 || !scalar.EqualWithinAbs(sum.FemaleCalves, 61.65, 1e-9) {
		t.Errorf("Add = %+v", sum)
	}
}

func TestValidateRate(t *testing.T) {
	for _, v := range []float64{0, 0.5, 1} {
		if err := ValidateRate("r", v); err != nil {
			t.Errorf("ValidateRate(%v) = %v", v, err)
		}
	}
	for _, v := range []float64{-0.1, 1.01, math.NaN(), math.Inf(1)} {
		if err := ValidateRate("r", v); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("ValidateRate(%v) = %v, want ErrInvalidRate", v, err)
		}
	}

	var rates CohortRates
	rates[Secundiparous] = ReproRates{Conception: 2}
	if err := rates.Validate(); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("CohortRates.Validate = %v, want ErrInvalidRate", err)
	}
}

func TestBreedServices(t *testing.T) {
	o := BreedServices(0.5, 0.4, 0.3)

	wantServices := []float64{1, 0.5, 0.3}
	wantPreg := []float64{0.5, 0.2, 0.09}
	if !floats.EqualApprox(o.Services, wantServices, 1e-12) {
		t.Errorf("Services = %v, want %v", o.Services, wantServices)
	}
	if !floats.EqualApprox(o.Pregnancies, wantPreg, 1e-12) {
		t.Errorf("Pregnancies = %v, want %v", o.Pregnancies, wantPreg)
	}
	if !scalar.EqualWithinAbs(o.Pregnant, 0.79, 1e-12) {
		t.Errorf("Pregnant = %v, want 0.79", o.Pregnant)
	}
	if !scalar.EqualWithinAbs(o.TotalServices, 1.8, 1e-12) {
		t.Errorf("TotalServices = %v, want 1.8", o.TotalServices)
	}
}
