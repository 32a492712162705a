package animal

import "testing"

func sampleFemales() []FemaleRecord {
	return []FemaleRecord{
		{Id: "1", Parity: 4},
		{Id: "2", Parity: 3},
		{Id: "3", Parity: 2},
		{Id: "4", Parity: 1},
		{Id: "5", Parity: 1},
		{Id: "6", BirthDate: born(2022, 3, 1)},
		{Id: "7", BirthDate: born(2024, 3, 1)},
		{Id: "8"},
	}
}

func TestCountByCohort(t *testing.T) {
	got := CountByCohort(sampleFemales(), asOf)
	want := PopulationCounts{
		Heifers: 1, Primiparous: 2, Secundiparous: 1, Multiparous: 2,
		Total: 6, Calves: 1, Undetermined: 1,
	}
	if got != want {
		t.Fatalf("CountByCohort = %+v, want %+v", got, want)
	}
	if sum := got.Heifers + got.Primiparous + got.Secundiparous + got.Multiparous; sum != got.Total {
		t.Errorf("cohorts sum to %d, total %d", sum, got.Total)
	}
	if got.Cows() != 5 {
		t.Errorf("Cows = %d, want 5", got.Cows())
	}
}

func TestPopulationRefreshIsIdempotent(t *testing.T) {
	p := NewPopulation(nil)
	var notified int
	p.OnChange(func(PopulationCounts) { notified++ })

	females := sampleFemales()
	if !p.Refresh(females, asOf) {
		t.Fatal("first refresh should update")
	}
	first := p.Counts()
	if p.Refresh(females, asOf) {
		t.Error("second refresh on unchanged records should not update")
	}
	if p.Counts() != first {
		t.Errorf("counts changed: %+v -> %+v", first, p.Counts())
	}
	if notified != 1 {
		t.Errorf("listeners notified %d times, want 1", notified)
	}
}

func TestPopulationManualMode(t *testing.T) {
	p := NewPopulation(nil)
	p.Refresh(sampleFemales(), asOf)

	changed, err := p.SetManual(PopulationCounts{Heifers: 10, Primiparous: 20, Secundiparous: 30, Multiparous: 40, Total: 7})
	if err != nil {
		t.Fatal(err)
	}
	if !changed || p.Mode() != Manual {
		t.Fatalf("SetManual changed=%v mode=%v", changed, p.Mode())
	}
	if p.Counts().Total != 100 {
		t.Errorf("Total = %d, want recomputed 100", p.Counts().Total)
	}

	// Manual counts are frozen against new records
	if p.Refresh(append(sampleFemales(), FemaleRecord{Parity: 2}), asOf) {
		t.Error("refresh must not update in manual mode")
	}
	if p.Counts().Secundiparous != 30 {
		t.Errorf("Secundiparous = %d, want 30", p.Counts().Secundiparous)
	}

	if _, err := p.Edit(Multiparous, 50); err != nil {
		t.Fatal(err)
	}
	if p.Counts().Total != 110 {
		t.Errorf("Total after edit = %d, want 110", p.Counts().Total)
	}

	if !p.UseAutomatic(sampleFemales(), asOf) {
		t.Error("switching back to automatic should update")
	}
	if p.Mode() != Automatic || p.Counts().Total != 6 {
		t.Errorf("mode=%v total=%d", p.Mode(), p.Counts().Total)
	}
}

func TestPopulationRejectsNegative(t *testing.T) {
	p := NewPopulation(nil)
	if _, err := p.SetManual(PopulationCounts{Heifers: -1}); err == nil {
		t.Error("expected error for negative heifers")
	}
	if _, err := p.Edit(Calf, 3); err == nil {
		t.Error("expected error editing a non-breeding cohort")
	}
	if _, err := p.Edit(Heifer, -2); err == nil {
		t.Error("expected error for negative edit")
	}
}
