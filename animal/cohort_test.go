package animal

import (
	"testing"
	"time"
)

var asOf = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func born(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		female FemaleRecord
		want   Cohort
	}{
		{"parity 5", FemaleRecord{Parity: 5, BirthDate: born(2018, 1, 1)}, Multiparous},
		{"parity 3", FemaleRecord{Parity: 3}, Multiparous},
		{"parity 2", FemaleRecord{Parity: 2}, Secundiparous},
		{"parity 1", FemaleRecord{Parity: 1, BirthDate: born(2022, 1, 1)}, Primiparous},
		{"parity wins over young age", FemaleRecord{Parity: 1, BirthDate: born(2024, 1, 1)}, Primiparous},
		{"heifer 12 months exactly", FemaleRecord{BirthDate: born(2023, 6, 15)}, Heifer},
		{"calf one day short of 12 months", FemaleRecord{BirthDate: born(2023, 6, 16)}, Calf},
		{"calf", FemaleRecord{BirthDate: born(2024, 2, 1)}, Calf},
		{"negative parity falls back to age", FemaleRecord{Parity: -1, BirthDate: born(2022, 1, 1)}, Heifer},
		{"no parity no birth date", FemaleRecord{}, Undetermined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.female, asOf); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAgeInMonths(t *testing.T) {
	tests := []struct {
		birth time.Time
		want  int
	}{
		{born(2024, 6, 15), 0},
		{born(2024, 5, 16), 0},
		{born(2024, 5, 15), 1},
		{born(2023, 6, 15), 12},
		{born(2022, 12, 31), 17},
	}
	for _, tt := range tests {
		if got := AgeInMonths(tt.birth, asOf); got != tt.want {
			t.Errorf("AgeInMonths(%v) = %d, want %d", tt.birth.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestParseCohort(t *testing.T) {
	c, err := ParseCohort(" secundiparous ")
	if err != nil || c != Secundiparous {
		t.Errorf("ParseCohort = %v, %v", c, err)
	}
	if _, err := ParseCohort("bull"); err == nil {
		t.Error("expected error for unknown cohort")
	}
}
