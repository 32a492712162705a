package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
	"github.com/blgolden/iGenDecModel/dairyPlan/varStuff"
)

var catalog = traits.Default()

func samplePredictions() []animal.PredictionResult {
	return []animal.PredictionResult{
		{
			Id:       uuid.New(),
			Method:   animal.DirectAverage,
			FemaleId: "F1",
			SireIds:  []string{"007HO12345"},
			Values:   animal.PTA{traits.NetMerit: 604.5, traits.PL: 1.0 / 3, traits.DPR: -0.1 + 0.2},
		},
		{
			Id:       uuid.New(),
			Method:   animal.PedigreeRegression,
			FemaleId: "F2, the second",
			SireIds:  []string{"S", "M", "MM"},
			Values:   animal.PTA{traits.NetMerit: 641.0000000000001, traits.TPI: 2.5e3},
		},
	}
}

func TestPredictionRoundTrip(t *testing.T) {
	in := samplePredictions()

	var buf bytes.Buffer
	if err := Predictions(in).WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	table, err := ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	out, err := ParsePredictions(table, catalog)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != len(in) {
		t.Fatalf("got %d results, want %d", len(out), len(in))
	}
	for i := range in {
		a, b := in[i], out[i]
		if a.Id != b.Id || a.Method != b.Method || a.FemaleId != b.FemaleId || strings.Join(a.SireIds, ";") != strings.Join(b.SireIds, ";") {
			t.Errorf("result %d tags: %+v != %+v", i, a, b)
		}
		if len(a.Values) != len(b.Values) {
			t.Errorf("result %d has %d values, want %d", i, len(b.Values), len(a.Values))
		}
		for k, v := range a.Values {
			if b.Values[k] != v {
				t.Errorf("result %d %s = %v, want exactly %v", i, k, b.Values[k], v)
			}
		}
	}
}

func TestPredictionWithoutValuesRoundTrip(t *testing.T) {
	in := []animal.PredictionResult{
		{Id: uuid.New(), Method: animal.DirectAverage, FemaleId: "F9", SireIds: []string{"S1"}, Values: animal.PTA{}},
		samplePredictions()[0],
	}
	table := Predictions(in)
	if len(table.Rows) != 4 {
		t.Fatalf("rows = %d, want 1 empty row and 3 values", len(table.Rows))
	}
	out, err := ParsePredictions(table, catalog)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2", len(out))
	}
	if out[0].Id != in[0].Id || out[0].FemaleId != "F9" || len(out[0].SireIds) != 1 || len(out[0].Values) != 0 {
		t.Errorf("empty result = %+v", out[0])
	}
	if len(out[1].Values) != 3 {
		t.Errorf("second result has %d values", len(out[1].Values))
	}
}

func TestParsePredictionsRejectsUnknownTrait(t *testing.T) {
	table := Predictions(samplePredictions())
	table.Rows[0][4] = "bogus"
	if _, err := ParsePredictions(table, catalog); !errors.Is(err, traits.ErrUnknownTrait) {
		t.Errorf("err = %v, want ErrUnknownTrait", err)
	}

	table = Table{Header: []string{"id", "trait"}}
	if _, err := ParsePredictions(table, catalog); err == nil {
		t.Error("expected missing column error")
	}
}

func TestBatchResults(t *testing.T) {
	results := []animal.RowResult{
		{Row: 0, Status: animal.RowOK, Result: animal.PredictionResult{FemaleId: "F1", Values: animal.PTA{traits.NetMerit: 641}}},
		{Row: 1, Status: animal.RowFailed, Err: &animal.AncestorNotFoundError{Tier: animal.MgsTier, Code: "X"}},
	}
	table := BatchResults(results, []traits.Key{traits.NetMerit})
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d", len(table.Rows))
	}
	if table.Rows[0][4] != "641" || table.Rows[0][2] != "ok" {
		t.Errorf("row 1 = %q", table.Rows[0])
	}
	if table.Rows[1][2] != "failed" || !strings.Contains(table.Rows[1][3], "MGS") || table.Rows[1][4] != "" {
		t.Errorf("row 2 = %q", table.Rows[1])
	}
}

func TestBenchmarksNotAvailable(t *testing.T) {
	table := Benchmarks([]varStuff.Benchmark{
		{Key: traits.NetMerit, TopPercent: 10, HerdMean: 50, HerdN: 2, TopMean: 95.5, OverallMean: 50.5, ReferenceN: 100, Available: true},
		{Key: traits.PL, TopPercent: 10, HerdMean: 1.5, HerdN: 1},
		{Key: traits.DPR, TopPercent: 10, TopMean: 2, OverallMean: 1, ReferenceN: 50, Available: true},
	})
	if table.Rows[0][2] != "50" || table.Rows[0][4] != "95.5" {
		t.Errorf("NM$ row = %q", table.Rows[0])
	}
	if table.Rows[1][2] != "1.5" || table.Rows[1][4] != varStuff.NotAvailable || table.Rows[1][5] != varStuff.NotAvailable {
		t.Errorf("PL row = %q", table.Rows[1])
	}
	if table.Rows[2][2] != varStuff.NotAvailable || table.Rows[2][3] != "0" || table.Rows[2][4] != "2" {
		t.Errorf("DPR row = %q, want N/A herd mean", table.Rows[2])
	}
}

func TestTableJSON(t *testing.T) {
	table := Table{Header: []string{"a", "b"}, Rows: [][]string{{"1", "x"}, {"2", "y"}}}
	var buf bytes.Buffer
	if err := table.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var got []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1]["b"] != "y" {
		t.Errorf("json = %v", got)
	}
}

func TestCounts(t *testing.T) {
	p := animal.PopulationCounts{Heifers: 3, Multiparous: 2, Total: 5, Calves: 4}
	table := Counts(p, animal.Manual)
	if len(table.Rows) != 7 {
		t.Fatalf("rows = %d", len(table.Rows))
	}
	if table.Rows[0][1] != "3" || table.Rows[4][1] != "5" || table.Rows[5][1] != "4" {
		t.Errorf("counts = %q", table.Rows)
	}
}
