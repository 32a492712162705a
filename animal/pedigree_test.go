package animal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/blgolden/iGenDecModel/dairyPlan/metrics"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
)

func testSires() []SireRecord {
	return []SireRecord{
		{Id: "007HO12345", Aliases: []string{"HOUSA000012345678"}, Name: "Alpha", PTA: PTA{traits.NetMerit: 800}},
		{Id: "011HO00200", Name: "Bravo", PTA: PTA{traits.NetMerit: 500}},
		{Id: "200HO00003", Name: "Charlie", PTA: PTA{traits.NetMerit: 300}},
	}
}

func TestSireIndexNormalizes(t *testing.T) {
	idx := NewSireIndex(testSires())
	tests := []struct {
		code string
		want string
	}{
		{"007HO12345", "Alpha"},
		{" 007ho12345 ", "Alpha"},
		{"007-HO-12345", "Alpha"},
		{"7HO12345", "Alpha"},
		{"HOUSA000012345678", "Alpha"},
		{"11ho00200", "Bravo"},
	}
	for _, tt := range tests {
		s, ok := idx.Resolve(tt.code)
		if !ok || s.Name != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q", tt.code, s.Name, ok, tt.want)
		}
	}
	if _, ok := idx.Resolve("999HO99999"); ok {
		t.Error("unknown code resolved")
	}
	if _, ok := idx.Resolve(""); ok {
		t.Error("empty code resolved")
	}
}

func TestPedigreeBatchPartialFailure(t *testing.T) {
	col := metrics.NewCollector("test")
	p := NewPredictor(catalog, WithResolver(NewSireIndex(testSires())), WithWorkers(3), WithMetrics(col))

	rows := []PedigreeRow{
		{FemaleId: "F1", SireCode: "7HO12345", MgsCode: "11HO00200", MmgsCode: "200HO00003"},
		{FemaleId: "F2", SireCode: "7HO12345", MgsCode: "", MmgsCode: "200HO00003"},
		{FemaleId: "F3", SireCode: "7HO12345", MgsCode: "11HO00200", MmgsCode: "123XX1"},
	}
	for i := 0; i < 20; i++ {
		rows = append(rows, PedigreeRow{FemaleId: fmt.Sprint("G", i), SireCode: "007HO12345", MgsCode: "011HO00200", MmgsCode: "200HO00003"})
	}

	res, err := p.PedigreeBatch(context.Background(), rows, []traits.Key{traits.NetMerit})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != len(rows) {
		t.Fatalf("got %d results for %d rows", len(res), len(rows))
	}
	for i, r := range res {
		if r.Row != i {
			t.Errorf("result %d carries row %d", i, r.Row)
		}
	}
	if res[0].Status != RowOK || !scalar.EqualWithinAbs(res[0].Result.Values[traits.NetMerit], 641, 1e-9) {
		t.Errorf("row 0 = %+v", res[0])
	}
	if res[0].Result.FemaleId != "F1" {
		t.Errorf("row 0 female = %q", res[0].Result.FemaleId)
	}

	var nf *AncestorNotFoundError
	if res[1].Status != RowFailed || !errors.As(res[1].Err, &nf) || nf.Tier != MgsTier {
		t.Errorf("row 1 = %+v, want MGS not found", res[1])
	}
	if res[2].Status != RowFailed || !errors.As(res[2].Err, &nf) || nf.Tier != MmgsTier || nf.Code != "123XX1" {
		t.Errorf("row 2 = %+v, want MMGS not found", res[2])
	}

	s := Summarize(res)
	if s.OK != 21 || s.Failed != 2 || s.Canceled != 0 {
		t.Errorf("summary = %+v", s)
	}
	if got := testutil.ToFloat64(col.BatchRowsTotal.WithLabelValues(metrics.RowFailed)); got != 2 {
		t.Errorf("failed rows metric = %v, want 2", got)
	}
}

func TestPedigreeBatchUnknownTraitFailsCall(t *testing.T) {
	p := NewPredictor(catalog, WithResolver(NewSireIndex(testSires())))
	_, err := p.PedigreeBatch(context.Background(), []PedigreeRow{{FemaleId: "F"}}, []traits.Key{"bogus"})
	if !errors.Is(err, traits.ErrUnknownTrait) {
		t.Fatalf("err = %v, want ErrUnknownTrait", err)
	}
}

func TestPedigreeBatchCanceled(t *testing.T) {
	p := NewPredictor(catalog, WithResolver(NewSireIndex(testSires())))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := make([]PedigreeRow, 5)
	res, err := p.PedigreeBatch(ctx, rows, []traits.Key{traits.NetMerit})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(res) != 5 {
		t.Fatalf("got %d results", len(res))
	}
	for _, r := range res {
		if r.Status != RowCanceled {
			t.Errorf("row %d status = %v, want canceled", r.Row, r.Status)
		}
	}
}
