package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testPlan = `
{
  asOf: "2024-06-15"
  traits: ["nm_dollar"]
  females: [
    { id: "1", birthDate: "2022-01-01", parity: 0, pta: { nm_dollar: 400 } }
    { id: "2", birthDate: "2020-01-01", parity: 1, pta: { nm_dollar: 500 } }
    { id: "3", birthDate: "2018-01-01", parity: 4, pta: { nm_dollar: 300 } }
    { id: "4", birthDate: "2024-03-01", pta: { nm_dollar: 600 } }
  ]
  sires: [
    { id: "007HO12345", name: "Alpha", semenType: "sexed", pricePerDose: "40", pta: { nm_dollar: 900 } }
  ]
  rates: {
    heifer: { conception: 0.5, preExam: 0.9 }
    primiparous: { conception: 0.4, preExam: 0.9 }
    secundiparous: { conception: 0.4, preExam: 0.9 }
    multiparous: { conception: 0.3, preExam: 0.9 }
  }
  predict: { method: "direct-average", sire: "7HO12345" }
  mating: [ { sire: "007HO12345", doses: { heifer: 10 } } ]
}
`

// runWith runs fn on a session that writes csv to a temp file
func runWith(t *testing.T, fn func(*session) error) string {
	t.Helper()
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.hjson")
	if err := os.WriteFile(planPath, []byte(testPlan), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAIRYPLAN_OUTPUT_MODE", "quiet")
	t.Setenv("DAIRYPLAN_LOG_LEVEL", "error")
	t.Setenv("DAIRYPLAN_WORKERS", "2")

	envFile = filepath.Join(dir, "none.env")
	format = formatCSV
	outFile = filepath.Join(dir, "out.csv")
	t.Cleanup(func() { envFile, format, outFile = "", "", "" })

	s, err := initSimulation(planPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := fn(s); err != nil {
		t.Fatal(err)
	}
	s.close()

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunCohorts(t *testing.T) {
	out := runWith(t, runCohorts)
	for _, want := range []string{"Heifer,1,automatic", "Primiparous,1,automatic", "Multiparous,1,automatic", "Total,3,automatic", "Calf,1,automatic"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestRunPredict(t *testing.T) {
	out := runWith(t, runPredict)
	// (400+900)/2*0.93
	if !strings.Contains(out, "604.5") {
		t.Errorf("output lacks the direct average:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines != 5 {
		t.Errorf("got %d lines, want header and 4 females:\n%s", lines, out)
	}
}

func TestRunSimulate(t *testing.T) {
	out := runWith(t, runSimulate)
	if !strings.Contains(out, "PLAN") || !strings.Contains(out, "007HO12345") {
		t.Errorf("output:\n%s", out)
	}
}

func TestOutNeedsMachineFormat(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.hjson")
	if err := os.WriteFile(planPath, []byte(testPlan), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAIRYPLAN_OUTPUT_MODE", "table")
	envFile = filepath.Join(dir, "none.env")
	format = formatTable
	outFile = filepath.Join(dir, "out.csv")
	t.Cleanup(func() { envFile, format, outFile = "", "", "" })

	if _, err := initSimulation(planPath); err == nil {
		t.Error("expected an error for --out with table format")
	}
}
