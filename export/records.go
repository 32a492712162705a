// records
// Result structures flattened into tables
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
package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/ecoIndex"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
	"github.com/blgolden/iGenDecModel/dairyPlan/varStuff"
)

// Predictions are exported long: one row per result and trait
var predictionHeader = []string{"id", "method", "female", "sires", "trait", "value"}

func sortedKeys(p animal.PTA) []traits.Key {
	keys := make([]traits.Key, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Predictions flattens prediction results.  Values keep full precision.  A
// result without values gets one row with an empty trait.
func Predictions(results []animal.PredictionResult) Table {
	t := Table{Header: predictionHeader}
	for _, r := range results {
		sires := strings.Join(r.SireIds, ";")
		if len(r.Values) == 0 {
			t.add(r.Id.String(), r.Method.String(), r.FemaleId, sires, "", "")
			continue
		}
		for _, k := range sortedKeys(r.Values) {
			t.add(r.Id.String(), r.Method.String(), r.FemaleId, sires, string(k), Float(r.Values[k]))
		}
	}
	return t
}

// ParsePredictions rebuilds the results of a Predictions table in the order
// they first appear.  Unknown traits are rejected.
func ParsePredictions(t Table, c *traits.Catalog) ([]animal.PredictionResult, error) {
	col := make([]int, len(predictionHeader))
	for i, h := range predictionHeader {
		if col[i] = t.Column(h); col[i] < 0 {
			return nil, fmt.Errorf("predictions: missing column %q", h)
		}
	}

	var out []animal.PredictionResult
	index := make(map[uuid.UUID]int)
	for n, row := range t.Rows {
		if len(row) < len(t.Header) {
			return nil, fmt.Errorf("predictions row %d: %d cells, want %d", n+1, len(row), len(t.Header))
		}
		id, err := uuid.Parse(row[col[0]])
		if err != nil {
			return nil, fmt.Errorf("predictions row %d: %w", n+1, err)
		}
		key := traits.Key(row[col[4]])
		var v float64
		if key != "" {
			if err := c.Validate(key); err != nil {
				return nil, fmt.Errorf("predictions row %d: %w", n+1, err)
			}
			if v, err = strconv.ParseFloat(row[col[5]], 64); err != nil {
				return nil, fmt.Errorf("predictions row %d: %w", n+1, err)
			}
		}

		i, ok := index[id]
		if !ok {
			m, err := animal.ParseMethod(row[col[1]])
			if err != nil {
				return nil, fmt.Errorf("predictions row %d: %w", n+1, err)
			}
			var sires []string
			if s := row[col[3]]; s != "" {
				sires = strings.Split(s, ";")
			}
			out = append(out, animal.PredictionResult{Id: id, Method: m, FemaleId: row[col[2]], SireIds: sires, Values: animal.PTA{}})
			i = len(out) - 1
			index[id] = i
		}
		if key != "" {
			out[i].Values[key] = v
		}
	}
	return out, nil
}

// BatchResults flattens a pedigree batch, failures included
func BatchResults(results []animal.RowResult, keys []traits.Key) Table {
	t := Table{Header: []string{"row", "female", "status", "error"}}
	for _, k := range keys {
		t.Header = append(t.Header, string(k))
	}
	for _, r := range results {
		cells := []string{strconv.Itoa(r.Row + 1), r.Result.FemaleId, r.Status.String(), ""}
		if r.Err != nil {
			cells[3] = r.Err.Error()
		}
		for _, k := range keys {
			v, ok := r.Result.Values[k]
			if r.Status != animal.RowOK || !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, Float(v))
		}
		t.add(cells...)
	}
	return t
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ecoIndex.Undefined
	}
	return d.Decimal.StringFixed(2)
}

// Mating flattens a projection: one row per sire then a plan total row
func Mating(p ecoIndex.PlanProjection, keys []traits.Key) Table {
	t := Table{Header: []string{"sire", "name", "semen", "doses", "pregnancies", "confirmed", "female_calves", "cost", "cost_per_calf", "roi"}}
	for _, k := range keys {
		t.Header = append(t.Header, string(k))
	}
	row := func(id, name, semen string, f animal.Funnel, cost decimal.Decimal, perCalf, roi decimal.NullDecimal, pooled animal.PTA) {
		cells := []string{id, name, semen, Float(f.Doses), Float(f.Pregnancies), Float(f.ConfirmedPregnancy), Float(f.FemaleCalves),
			cost.StringFixed(2), nullMoney(perCalf), nullMoney(roi)}
		for _, k := range keys {
			if v, ok := pooled[k]; ok {
				cells = append(cells, Float(v))
			} else {
				cells = append(cells, "")
			}
		}
		t.add(cells...)
	}
	for _, s := range p.Sires {
		row(s.SireId, s.Name, s.SemenType.String(), s.Totals, s.Cost, s.CostPerCalf, s.ROI, s.Pooled)
	}
	row("PLAN", "", "", p.Totals, p.Cost, p.CostPerCalf, p.ROI, p.Pooled)
	return t
}

// Replacement flattens every phase into phase, item, group, category, value
func Replacement(plan ecoIndex.ReplacementPlan) Table {
	t := Table{Header: []string{"phase", "item", "group", "category", "value"}}
	num := func(phase, item, group, cat string, v float64) { t.add(phase, item, group, cat, Float(v)) }
	money := func(phase, item, cat string, d decimal.Decimal) { t.add(phase, item, "", cat, d.StringFixed(2)) }

	g := plan.Growth
	num("1", "discards", "", "", g.Discards)
	num("1", "growth", "", "", g.Growth)
	num("1", "required_heifers", "", "", g.RequiredHeifers)
	num("1", "eligible_heifers", "", "", g.EligibleHeifers)
	num("1", "cows_calving_per_year", "", "", g.CowsCalvingPerYear)

	for grp, table := range plan.Conception {
		for i, r := range table {
			num("2", "conception", ecoIndex.Group(grp).String(), ecoIndex.Categories[i].String(), r)
		}
	}

	for grp, s := range plan.Strategy {
		group := ecoIndex.Group(grp).String()
		num("3", "top_percent", group, "", s.Split.Top)
		num("3", "middle_percent", group, "", s.Split.Middle)
		num("3", "bottom_percent", group, "", s.Split.Bottom)
		for tier, services := range s.Services {
			for n, c := range services {
				t.add("3", fmt.Sprintf("%s_service_%d", strings.ToLower(ecoIndex.MeritTier(tier).String()), n+1), group, c.String(), "")
			}
		}
	}

	for grp, gi := range plan.Inseminations {
		group := ecoIndex.Group(grp).String()
		for _, p := range []struct {
			item string
			v    ecoIndex.Period
		}{
			{"inseminations", gi.Inseminations},
			{"pregnancies", gi.Pregnancies},
			{"needed_pregnancies", gi.NeededPregnancies},
			{"delta", gi.Delta},
		} {
			num("4", p.item+"_monthly", group, "", p.v.Monthly)
			num("4", p.item+"_quarterly", group, "", p.v.Quarterly)
			num("4", p.item+"_annual", group, "", p.v.Annual)
		}
	}

	for i, d := range plan.Doses.Total {
		cat := ecoIndex.Categories[i].String()
		num("5", "doses_annual", "", cat, d.Annual)
		num("5", "doses_monthly", "", cat, d.Monthly)
		num("5", "doses_weekly", "", cat, d.Weekly)
	}

	inv := plan.Investment
	for i, d := range inv.DoseCost {
		money("6", "dose_cost", ecoIndex.Categories[i].String(), d)
	}
	money("6", "investment", "", inv.Investment)
	num("6", "dairy_bull_calves", "", "", inv.Calves.DairyBulls)
	num("6", "beef_cross_calves", "", "", inv.Calves.BeefCross)
	num("6", "surplus_heifers", "", "", inv.Calves.SurplusHeifers)
	num("6", "cull_cows", "", "", inv.CullCows)
	money("6", "revenue", "", inv.Revenue)

	r := plan.Return
	money("7", "retained_value", "", r.RetainedValue)
	money("7", "roi", "", r.ROI)
	num("7", "heifers_produced", "", "", r.HeifersProduced)
	num("7", "heifers_required", "", "", r.HeifersRequired)
	if v, err := r.ProducedRatio.Float(); err == nil {
		num("7", "produced_ratio", "", "", v)
	} else {
		t.add("7", "produced_ratio", "", "", ecoIndex.Undefined)
	}
	return t
}

// Benchmarks flattens a comparison.  Missing herd or reference values are N/A.
func Benchmarks(bs []varStuff.Benchmark) Table {
	t := Table{Header: []string{"trait", "top_percent", "herd_mean", "herd_n", "reference_top_mean", "reference_mean", "reference_n"}}
	for _, b := range bs {
		herd := varStuff.NotAvailable
		if b.HerdN > 0 {
			herd = Float(b.HerdMean)
		}
		top, overall := varStuff.NotAvailable, varStuff.NotAvailable
		if b.Available {
			top, overall = Float(b.TopMean), Float(b.OverallMean)
		}
		t.add(string(b.Key), Float(b.TopPercent), herd, strconv.Itoa(b.HerdN), top, overall, strconv.Itoa(b.ReferenceN))
	}
	return t
}

// Trend flattens a trait trend: the yearly points with fitted values
func Trend(tt varStuff.TraitTrend) Table {
	t := Table{Header: []string{"trait", "year", "mean", "n", "fitted", "delta"}}
	deltas := make(map[int]float64, len(tt.Deltas))
	for _, d := range tt.Deltas {
		deltas[d.Year] = d.Delta
	}
	for _, p := range tt.Points {
		delta := ""
		if d, ok := deltas[p.Year]; ok {
			delta = Float(d)
		}
		t.add(string(tt.Key), strconv.Itoa(p.Year), Float(p.Mean), strconv.Itoa(p.N), Float(tt.Raw.Predict(p.Year)), delta)
	}
	return t
}

// Counts lists the population per cohort with the non-breeding counts last
func Counts(p animal.PopulationCounts, mode animal.CountMode) Table {
	t := Table{Header: []string{"cohort", "count", "mode"}}
	for _, c := range animal.BreedingCohorts {
		t.add(c.String(), strconv.Itoa(p.Of(c)), mode.String())
	}
	t.add("Total", strconv.Itoa(p.Total), mode.String())
	t.add(animal.Calf.String(), strconv.Itoa(p.Calves), mode.String())
	t.add(animal.Undetermined.String(), strconv.Itoa(p.Undetermined), mode.String())
	return t
}

// Statistics flattens the per trait summaries in the order of keys
func Statistics(s varStuff.TraitStatistics, keys []traits.Key) Table {
	t := Table{Header: []string{"trait", "n", "mean", "sd", "min", "q1", "median", "q3", "max"}}
	for _, k := range keys {
		v, ok := s[k]
		if !ok {
			continue
		}
		t.add(string(k), strconv.Itoa(v.N), Float(v.Mean), Float(v.SD), Float(v.Min), Float(v.Q1), Float(v.Median), Float(v.Q3), Float(v.Max))
	}
	return t
}
