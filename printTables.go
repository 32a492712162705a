// printTables
// Fixed width console tables for the table output format
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

package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/ecoIndex"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
	"github.com/blgolden/iGenDecModel/dairyPlan/varStuff"
)

// traitValue formats v for display, or "-" when the trait was omitted
func traitValue(s *session, k traits.Key, pta animal.PTA) string {
	v, ok := pta[k]
	if !ok {
		return "-"
	}
	text, err := s.plan.Catalog.Format(k, v)
	if err != nil {
		return fmt.Sprintf("%g", v)
	}
	return text
}

func traitHeader(s *session) string {
	var b strings.Builder
	for _, k := range s.plan.Traits {
		fmt.Fprintf(&b, " %14s", k)
	}
	return b.String()
}

func traitCells(s *session, pta animal.PTA) string {
	var b strings.Builder
	for _, k := range s.plan.Traits {
		fmt.Fprintf(&b, " %14s", traitValue(s, k, pta))
	}
	return b.String()
}

func printCohorts(p animal.PopulationCounts, mode animal.CountMode) {
	fmt.Printf("Population (%s)\n", mode)
	fmt.Printf("Cohort            Count\n")
	for _, c := range animal.BreedingCohorts {
		fmt.Printf("%-15s %7d\n", c, p.Of(c))
	}
	fmt.Printf("%-15s %7d\n", "Total", p.Total)
	fmt.Printf("%-15s %7d\n", animal.Calf, p.Calves)
	fmt.Printf("%-15s %7d\n", animal.Undetermined, p.Undetermined)
}

func printStatistics(s *session, stats varStuff.TraitStatistics) {
	fmt.Printf("Trait              N       Mean         SD        Min     Median        Max\n")
	for _, k := range s.plan.Traits {
		v := stats[k]
		fmt.Printf("%-12s %7d %10.2f %10.2f %10.2f %10.2f %10.2f\n", k, v.N, v.Mean, v.SD, v.Min, v.Median, v.Max)
	}
	fmt.Println()
}

func printMotherAverages(s *session) {
	fmt.Printf("Mother averages\n")
	fmt.Printf("%-15s%s\n", "Cohort", traitHeader(s))
	for i, c := range animal.BreedingCohorts {
		fmt.Printf("%-15s%s\n", c, traitCells(s, s.mothers[i]))
	}
}

func printPredictions(s *session, results []animal.PredictionResult) {
	fmt.Printf("%-15s %-30s%s\n", "Female", "Sires", traitHeader(s))
	for _, r := range results {
		fmt.Printf("%-15s %-30s%s\n", r.FemaleId, strings.Join(r.SireIds, ","), traitCells(s, r.Values))
	}
}

func printBatch(s *session, results []animal.RowResult, sum animal.BatchSummary) {
	fmt.Printf("%5s %-15s %-9s%s\n", "Row", "Female", "Status", traitHeader(s))
	for _, r := range results {
		switch r.Status {
		case animal.RowOK:
			fmt.Printf("%5d %-15s %-9s%s\n", r.Row+1, r.Result.FemaleId, r.Status, traitCells(s, r.Result.Values))
		case animal.RowFailed:
			fmt.Printf("%5d %-15s %-9s %v\n", r.Row+1, s.plan.Pedigrees[r.Row].FemaleId, r.Status, r.Err)
		default:
			fmt.Printf("%5d %-15s %-9s\n", r.Row+1, s.plan.Pedigrees[r.Row].FemaleId, r.Status)
		}
	}
	fmt.Printf("OK: %d  Failed: %d  Canceled: %d\n", sum.OK, sum.Failed, sum.Canceled)
}

func printMating(s *session, p ecoIndex.PlanProjection) {
	fmt.Printf("               ______Funnel______________________________   | _______Cost_________________________\n")
	fmt.Printf("Sire           Doses   Pregnant  Confirmed  Female calves   |         Total      Per calf        ROI\n")
	for _, sp := range p.Sires {
		fmt.Printf("%-12s %7.0f %10.1f %10.1f %14.1f   | %13s %13s %13s\n",
			sp.SireId, sp.Totals.Doses, sp.Totals.Pregnancies, sp.Totals.ConfirmedPregnancy, sp.Totals.FemaleCalves,
			ecoIndex.Money(sp.Cost), ecoIndex.FormatMoney(sp.CostPerCalf), roiText(sp.ROI))
	}
	fmt.Printf("%-12s %7.0f %10.1f %10.1f %14.1f   | %13s %13s %13s\n",
		"Plan", p.Totals.Doses, p.Totals.Pregnancies, p.Totals.ConfirmedPregnancy, p.Totals.FemaleCalves,
		ecoIndex.Money(p.Cost), ecoIndex.FormatMoney(p.CostPerCalf), roiText(p.ROI))
	fmt.Println()

	fmt.Printf("%-12s%s\n", "Pooled PTA", traitHeader(s))
	for _, sp := range p.Sires {
		fmt.Printf("%-12s%s\n", sp.SireId, traitCells(s, sp.Pooled))
	}
	fmt.Printf("%-12s%s\n", "Plan", traitCells(s, p.Pooled))
	for _, w := range p.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}

func roiText(d decimal.NullDecimal) string {
	if !d.Valid {
		return varStuff.NotAvailable
	}
	return ecoIndex.Money(d.Decimal)
}

func printReplacement(plan ecoIndex.ReplacementPlan) {
	g := plan.Growth
	fmt.Printf("Growth\n")
	fmt.Printf("  Discards per year      %10.1f\n", g.Discards)
	fmt.Printf("  Growth                 %10.1f\n", g.Growth)
	fmt.Printf("  Heifers required       %10.1f\n", g.RequiredHeifers)
	fmt.Printf("  Eligible heifers       %10.1f\n", g.EligibleHeifers)
	fmt.Printf("  Cows calving per year  %10.1f\n\n", g.CowsCalvingPerYear)

	fmt.Printf("          ______Monthly_____________________________________   | __Per female__\n")
	fmt.Printf("Group        Bred  Inseminated  Pregnant    Needed      Delta   | Services  Preg/Ins\n")
	for grp, gi := range plan.Inseminations {
		fmt.Printf("%-8s %8.1f %12.1f %9.1f %9.1f %10.1f   | %8.2f %9s\n",
			ecoIndex.Group(grp), gi.FemalesBred.Monthly, gi.Inseminations.Monthly, gi.Pregnancies.Monthly,
			gi.NeededPregnancies.Monthly, gi.Delta.Monthly, gi.Plan.TotalServices, gi.PregnanciesPerInsemination.Percent())
	}
	fmt.Println()

	fmt.Printf("Doses          Annual   Monthly    Weekly          Cost\n")
	for i, c := range ecoIndex.Categories {
		d := plan.Doses.Total[i]
		if d.Annual == 0 {
			continue
		}
		fmt.Printf("%-12s %8.0f %9.1f %9.1f %13s\n", c, d.Annual, d.Monthly, d.Weekly, ecoIndex.Money(plan.Investment.DoseCost[i]))
	}
	fmt.Println()

	c := plan.Investment.Calves
	r := plan.Return
	fmt.Printf("Calves: dairy heifers %.1f, replacements %.1f, dairy bulls %.1f, beef cross %.1f, surplus heifers %.1f\n",
		c.DairyHeifers, c.Replacements, c.DairyBulls, c.BeefCross, c.SurplusHeifers)
	fmt.Printf("Investment     %15s\n", ecoIndex.Money(r.Investment))
	fmt.Printf("Revenue        %15s\n", ecoIndex.Money(r.Revenue))
	fmt.Printf("Retained value %15s\n", ecoIndex.Money(r.RetainedValue))
	fmt.Printf("ROI            %15s\n", ecoIndex.Money(r.ROI))
	fmt.Printf("Heifers produced / required: %.1f / %.1f (%s)\n", r.HeifersProduced, r.HeifersRequired, r.ProducedRatio.Percent())
}

func printTrends(trends []varStuff.TraitTrend) {
	for _, tt := range trends {
		fmt.Printf("%s: slope %.3f per year, z slope %s\n", tt.Key, tt.Raw.Slope, zSlope(tt))
		fmt.Printf("Year       N       Mean     Fitted      Delta\n")
		for i, p := range tt.Points {
			delta := ""
			if i > 0 {
				delta = fmt.Sprintf("%10.2f", tt.Deltas[i-1].Delta)
			}
			fmt.Printf("%4d %7d %10.2f %10.2f %s\n", p.Year, p.N, p.Mean, tt.Raw.Predict(p.Year), delta)
		}
		fmt.Println()
	}
}

func zSlope(tt varStuff.TraitTrend) string {
	if !tt.ZDefined {
		return varStuff.NotAvailable
	}
	return fmt.Sprintf("%.4f", tt.Z.Slope)
}

func printBenchmarks(s *session, bs []varStuff.Benchmark) error {
	fmt.Printf("Reference %s, top %g%%\n", s.plan.Benchmark.Name, s.plan.TopPercent)
	fmt.Printf("Trait            Herd mean     Top mean  Overall mean          Gap\n")
	for _, b := range bs {
		top, overall, err := b.FormatReference(s.plan.Catalog)
		if err != nil {
			return err
		}
		herd, err := b.FormatHerd(s.plan.Catalog)
		if err != nil {
			return err
		}
		gap := varStuff.NotAvailable
		if g, ok := b.Gap(); ok {
			gap = fmt.Sprintf("%.2f", g)
		}
		fmt.Printf("%-12s %13s %12s %13s %12s\n", b.Key, herd, top, overall, gap)
	}
	return nil
}
