// run.go
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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/ecoIndex"
	"github.com/blgolden/iGenDecModel/dairyPlan/export"
	"github.com/blgolden/iGenDecModel/dairyPlan/varStuff"
)

func runCohorts(s *session) error {
	counts := s.population.Counts()
	if done, err := s.emit(export.Counts(counts, s.population.Mode())); done {
		return err
	}
	printCohorts(counts, s.population.Mode())
	return nil
}

func runStats(s *session) error {
	stats, err := varStuff.Statistics(s.plan.Catalog, s.plan.Females, s.plan.Traits)
	if err != nil {
		return err
	}
	if done, err := s.emit(export.Statistics(stats, s.plan.Traits)); done {
		return err
	}
	printStatistics(s, stats)
	printMotherAverages(s)
	return nil
}

func runPredict(s *session) error {
	var (
		results []animal.PredictionResult
		err     error
	)
	switch s.plan.Predict.Method {
	case animal.PedigreeRegression:
		return runPedigree(s)
	case animal.CohortAverage:
		results, err = predictCohorts(s)
	default:
		results, err = predictDirect(s)
	}
	if err != nil {
		return err
	}
	if done, err := s.emit(export.Predictions(results)); done {
		return err
	}
	printPredictions(s, results)
	return nil
}

// predictDirect mates every genomic female with the plan's sire
func predictDirect(s *session) ([]animal.PredictionResult, error) {
	if s.plan.Predict.Sire == "" {
		return nil, animal.ErrNoSireSelected
	}
	sire, ok := s.plan.Sire(s.plan.Predict.Sire)
	if !ok {
		return nil, fmt.Errorf("predict: sire %q is not in the plan", s.plan.Predict.Sire)
	}
	results := make([]animal.PredictionResult, 0, len(s.plan.Females))
	for _, f := range s.plan.Females {
		r, err := s.predictor.DirectAverage(f, &sire, s.plan.Traits)
		if err != nil {
			return nil, fmt.Errorf("female %s: %w", f.Id, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// predictCohorts projects each breeding cohort with at least one female
func predictCohorts(s *session) ([]animal.PredictionResult, error) {
	sires := make([]animal.SireRecord, 0, len(s.plan.Predict.CohortSires))
	for _, code := range s.plan.Predict.CohortSires {
		sire, ok := s.plan.Sire(code)
		if !ok {
			return nil, fmt.Errorf("predict: sire %q is not in the plan", code)
		}
		sires = append(sires, sire)
	}

	counts := s.population.Counts()
	var results []animal.PredictionResult
	for i, c := range animal.BreedingCohorts {
		if counts.Of(c) == 0 {
			s.logger.Debug("cohort skipped", zap.Stringer("cohort", c))
			continue
		}
		r, err := s.predictor.CohortAverage(c, s.mothers[i], sires, s.plan.Traits)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func runPedigree(s *session) error {
	if len(s.plan.Pedigrees) == 0 {
		return errors.New("the plan has no pedigrees")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := s.predictor.PedigreeBatch(ctx, s.plan.Pedigrees, s.plan.Traits)
	if results == nil {
		return err
	}
	sum := animal.Summarize(results)
	if done, werr := s.emit(export.BatchResults(results, s.plan.Traits)); done {
		return errors.Join(err, werr)
	}
	printBatch(s, results, sum)
	return err
}

func runSimulate(s *session) error {
	alloc, err := s.plan.Allocate()
	if err != nil {
		return err
	}
	plan := ecoIndex.MatingPlan{
		Population:     s.population.Counts(),
		MotherAverages: s.mothers,
		Rates:          s.plan.Rates,
		BirthRates:     s.plan.BirthRates,
		Sires:          alloc,
		Traits:         s.plan.Traits,
		ProfitTrait:    s.plan.ProfitTrait,
	}
	proj, err := ecoIndex.NewSimulator(s.predictor, s.logger.Named("mating"), s.metrics).Run(plan)
	if err != nil {
		return err
	}
	if done, err := s.emit(export.Mating(proj, s.plan.Traits)); done {
		return err
	}
	printMating(s, proj)
	return nil
}

func runReplace(s *session) error {
	if s.plan.Replacement == nil {
		return errors.New("the plan has no replacement section")
	}
	in := *s.plan.Replacement
	counts := s.population.Counts()
	if in.Growth.HerdSize == 0 {
		in.Growth.HerdSize = counts.Cows()
	}
	if in.Growth.Heifers == 0 {
		in.Growth.Heifers = counts.Heifers
	}
	if in.BirthRates == nil {
		in.BirthRates = s.plan.BirthRates
	}

	plan, err := ecoIndex.NewPlanner(s.logger.Named("replacement"), s.metrics).Plan(in)
	if err != nil {
		return err
	}
	if done, err := s.emit(export.Replacement(plan)); done {
		return err
	}
	printReplacement(plan)
	return nil
}

func runTrend(s *session) error {
	var (
		trends []varStuff.TraitTrend
		table  export.Table
	)
	for _, k := range s.plan.Traits {
		tt, err := varStuff.AnalyzeTrend(s.plan.Catalog, s.plan.Females, k)
		if errors.Is(err, varStuff.ErrInsufficientTrendData) {
			s.logger.Warn("no trend", zap.String("trait", string(k)), zap.Error(err))
			continue
		}
		if err != nil {
			return err
		}
		trends = append(trends, tt)
		t := export.Trend(tt)
		table.Header = t.Header
		table.Rows = append(table.Rows, t.Rows...)
	}
	if done, err := s.emit(table); done {
		return err
	}
	printTrends(trends)
	return nil
}

func runBenchmark(s *session) error {
	if s.plan.Benchmark == nil {
		return errors.New("the plan has no benchmark reference")
	}
	herd, err := varStuff.Statistics(s.plan.Catalog, s.plan.Females, s.plan.Traits)
	if err != nil {
		return err
	}
	bs, err := varStuff.Compare(s.plan.Catalog, herd, *s.plan.Benchmark, s.plan.Traits, s.plan.TopPercent)
	if err != nil {
		return err
	}
	if done, err := s.emit(export.Benchmarks(bs)); done {
		return err
	}
	return printBenchmarks(s, bs)
}
