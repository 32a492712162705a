// initSimulation
// Build the logger, metrics, plan and predictor a command runs with
package main

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

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/blgolden/iGenDecModel/dairyPlan/animal"
	"github.com/blgolden/iGenDecModel/dairyPlan/export"
	"github.com/blgolden/iGenDecModel/dairyPlan/logger"
	"github.com/blgolden/iGenDecModel/dairyPlan/metrics"
	"github.com/blgolden/iGenDecModel/dairyPlan/param"
	"github.com/blgolden/iGenDecModel/dairyPlan/varStuff"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

// session is everything one command needs
type session struct {
	env        param.Env
	format     string
	out        io.Writer
	outFile    *os.File
	logger     *zap.Logger
	metrics    *metrics.Collector
	plan       *param.Plan
	predictor  *animal.Predictor
	population *animal.Population
	mothers    varStuff.MotherAverages
}

// Initialize the simulation
func initSimulation(planFile string) (*session, error) {
	env, err := param.LoadEnv(envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(env.OutputMode, env.LogLevel)
	if err != nil {
		return nil, err
	}

	s := &session{
		env:     env,
		format:  format,
		out:     os.Stdout,
		logger:  log,
		metrics: metrics.NewCollector("dairyplan"),
	}
	if s.format == "" {
		s.format = formatTable
		if env.OutputMode == logger.Quiet {
			s.format = formatJSON
		}
	}
	switch s.format {
	case formatTable, formatCSV, formatJSON:
	default:
		return nil, fmt.Errorf("unknown format %q, want table, csv or json", s.format)
	}

	s.plan, err = param.Load(planFile)
	if err != nil {
		return nil, err
	}
	if s.plan.AsOf.IsZero() {
		s.plan.AsOf = time.Now().UTC()
	}
	s.logger.Debug("plan loaded",
		zap.String("file", planFile),
		zap.Int("females", len(s.plan.Females)),
		zap.Int("sires", len(s.plan.Sires)),
		zap.Int("traits", len(s.plan.Traits)),
	)

	s.predictor = animal.NewPredictor(s.plan.Catalog,
		animal.WithMissingTraitPolicy(s.plan.Missing),
		animal.WithResolver(animal.NewSireIndex(s.plan.Sires)),
		animal.WithWorkers(env.Workers),
		animal.WithLogger(logger.Named(s.logger, "predictor")),
		animal.WithMetrics(s.metrics),
	)

	s.population = animal.NewPopulation(logger.Named(s.logger, "population"))
	s.population.OnChange(func(c animal.PopulationCounts) {
		s.logger.Info("population counts changed",
			zap.Stringer("mode", s.population.Mode()),
			zap.Int("total", c.Total),
		)
	})
	if s.plan.Manual != nil {
		if _, err := s.population.SetManual(*s.plan.Manual); err != nil {
			return nil, err
		}
	} else {
		s.population.Refresh(s.plan.Females, s.plan.AsOf)
	}

	s.mothers, err = varStuff.CohortMeans(s.plan.Catalog, s.plan.Females, s.plan.AsOf, s.plan.Traits)
	if err != nil {
		return nil, err
	}

	if outFile != "" {
		if s.format == formatTable {
			return nil, fmt.Errorf("--out needs --format csv or json")
		}
		s.outFile, err = os.Create(outFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", outFile, err)
		}
		s.out = s.outFile
	}
	return s, nil
}

// close flushes the logger and reports the counters when asked
func (s *session) close() {
	if s.outFile != nil {
		if err := s.outFile.Close(); err != nil {
			s.logger.Error("closing output", zap.Error(err))
		}
	}
	if showMetrics {
		s.logMetrics()
	}
	_ = s.logger.Sync()
}

func (s *session) logMetrics() {
	families, err := s.metrics.Registry.Gather()
	if err != nil {
		s.logger.Warn("gathering metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, l := range m.GetLabel() {
				fields = append(fields, zap.String(l.GetName(), l.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()),
				)
			}
			s.logger.Info("metric", fields...)
		}
	}
}

// emit writes a flat table in the machine formats.  It reports false when
// the session prints human tables instead.
func (s *session) emit(t export.Table) (bool, error) {
	switch s.format {
	case formatCSV:
		return true, t.WriteCSV(s.out)
	case formatJSON:
		return true, t.WriteJSON(s.out)
	}
	return false, nil
}
