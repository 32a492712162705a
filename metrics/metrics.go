// metrics
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
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Row outcomes for batch runs
const (
	RowOK       = "ok"
	RowFailed   = "failed"
	RowCanceled = "canceled"
)

// Collector holds the planner's counters.  A nil *Collector is valid and
// records nothing, so the core never has to check.
type Collector struct {
	Registry *prometheus.Registry

	BatchRowsTotal     *prometheus.CounterVec
	BatchDuration      prometheus.Histogram
	ProjectionsTotal   *prometheus.CounterVec
	ProjectionDuration *prometheus.HistogramVec
}

// NewCollector registers all metrics on a private registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		BatchRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pedigree_rows_total",
				Help:      "Pedigree prediction rows processed by outcome",
			},
			[]string{"status"},
		),
		BatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pedigree_batch_duration_seconds",
				Help:      "Wall time of a pedigree prediction batch",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),
		ProjectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "projections_total",
				Help:      "Projections computed by kind and result",
			},
			[]string{"kind", "result"},
		),
		ProjectionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "projection_duration_seconds",
				Help:      "Projection computation time by kind",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1},
			},
			[]string{"kind"},
		),
	}
	c.Registry.MustRegister(c.BatchRowsTotal, c.BatchDuration, c.ProjectionsTotal, c.ProjectionDuration)
	return c
}

func (c *Collector) Row(status string) {
	if c == nil {
		return
	}
	c.BatchRowsTotal.WithLabelValues(status).Inc()
}

func (c *Collector) Batch(start time.Time) {
	if c == nil {
		return
	}
	c.BatchDuration.Observe(time.Since(start).Seconds())
}

// Projection records one projection of kind ("mating", "replacement", ...)
func (c *Collector) Projection(kind string, start time.Time, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.ProjectionsTotal.WithLabelValues(kind, result).Inc()
	c.ProjectionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
