package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("test")
	c.Row(RowOK)
	c.Row(RowOK)
	c.Row(RowFailed)
	c.Projection("mating", time.Now(), nil)
	c.Projection("mating", time.Now(), errors.New("bad"))

	if got := testutil.ToFloat64(c.BatchRowsTotal.WithLabelValues(RowOK)); got != 2 {
		t.Errorf("ok rows = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.BatchRowsTotal.WithLabelValues(RowFailed)); got != 1 {
		t.Errorf("failed rows = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ProjectionsTotal.WithLabelValues("mating", "error")); got != 1 {
		t.Errorf("mating errors = %v, want 1", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.Row(RowOK)
	c.Batch(time.Now())
	c.Projection("x", time.Now(), nil)
}
