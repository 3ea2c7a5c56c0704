package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestJobMetrics_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetricsWithRegistry(reg)

	m.RecordRun("expiry", 1.5, true)
	m.RecordRun("expiry", 0.5, false)
	m.RecordRun("storage", 0.2, true)

	mf := findMetricFamily(gather(t, reg), "housekeeper_job_runs_total")
	if mf == nil {
		t.Fatal("housekeeper_job_runs_total not found")
	}
	if got := getCounterValue(mf, map[string]string{"job": "expiry", "status": StatusSuccess}); got != 1 {
		t.Errorf("expiry success runs = %v, want 1", got)
	}
	if got := getCounterValue(mf, map[string]string{"job": "expiry", "status": StatusFailure}); got != 1 {
		t.Errorf("expiry failed runs = %v, want 1", got)
	}

	if got := testutil.CollectAndCount(m.RunDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
	if got := testutil.ToFloat64(m.LastSuccess.WithLabelValues("storage")); got <= 0 {
		t.Errorf("last success for storage = %v, want > 0", got)
	}
}
