package metrics_test

import (
	"testing"

	"github.com/downfa11-org/snapstore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.PagesWritten)
	metrics.PagesWritten.Inc()
	if got := testutil.ToFloat64(metrics.PagesWritten); got != before+1 {
		t.Errorf("PagesWritten = %v, want %v", got, before+1)
	}

	metrics.LastSnapshotPages.Set(42)
	if got := testutil.ToFloat64(metrics.LastSnapshotPages); got != 42 {
		t.Errorf("LastSnapshotPages = %v, want 42", got)
	}
}
