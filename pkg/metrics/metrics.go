package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PagesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapstore_pages_written_total",
		Help: "Pages appended across all snapshot writers.",
	})
	PagesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapstore_pages_read_total",
		Help: "Pages served from snapshot files.",
	})
	SnapshotsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapstore_snapshots_created_total",
		Help: "Snapshot files created.",
	})
	SnapshotsOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapstore_snapshots_opened_total",
		Help: "Snapshot files opened for reading.",
	})
	SquashTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapstore_squash_total",
		Help: "Completed squash operations.",
	})
	CorruptionTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapstore_corruption_total",
		Help: "Truncated or otherwise corrupt page reads detected.",
	})
	SquashDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapstore_squash_duration_seconds",
		Help:    "Wall time of squash operations.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
	LastSnapshotPages = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snapstore_last_snapshot_pages",
		Help: "Page count of the most recently finished snapshot.",
	})
)

func init() {
	prometheus.MustRegister(PagesWritten, PagesRead, SnapshotsCreated, SnapshotsOpened)
	prometheus.MustRegister(SquashTotal, CorruptionTotal, SquashDuration, LastSnapshotPages)
}
